package models

import (
	"time"

	"github.com/google/uuid"
)

// Job is a unit of requested work posted by a customer.
// Status is mutated exclusively through the lifecycle service; jobs are never
// physically deleted — terminal statuses are final.
type Job struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	CustomerID         uuid.UUID  `db:"customer_id" json:"customer_id"`
	ContractorID       *uuid.UUID `db:"contractor_id" json:"contractor_id,omitempty"`
	AcceptedProposalID *uuid.UUID `db:"accepted_proposal_id" json:"accepted_proposal_id,omitempty"`
	PayoutID           *uuid.UUID `db:"payout_id" json:"payout_id,omitempty"`
	Title              string     `db:"title" json:"title"`
	Description        string     `db:"description" json:"description"`
	Category           string     `db:"category" json:"category"`
	Status             string     `db:"status" json:"status"`
	AddressLine        *string    `db:"address_line" json:"address_line,omitempty"`
	Latitude           *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude          *float64   `db:"longitude" json:"longitude,omitempty"`
	BudgetMin          *float64   `db:"budget_min" json:"budget_min,omitempty"`
	BudgetMax          *float64   `db:"budget_max" json:"budget_max,omitempty"`
	ScheduledStart     *time.Time `db:"scheduled_start" json:"scheduled_start,omitempty"`
	ScheduledEnd       *time.Time `db:"scheduled_end" json:"scheduled_end,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Geocoded reports whether the job has coordinates.
func (j *Job) Geocoded() bool {
	return j != nil && j.Latitude != nil && j.Longitude != nil
}

// Proposal is a provider's bid on a published job.
type Proposal struct {
	ID             uuid.UUID `db:"id" json:"id"`
	JobID          uuid.UUID `db:"job_id" json:"job_id"`
	ContractorID   uuid.UUID `db:"contractor_id" json:"contractor_id"`
	ContractorRole string    `db:"contractor_role" json:"contractor_role"`
	Price          float64   `db:"price" json:"price"`
	EstimatedHours *float64  `db:"estimated_hours" json:"estimated_hours,omitempty"`
	Message        *string   `db:"message" json:"message,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// JobWithDistance pairs a job with its distance from a contractor's address,
// used by the browse feed.
type JobWithDistance struct {
	Job           Job     `json:"job"`
	DistanceMiles float64 `json:"distance_miles"`
}
