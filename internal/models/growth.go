package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GrowthEvent is an immutable fact about a contractor's progress.
// Events are append-only: never mutated or deleted.
type GrowthEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ContractorID uuid.UUID       `db:"contractor_id" json:"contractor_id"`
	Role         string          `db:"role" json:"role"`
	EventType    string          `db:"event_type" json:"event_type"`
	Value        float64         `db:"value" json:"value"`
	Meta         json.RawMessage `db:"meta" json:"meta,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// GrowthSummary is derived entirely from a contractor's event history and is
// recomputed in full on every emission, so it can always be rebuilt from the
// log.
type GrowthSummary struct {
	ContractorID      uuid.UUID `db:"contractor_id" json:"contractor_id"`
	TotalJobsCompleted int      `db:"total_jobs_completed" json:"total_jobs_completed"`
	TotalRevenue      float64   `db:"total_revenue" json:"total_revenue"`
	RatingSum         float64   `db:"rating_sum" json:"-"`
	RatingCount       int       `db:"rating_count" json:"rating_count"`
	AverageRating     float64   `db:"average_rating" json:"average_rating"`
	LLCLinked         bool      `db:"llc_linked" json:"llc_linked"`
	LicenseUploaded   bool      `db:"license_uploaded" json:"license_uploaded"`
	InsuranceUploaded bool      `db:"insurance_uploaded" json:"insurance_uploaded"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
