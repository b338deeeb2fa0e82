package models

import (
	"time"

	"github.com/google/uuid"
)

// Payout is the money owed to a contractor for one completed job.
// Invariant: AmountNet = AmountGross - PlatformFee, and exactly one payout
// exists per job.
type Payout struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	JobID         uuid.UUID  `db:"job_id" json:"job_id"`
	ContractorID  uuid.UUID  `db:"contractor_id" json:"contractor_id"`
	AmountGross   float64    `db:"amount_gross" json:"amount_gross"`
	PlatformFee   float64    `db:"platform_fee" json:"platform_fee"`
	AmountNet     float64    `db:"amount_net" json:"amount_net"`
	Status        string     `db:"status" json:"status"`
	ProviderRef   *string    `db:"provider_ref" json:"provider_ref,omitempty"`
	FailureReason *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	PaidAt        *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}

// WalletSummary is a pure aggregation over a contractor's payouts.
type WalletSummary struct {
	LifetimeEarnings float64    `json:"lifetime_earnings"`
	Available        float64    `json:"available"`
	Pending          float64    `json:"pending"`
	LastPayoutDate   *time.Time `json:"last_payout_date,omitempty"`
}
