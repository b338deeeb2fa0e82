package models

// User roles.
const (
	RoleCustomer   = "customer"
	RoleHandyman   = "handyman"
	RoleContractor = "contractor"
	RoleAdmin      = "admin"
)

// ProviderRoles are roles allowed to bid on jobs.
var ProviderRoles = map[string]struct{}{
	RoleHandyman:   {},
	RoleContractor: {},
}

// JobStatus constants for the job lifecycle.
const (
	JobStatusDraft                  = "draft"
	JobStatusPublished              = "published"
	JobStatusProposalSelected       = "proposal_selected"
	JobStatusScheduled              = "scheduled"
	JobStatusInProgress             = "in_progress"
	JobStatusCompletedPendingReview = "completed_pending_review"
	JobStatusCompleted              = "completed"
	JobStatusCancelledByCustomer    = "cancelled_by_customer"
	JobStatusCancelledByContractor  = "cancelled_by_contractor"
)

// ValidJobStatuses lists every known job status.
var ValidJobStatuses = map[string]struct{}{
	JobStatusDraft:                  {},
	JobStatusPublished:              {},
	JobStatusProposalSelected:       {},
	JobStatusScheduled:              {},
	JobStatusInProgress:             {},
	JobStatusCompletedPendingReview: {},
	JobStatusCompleted:              {},
	JobStatusCancelledByCustomer:    {},
	JobStatusCancelledByContractor:  {},
}

// TerminalJobStatuses are final: no transition leaves them.
var TerminalJobStatuses = map[string]struct{}{
	JobStatusCompleted:             {},
	JobStatusCancelledByCustomer:   {},
	JobStatusCancelledByContractor: {},
}

// ActiveAssignmentStatuses count against a contractor's capacity: the job is
// assigned to the contractor and not yet finished.
var ActiveAssignmentStatuses = []string{
	JobStatusProposalSelected,
	JobStatusScheduled,
	JobStatusInProgress,
}

// ProposalStatus constants for contractor bids.
const (
	ProposalStatusPending   = "pending"
	ProposalStatusAccepted  = "accepted"
	ProposalStatusRejected  = "rejected"
	ProposalStatusWithdrawn = "withdrawn"
)

// ValidProposalStatuses lists every known proposal status.
var ValidProposalStatuses = map[string]struct{}{
	ProposalStatusPending:   {},
	ProposalStatusAccepted:  {},
	ProposalStatusRejected:  {},
	ProposalStatusWithdrawn: {},
}

// ActiveProposalStatuses block a contractor from re-bidding on the same job.
var ActiveProposalStatuses = []string{
	ProposalStatusPending,
	ProposalStatusAccepted,
}

// PayoutStatus constants.
const (
	PayoutStatusPending           = "pending"
	PayoutStatusQueuedForTransfer = "queued_for_transfer"
	PayoutStatusPaid              = "paid"
	PayoutStatusFailed            = "failed"
)

// PlatformFeeRate is the marketplace cut of every payout gross amount.
const PlatformFeeRate = 0.15

// GrowthEventType constants.
const (
	GrowthEventJobCompleted      = "job_completed"
	GrowthEventRevenueEarned     = "revenue_earned"
	GrowthEventFiveStarReview    = "five_star_review"
	GrowthEventFourStarReview    = "four_star_review"
	GrowthEventLLCLinked         = "llc_linked"
	GrowthEventLicenseUploaded   = "license_uploaded"
	GrowthEventInsuranceUploaded = "insurance_uploaded"
)

// ValidGrowthEventTypes lists every known growth event type.
var ValidGrowthEventTypes = map[string]struct{}{
	GrowthEventJobCompleted:      {},
	GrowthEventRevenueEarned:     {},
	GrowthEventFiveStarReview:    {},
	GrowthEventFourStarReview:    {},
	GrowthEventLLCLinked:         {},
	GrowthEventLicenseUploaded:   {},
	GrowthEventInsuranceUploaded: {},
}
