package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/needanevo/Handyman-app-sub000/internal/logger"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
)

// JobRepository describes the lifecycle service's storage dependencies.
// Every status write is a compare-and-swap on the status the service read.
type JobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateStatus(ctx context.Context, job *models.Job, expectedStatus string) error
	AcceptProposal(ctx context.Context, jobID, proposalID, contractorID uuid.UUID) error
	FinishWithPayout(ctx context.Context, jobID uuid.UUID, payout *models.Payout) error
	CompleteAndQueuePayout(ctx context.Context, jobID uuid.UUID, payoutID *uuid.UUID) error
}

// ProposalGetter loads proposals for payout creation.
type ProposalGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
}

// GrowthEmitter records contractor progress events.
type GrowthEmitter interface {
	EmitEvent(ctx context.Context, contractorID uuid.UUID, role, eventType string, value float64, meta json.RawMessage) (*models.GrowthSummary, error)
}

// Notifier delivers events to users. Delivery is best effort: a failed
// notification never fails a transition.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, payload interface{})
}

// TransitionExtra carries the optional data a transition may require.
type TransitionExtra struct {
	AcceptedProposalID   *uuid.UUID
	AssignedContractorID *uuid.UUID
	ScheduledStart       *time.Time
	ScheduledEnd         *time.Time
}

// allowedTransitions enumerates every legal status move. Statuses absent
// from the map are terminal.
var allowedTransitions = map[string][]string{
	models.JobStatusDraft: {
		models.JobStatusPublished,
		models.JobStatusCancelledByCustomer,
	},
	models.JobStatusPublished: {
		models.JobStatusProposalSelected,
		models.JobStatusCancelledByCustomer,
	},
	models.JobStatusProposalSelected: {
		models.JobStatusScheduled,
		models.JobStatusCancelledByCustomer,
		models.JobStatusCancelledByContractor,
	},
	models.JobStatusScheduled: {
		models.JobStatusInProgress,
		models.JobStatusCancelledByCustomer,
		models.JobStatusCancelledByContractor,
	},
	models.JobStatusInProgress: {
		models.JobStatusCompletedPendingReview,
		models.JobStatusCancelledByCustomer,
		models.JobStatusCancelledByContractor,
	},
	models.JobStatusCompletedPendingReview: {
		models.JobStatusCompleted,
		models.JobStatusCancelledByCustomer,
	},
}

func transitionAllowed(from, to string) bool {
	for _, target := range allowedTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// LifecycleService is the only writer of job status. Side effects that must
// be visible together with the new status (proposal resolution, payout
// creation, payout queueing) run in the same storage transaction as the
// status write; growth events and notifications follow after commit.
//
// The transition table encodes which states are reachable, not who may
// trigger them. Actor-role authorization lives in the HTTP layer so the
// state machine stays testable independent of auth policy.
type LifecycleService struct {
	jobs      JobRepository
	proposals ProposalGetter
	growth    GrowthEmitter
	notifier  Notifier
}

func NewLifecycleService(jobs JobRepository, proposals ProposalGetter, growth GrowthEmitter, notifier Notifier) *LifecycleService {
	return &LifecycleService{
		jobs:      jobs,
		proposals: proposals,
		growth:    growth,
		notifier:  notifier,
	}
}

// ApplyTransition moves a job to newStatus, running the side effects that
// status demands. Safe to retry from the same starting state: the
// compare-and-swap write rejects a stale retry with ConcurrentModification.
func (s *LifecycleService) ApplyTransition(ctx context.Context, jobID uuid.UUID, newStatus string, actorID uuid.UUID, extra TransitionExtra) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(job.Status, newStatus) {
		return nil, apperror.Newf(apperror.ErrCodeLifecycleViolation,
			"cannot transition job from %q to %q", job.Status, newStatus)
	}

	expectedStatus := job.Status

	switch newStatus {
	case models.JobStatusProposalSelected:
		if extra.AcceptedProposalID == nil || extra.AssignedContractorID == nil {
			return nil, apperror.New(apperror.ErrCodeMissingTransitionData,
				"transition to proposal_selected requires accepted_proposal_id and assigned_contractor_id")
		}
		if err := s.jobs.AcceptProposal(ctx, jobID, *extra.AcceptedProposalID, *extra.AssignedContractorID); err != nil {
			return nil, err
		}
		s.notifier.Notify(ctx, *extra.AssignedContractorID, "proposal.accepted", map[string]interface{}{
			"job_id":      jobID,
			"proposal_id": *extra.AcceptedProposalID,
		})

	case models.JobStatusScheduled:
		job.Status = newStatus
		if extra.ScheduledStart != nil {
			job.ScheduledStart = extra.ScheduledStart
		}
		if extra.ScheduledEnd != nil {
			job.ScheduledEnd = extra.ScheduledEnd
		}
		if err := s.jobs.UpdateStatus(ctx, job, expectedStatus); err != nil {
			return nil, err
		}

	case models.JobStatusCompletedPendingReview:
		payout, err := s.buildPayout(ctx, job)
		if err != nil {
			return nil, err
		}
		if err := s.jobs.FinishWithPayout(ctx, jobID, payout); err != nil {
			return nil, err
		}
		s.notifier.Notify(ctx, job.CustomerID, "job.awaiting_review", map[string]interface{}{
			"job_id": jobID,
		})

	case models.JobStatusCompleted:
		if err := s.jobs.CompleteAndQueuePayout(ctx, jobID, job.PayoutID); err != nil {
			return nil, err
		}
		s.recordCompletion(ctx, job)

	default:
		// published, in_progress and the cancellation targets carry no extra
		// data beyond the status itself.
		job.Status = newStatus
		if err := s.jobs.UpdateStatus(ctx, job, expectedStatus); err != nil {
			return nil, err
		}
		s.notifyStatusChange(ctx, job, newStatus, actorID)
	}

	return s.jobs.GetByID(ctx, jobID)
}

// buildPayout derives the payout from the accepted proposal's quoted price.
// A missing accepted proposal here is a data-integrity violation, not a
// client error.
func (s *LifecycleService) buildPayout(ctx context.Context, job *models.Job) (*models.Payout, error) {
	if job.AcceptedProposalID == nil || job.ContractorID == nil {
		return nil, apperror.New(apperror.ErrCodePayoutCreation,
			"job has no accepted proposal to derive a payout from")
	}

	proposal, err := s.proposals.GetByID(ctx, *job.AcceptedProposalID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Wrap(err, apperror.ErrCodePayoutCreation,
				"accepted proposal referenced by job does not exist")
		}
		return nil, err
	}

	return NewPayout(job, proposal), nil
}

// recordCompletion emits growth events and notifies the contractor once the
// customer has confirmed completion. Both are best effort.
func (s *LifecycleService) recordCompletion(ctx context.Context, job *models.Job) {
	if job.ContractorID == nil {
		return
	}
	contractorID := *job.ContractorID

	meta, _ := json.Marshal(map[string]string{"job_id": job.ID.String()})

	if _, err := s.growth.EmitEvent(ctx, contractorID, models.RoleContractor,
		models.GrowthEventJobCompleted, 1, meta); err != nil {
		logger.Log.WithError(err).WithField("job_id", job.ID).
			Warn("lifecycle: failed to record job_completed growth event")
	}

	if job.PayoutID != nil {
		proposal, err := s.proposals.GetByID(ctx, safeDeref(job.AcceptedProposalID))
		if err == nil {
			net := proposal.Price * (1 - models.PlatformFeeRate)
			if _, err := s.growth.EmitEvent(ctx, contractorID, models.RoleContractor,
				models.GrowthEventRevenueEarned, net, meta); err != nil {
				logger.Log.WithError(err).WithField("job_id", job.ID).
					Warn("lifecycle: failed to record revenue_earned growth event")
			}
		}
	}

	s.notifier.Notify(ctx, contractorID, "payout.queued", map[string]interface{}{
		"job_id":    job.ID,
		"payout_id": job.PayoutID,
	})
}

// notifyStatusChange tells the other party about a plain status move.
func (s *LifecycleService) notifyStatusChange(ctx context.Context, job *models.Job, newStatus string, actorID uuid.UUID) {
	payload := map[string]interface{}{
		"job_id": job.ID,
		"status": newStatus,
	}
	if job.ContractorID != nil && *job.ContractorID != actorID {
		s.notifier.Notify(ctx, *job.ContractorID, "job.status_changed", payload)
	}
	if job.CustomerID != actorID {
		s.notifier.Notify(ctx, job.CustomerID, "job.status_changed", payload)
	}
}

func safeDeref(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
