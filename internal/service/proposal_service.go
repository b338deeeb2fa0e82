package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
	"github.com/needanevo/Handyman-app-sub000/internal/validation"
)

// ProposalRepository describes the proposal service's storage dependencies.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error)
	ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string) error
}

// JobGetter loads jobs for precondition checks.
type JobGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// CreateProposalInput carries a provider's bid.
type CreateProposalInput struct {
	Price          float64
	EstimatedHours *float64
	Message        *string
}

// ProposalService validates and records provider bids. The duplicate-bid
// check is advisory only: the storage layer's uniqueness constraint is what
// actually closes the race between two concurrent submissions.
type ProposalService struct {
	proposals ProposalRepository
	jobs      JobGetter
	notifier  Notifier
}

func NewProposalService(proposals ProposalRepository, jobs JobGetter, notifier Notifier) *ProposalService {
	return &ProposalService{proposals: proposals, jobs: jobs, notifier: notifier}
}

// CreateProposal records a new pending bid on a published job.
func (s *ProposalService) CreateProposal(ctx context.Context, jobID, contractorID uuid.UUID, contractorRole string, in CreateProposalInput) (*models.Proposal, error) {
	if _, ok := models.ProviderRoles[contractorRole]; !ok {
		return nil, apperror.ErrRoleNotAllowed
	}

	if err := validation.ProposalPrice(in.Price); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.Message != nil {
		if err := validation.ProposalMessage(*in.Message); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusPublished {
		return nil, apperror.Newf(apperror.ErrCodeJobNotOpen,
			"job is not open for proposals (current status: %s)", job.Status)
	}

	existing, err := s.proposals.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("proposal service: check duplicates: %w", err)
	}
	for _, p := range existing {
		if p.ContractorID != contractorID {
			continue
		}
		if p.Status == models.ProposalStatusPending || p.Status == models.ProposalStatusAccepted {
			return nil, apperror.ErrDuplicateProposal
		}
	}

	proposal := &models.Proposal{
		ID:             uuid.New(),
		JobID:          jobID,
		ContractorID:   contractorID,
		ContractorRole: contractorRole,
		Price:          in.Price,
		EstimatedHours: in.EstimatedHours,
		Message:        in.Message,
		Status:         models.ProposalStatusPending,
	}

	if err := s.proposals.Create(ctx, proposal); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, job.CustomerID, "proposal.received", map[string]interface{}{
		"job_id":      jobID,
		"proposal_id": proposal.ID,
		"price":       proposal.Price,
	})

	return proposal, nil
}

// WithdrawProposal lets the owning contractor retract a still-pending bid.
func (s *ProposalService) WithdrawProposal(ctx context.Context, proposalID, contractorID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ContractorID != contractorID {
		return nil, apperror.ErrNotOwner
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, apperror.ErrInvalidWithdrawState
	}

	if err := s.proposals.UpdateStatus(ctx, proposalID,
		models.ProposalStatusPending, models.ProposalStatusWithdrawn); err != nil {
		return nil, err
	}

	return s.proposals.GetByID(ctx, proposalID)
}

// ListProposalsForJob returns a job's proposals to its owning customer.
func (s *ProposalService) ListProposalsForJob(ctx context.Context, jobID, customerID uuid.UUID) ([]models.Proposal, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CustomerID != customerID {
		return nil, apperror.ErrNotOwner
	}
	return s.proposals.ListByJob(ctx, jobID)
}

// ListProposalsByContractor returns a contractor's own bids.
func (s *ProposalService) ListProposalsByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Proposal, error) {
	return s.proposals.ListByContractor(ctx, contractorID)
}
