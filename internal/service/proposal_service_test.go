package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
)

type mockProposalRepo struct {
	mock.Mock
}

func (m *mockProposalRepo) Create(ctx context.Context, proposal *models.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *mockProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, contractorID)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string) error {
	args := m.Called(ctx, id, expectedStatus, newStatus)
	return args.Error(0)
}

type mockJobGetter struct {
	mock.Mock
}

func (m *mockJobGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func newProposalFixture() (*ProposalService, *mockProposalRepo, *mockJobGetter, *mockNotifier) {
	proposals := new(mockProposalRepo)
	jobs := new(mockJobGetter)
	notifier := new(mockNotifier)
	return NewProposalService(proposals, jobs, notifier), proposals, jobs, notifier
}

func TestCreateProposal_CustomerRoleRejected(t *testing.T) {
	svc, proposals, _, _ := newProposalFixture()

	_, err := svc.CreateProposal(context.Background(), uuid.New(), uuid.New(),
		models.RoleCustomer, CreateProposalInput{Price: 100})

	assert.ErrorIs(t, err, apperror.ErrRoleNotAllowed)
	proposals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProposal_JobNotFound(t *testing.T) {
	svc, _, jobs, _ := newProposalFixture()
	ctx := context.Background()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(nil, apperror.ErrJobNotFound)

	_, err := svc.CreateProposal(ctx, jobID, uuid.New(), models.RoleHandyman, CreateProposalInput{Price: 100})

	assert.ErrorIs(t, err, apperror.ErrJobNotFound)
}

func TestCreateProposal_JobNotOpen(t *testing.T) {
	svc, _, jobs, _ := newProposalFixture()
	ctx := context.Background()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID: jobID, Status: models.JobStatusInProgress,
	}, nil)

	_, err := svc.CreateProposal(ctx, jobID, uuid.New(), models.RoleHandyman, CreateProposalInput{Price: 100})

	code, _ := apperror.Code(err)
	assert.Equal(t, apperror.ErrCodeJobNotOpen, code)
	assert.Contains(t, err.Error(), "in_progress")
}

func TestCreateProposal_DuplicateActiveBid(t *testing.T) {
	svc, proposals, jobs, _ := newProposalFixture()
	ctx := context.Background()
	jobID := uuid.New()
	contractorID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusPublished}, nil)
	proposals.On("ListByJob", ctx, jobID).Return([]models.Proposal{
		{JobID: jobID, ContractorID: contractorID, Status: models.ProposalStatusPending},
	}, nil)

	_, err := svc.CreateProposal(ctx, jobID, contractorID, models.RoleHandyman, CreateProposalInput{Price: 100})

	assert.ErrorIs(t, err, apperror.ErrDuplicateProposal)
	proposals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProposal_WithdrawnBidDoesNotBlockRebid(t *testing.T) {
	svc, proposals, jobs, notifier := newProposalFixture()
	ctx := context.Background()
	jobID := uuid.New()
	contractorID := uuid.New()
	customerID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID: jobID, CustomerID: customerID, Status: models.JobStatusPublished,
	}, nil)
	proposals.On("ListByJob", ctx, jobID).Return([]models.Proposal{
		{JobID: jobID, ContractorID: contractorID, Status: models.ProposalStatusWithdrawn},
	}, nil)
	proposals.On("Create", ctx, mock.MatchedBy(func(p *models.Proposal) bool {
		return p.Status == models.ProposalStatusPending && p.ContractorID == contractorID && p.Price == 120.0
	})).Return(nil)
	notifier.On("Notify", ctx, customerID, "proposal.received", mock.Anything).Return()

	proposal, err := svc.CreateProposal(ctx, jobID, contractorID, models.RoleHandyman, CreateProposalInput{Price: 120})

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusPending, proposal.Status)
	proposals.AssertExpectations(t)
}

func TestCreateProposal_StorageConstraintWinsRace(t *testing.T) {
	svc, proposals, jobs, _ := newProposalFixture()
	ctx := context.Background()
	jobID := uuid.New()
	contractorID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusPublished}, nil)
	// The pre-check sees nothing, but the unique index catches the race.
	proposals.On("ListByJob", ctx, jobID).Return([]models.Proposal{}, nil)
	proposals.On("Create", ctx, mock.Anything).Return(apperror.ErrDuplicateProposal)

	_, err := svc.CreateProposal(ctx, jobID, contractorID, models.RoleHandyman, CreateProposalInput{Price: 100})

	assert.ErrorIs(t, err, apperror.ErrDuplicateProposal)
}

func TestWithdrawProposal_NotOwner(t *testing.T) {
	svc, proposals, _, _ := newProposalFixture()
	ctx := context.Background()
	proposalID := uuid.New()

	proposals.On("GetByID", ctx, proposalID).Return(&models.Proposal{
		ID: proposalID, ContractorID: uuid.New(), Status: models.ProposalStatusPending,
	}, nil)

	_, err := svc.WithdrawProposal(ctx, proposalID, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrNotOwner)
}

func TestWithdrawProposal_OnlyPendingWithdrawable(t *testing.T) {
	svc, proposals, _, _ := newProposalFixture()
	ctx := context.Background()
	proposalID := uuid.New()
	contractorID := uuid.New()

	proposals.On("GetByID", ctx, proposalID).Return(&models.Proposal{
		ID: proposalID, ContractorID: contractorID, Status: models.ProposalStatusAccepted,
	}, nil)

	_, err := svc.WithdrawProposal(ctx, proposalID, contractorID)

	assert.ErrorIs(t, err, apperror.ErrInvalidWithdrawState)
}

func TestWithdrawProposal_Success(t *testing.T) {
	svc, proposals, _, _ := newProposalFixture()
	ctx := context.Background()
	proposalID := uuid.New()
	contractorID := uuid.New()

	pending := &models.Proposal{ID: proposalID, ContractorID: contractorID, Status: models.ProposalStatusPending}
	withdrawn := &models.Proposal{ID: proposalID, ContractorID: contractorID, Status: models.ProposalStatusWithdrawn}

	proposals.On("GetByID", ctx, proposalID).Return(pending, nil).Once()
	proposals.On("UpdateStatus", ctx, proposalID,
		models.ProposalStatusPending, models.ProposalStatusWithdrawn).Return(nil)
	proposals.On("GetByID", ctx, proposalID).Return(withdrawn, nil).Once()

	proposal, err := svc.WithdrawProposal(ctx, proposalID, contractorID)

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusWithdrawn, proposal.Status)
}

func TestListProposalsForJob_OwnerOnly(t *testing.T) {
	svc, _, jobs, _ := newProposalFixture()
	ctx := context.Background()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID: jobID, CustomerID: uuid.New(), Status: models.JobStatusPublished,
	}, nil)

	_, err := svc.ListProposalsForJob(ctx, jobID, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrNotOwner)
}

func TestListProposalsForJob_Success(t *testing.T) {
	svc, proposals, jobs, _ := newProposalFixture()
	ctx := context.Background()
	jobID := uuid.New()
	customerID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID: jobID, CustomerID: customerID, Status: models.JobStatusPublished,
	}, nil)
	expected := []models.Proposal{{ID: uuid.New(), JobID: jobID}}
	proposals.On("ListByJob", ctx, jobID).Return(expected, nil)

	got, err := svc.ListProposalsForJob(ctx, jobID, customerID)

	assert.NoError(t, err)
	assert.Equal(t, expected, got)
}
