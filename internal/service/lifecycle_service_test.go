package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/needanevo/Handyman-app-sub000/internal/logger"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
)

func init() {
	logger.Init("error")
}

type mockJobRepo struct {
	mock.Mock
}

func (m *mockJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *mockJobRepo) UpdateStatus(ctx context.Context, job *models.Job, expectedStatus string) error {
	args := m.Called(ctx, job, expectedStatus)
	return args.Error(0)
}

func (m *mockJobRepo) AcceptProposal(ctx context.Context, jobID, proposalID, contractorID uuid.UUID) error {
	args := m.Called(ctx, jobID, proposalID, contractorID)
	return args.Error(0)
}

func (m *mockJobRepo) FinishWithPayout(ctx context.Context, jobID uuid.UUID, payout *models.Payout) error {
	args := m.Called(ctx, jobID, payout)
	return args.Error(0)
}

func (m *mockJobRepo) CompleteAndQueuePayout(ctx context.Context, jobID uuid.UUID, payoutID *uuid.UUID) error {
	args := m.Called(ctx, jobID, payoutID)
	return args.Error(0)
}

type mockProposalGetter struct {
	mock.Mock
}

func (m *mockProposalGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

type mockGrowthEmitter struct {
	mock.Mock
}

func (m *mockGrowthEmitter) EmitEvent(ctx context.Context, contractorID uuid.UUID, role, eventType string, value float64, meta json.RawMessage) (*models.GrowthSummary, error) {
	args := m.Called(ctx, contractorID, role, eventType, value, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GrowthSummary), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, event string, payload interface{}) {
	m.Called(ctx, userID, event, payload)
}

func newLifecycleFixture() (*LifecycleService, *mockJobRepo, *mockProposalGetter, *mockGrowthEmitter, *mockNotifier) {
	jobs := new(mockJobRepo)
	proposals := new(mockProposalGetter)
	growth := new(mockGrowthEmitter)
	notifier := new(mockNotifier)
	svc := NewLifecycleService(jobs, proposals, growth, notifier)
	return svc, jobs, proposals, growth, notifier
}

func TestApplyTransition_InvalidTarget(t *testing.T) {
	svc, jobs, _, _, _ := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusDraft}, nil)

	_, err := svc.ApplyTransition(ctx, jobID, models.JobStatusInProgress, uuid.New(), TransitionExtra{})

	assert.Error(t, err)
	code, ok := apperror.Code(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeLifecycleViolation, code)
	assert.Contains(t, err.Error(), "draft")
	assert.Contains(t, err.Error(), "in_progress")
	jobs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyTransition_TerminalStateIsFinal(t *testing.T) {
	svc, jobs, _, _, _ := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusCompleted}, nil)

	_, err := svc.ApplyTransition(ctx, jobID, models.JobStatusPublished, uuid.New(), TransitionExtra{})

	code, _ := apperror.Code(err)
	assert.Equal(t, apperror.ErrCodeLifecycleViolation, code)
}

func TestApplyTransition_Publish(t *testing.T) {
	svc, jobs, _, _, notifier := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()
	customerID := uuid.New()

	draft := &models.Job{ID: jobID, CustomerID: customerID, Status: models.JobStatusDraft}
	published := &models.Job{ID: jobID, CustomerID: customerID, Status: models.JobStatusPublished}

	jobs.On("GetByID", ctx, jobID).Return(draft, nil).Once()
	jobs.On("UpdateStatus", ctx, mock.MatchedBy(func(j *models.Job) bool {
		return j.Status == models.JobStatusPublished
	}), models.JobStatusDraft).Return(nil)
	jobs.On("GetByID", ctx, jobID).Return(published, nil).Once()
	notifier.On("Notify", ctx, mock.Anything, "job.status_changed", mock.Anything).Maybe()

	job, err := svc.ApplyTransition(ctx, jobID, models.JobStatusPublished, customerID, TransitionExtra{})

	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusPublished, job.Status)
	jobs.AssertExpectations(t)
}

func TestApplyTransition_SelectProposal_MissingData(t *testing.T) {
	svc, jobs, _, _, _ := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusPublished}, nil)

	proposalID := uuid.New()
	_, err := svc.ApplyTransition(ctx, jobID, models.JobStatusProposalSelected, uuid.New(), TransitionExtra{
		AcceptedProposalID: &proposalID,
	})

	code, _ := apperror.Code(err)
	assert.Equal(t, apperror.ErrCodeMissingTransitionData, code)
	jobs.AssertNotCalled(t, "AcceptProposal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyTransition_SelectProposal(t *testing.T) {
	svc, jobs, _, _, notifier := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()
	proposalID := uuid.New()
	contractorID := uuid.New()

	published := &models.Job{ID: jobID, Status: models.JobStatusPublished}
	selected := &models.Job{
		ID:                 jobID,
		Status:             models.JobStatusProposalSelected,
		ContractorID:       &contractorID,
		AcceptedProposalID: &proposalID,
	}

	jobs.On("GetByID", ctx, jobID).Return(published, nil).Once()
	jobs.On("AcceptProposal", ctx, jobID, proposalID, contractorID).Return(nil)
	jobs.On("GetByID", ctx, jobID).Return(selected, nil).Once()
	notifier.On("Notify", ctx, contractorID, "proposal.accepted", mock.Anything).Return()

	job, err := svc.ApplyTransition(ctx, jobID, models.JobStatusProposalSelected, uuid.New(), TransitionExtra{
		AcceptedProposalID:   &proposalID,
		AssignedContractorID: &contractorID,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusProposalSelected, job.Status)
	assert.Equal(t, contractorID, *job.ContractorID)
	jobs.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestApplyTransition_FinishCreatesPayout(t *testing.T) {
	svc, jobs, proposals, _, notifier := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()
	proposalID := uuid.New()
	contractorID := uuid.New()
	customerID := uuid.New()

	inProgress := &models.Job{
		ID:                 jobID,
		CustomerID:         customerID,
		Status:             models.JobStatusInProgress,
		ContractorID:       &contractorID,
		AcceptedProposalID: &proposalID,
	}
	payoutID := uuid.New()
	finished := &models.Job{
		ID:       jobID,
		Status:   models.JobStatusCompletedPendingReview,
		PayoutID: &payoutID,
	}

	jobs.On("GetByID", ctx, jobID).Return(inProgress, nil).Once()
	proposals.On("GetByID", ctx, proposalID).Return(&models.Proposal{
		ID:           proposalID,
		JobID:        jobID,
		ContractorID: contractorID,
		Price:        100.0,
		Status:       models.ProposalStatusAccepted,
	}, nil)
	jobs.On("FinishWithPayout", ctx, jobID, mock.MatchedBy(func(p *models.Payout) bool {
		return p.AmountGross == 100.0 && p.PlatformFee == 15.0 && p.AmountNet == 85.0 &&
			p.Status == models.PayoutStatusPending && p.ContractorID == contractorID
	})).Return(nil)
	jobs.On("GetByID", ctx, jobID).Return(finished, nil).Once()
	notifier.On("Notify", ctx, customerID, "job.awaiting_review", mock.Anything).Return()

	job, err := svc.ApplyTransition(ctx, jobID, models.JobStatusCompletedPendingReview, contractorID, TransitionExtra{})

	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusCompletedPendingReview, job.Status)
	jobs.AssertExpectations(t)
}

func TestApplyTransition_FinishWithoutAcceptedProposal(t *testing.T) {
	svc, jobs, _, _, _ := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()
	contractorID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:           jobID,
		Status:       models.JobStatusInProgress,
		ContractorID: &contractorID,
	}, nil)

	_, err := svc.ApplyTransition(ctx, jobID, models.JobStatusCompletedPendingReview, contractorID, TransitionExtra{})

	code, _ := apperror.Code(err)
	assert.Equal(t, apperror.ErrCodePayoutCreation, code)
}

func TestApplyTransition_FinishDanglingProposal(t *testing.T) {
	svc, jobs, proposals, _, _ := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()
	proposalID := uuid.New()
	contractorID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:                 jobID,
		Status:             models.JobStatusInProgress,
		ContractorID:       &contractorID,
		AcceptedProposalID: &proposalID,
	}, nil)
	proposals.On("GetByID", ctx, proposalID).Return(nil, apperror.ErrProposalNotFound)

	_, err := svc.ApplyTransition(ctx, jobID, models.JobStatusCompletedPendingReview, contractorID, TransitionExtra{})

	code, _ := apperror.Code(err)
	assert.Equal(t, apperror.ErrCodePayoutCreation, code)
}

func TestApplyTransition_CompleteQueuesPayoutAndRecordsGrowth(t *testing.T) {
	svc, jobs, proposals, growth, notifier := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()
	proposalID := uuid.New()
	contractorID := uuid.New()
	payoutID := uuid.New()

	pendingReview := &models.Job{
		ID:                 jobID,
		Status:             models.JobStatusCompletedPendingReview,
		ContractorID:       &contractorID,
		AcceptedProposalID: &proposalID,
		PayoutID:           &payoutID,
	}
	completed := &models.Job{ID: jobID, Status: models.JobStatusCompleted, ContractorID: &contractorID, PayoutID: &payoutID}

	jobs.On("GetByID", ctx, jobID).Return(pendingReview, nil).Once()
	jobs.On("CompleteAndQueuePayout", ctx, jobID, &payoutID).Return(nil)
	proposals.On("GetByID", ctx, proposalID).Return(&models.Proposal{
		ID: proposalID, ContractorID: contractorID, Price: 100.0,
	}, nil)
	growth.On("EmitEvent", ctx, contractorID, models.RoleContractor,
		models.GrowthEventJobCompleted, float64(1), mock.Anything).Return(&models.GrowthSummary{}, nil)
	growth.On("EmitEvent", ctx, contractorID, models.RoleContractor,
		models.GrowthEventRevenueEarned, 85.0, mock.Anything).Return(&models.GrowthSummary{}, nil)
	notifier.On("Notify", ctx, contractorID, "payout.queued", mock.Anything).Return()
	jobs.On("GetByID", ctx, jobID).Return(completed, nil).Once()

	job, err := svc.ApplyTransition(ctx, jobID, models.JobStatusCompleted, uuid.New(), TransitionExtra{})

	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	growth.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestApplyTransition_ConcurrentModification(t *testing.T) {
	svc, jobs, _, _, _ := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()

	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Status: models.JobStatusScheduled}, nil)
	jobs.On("UpdateStatus", ctx, mock.Anything, models.JobStatusScheduled).
		Return(apperror.ErrConcurrentModification)

	_, err := svc.ApplyTransition(ctx, jobID, models.JobStatusInProgress, uuid.New(), TransitionExtra{})

	assert.True(t, apperror.IsConcurrentModification(err))
}

func mustTime(t *testing.T, v string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, v)
	assert.NoError(t, err)
	return ts
}

func TestApplyTransition_Schedule(t *testing.T) {
	svc, jobs, _, _, _ := newLifecycleFixture()
	ctx := context.Background()
	jobID := uuid.New()
	contractorID := uuid.New()

	selected := &models.Job{ID: jobID, Status: models.JobStatusProposalSelected, ContractorID: &contractorID}
	scheduled := &models.Job{ID: jobID, Status: models.JobStatusScheduled, ContractorID: &contractorID}

	start := mustTime(t, "2026-09-10T09:00:00Z")
	end := mustTime(t, "2026-09-10T12:00:00Z")

	jobs.On("GetByID", ctx, jobID).Return(selected, nil).Once()
	jobs.On("UpdateStatus", ctx, mock.MatchedBy(func(j *models.Job) bool {
		return j.Status == models.JobStatusScheduled &&
			j.ScheduledStart != nil && j.ScheduledStart.Equal(start) &&
			j.ScheduledEnd != nil && j.ScheduledEnd.Equal(end)
	}), models.JobStatusProposalSelected).Return(nil)
	jobs.On("GetByID", ctx, jobID).Return(scheduled, nil).Once()

	job, err := svc.ApplyTransition(ctx, jobID, models.JobStatusScheduled, contractorID, TransitionExtra{
		ScheduledStart: &start,
		ScheduledEnd:   &end,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusScheduled, job.Status)
	jobs.AssertExpectations(t)
}
