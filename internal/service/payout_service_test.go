package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
)

type mockPayoutRepo struct {
	mock.Mock
}

func (m *mockPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Payout, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Payout, error) {
	args := m.Called(ctx, contractorID)
	return args.Get(0).([]models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string) error {
	args := m.Called(ctx, id, expectedStatus, newStatus)
	return args.Error(0)
}

func (m *mockPayoutRepo) MarkPaid(ctx context.Context, id uuid.UUID, providerRef string, paidAt time.Time) error {
	args := m.Called(ctx, id, providerRef, paidAt)
	return args.Error(0)
}

func (m *mockPayoutRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockPayoutRepo) WalletSummary(ctx context.Context, contractorID uuid.UUID) (*models.WalletSummary, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletSummary), args.Error(1)
}

func TestNewPayout_FeeSplit(t *testing.T) {
	job := &models.Job{ID: uuid.New()}
	contractorID := uuid.New()
	proposal := &models.Proposal{ID: uuid.New(), ContractorID: contractorID, Price: 100.0}

	payout := NewPayout(job, proposal)

	assert.Equal(t, job.ID, payout.JobID)
	assert.Equal(t, contractorID, payout.ContractorID)
	assert.Equal(t, 100.0, payout.AmountGross)
	assert.Equal(t, 15.0, payout.PlatformFee)
	assert.Equal(t, 85.0, payout.AmountNet)
	assert.Equal(t, models.PayoutStatusPending, payout.Status)
}

func TestNewPayout_NetPlusFeeEqualsGross(t *testing.T) {
	for _, price := range []float64{0.03, 19.99, 150, 1234.56, 999999.99} {
		proposal := &models.Proposal{ContractorID: uuid.New(), Price: price}
		payout := NewPayout(&models.Job{ID: uuid.New()}, proposal)

		assert.InDelta(t, payout.AmountGross, payout.AmountNet+payout.PlatformFee, 1e-9)
		assert.InDelta(t, 0.15*price, payout.PlatformFee, 1e-9)
	}
}

func TestQueueForTransfer_FromPending(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := NewPayoutService(repo)
	ctx := context.Background()
	payoutID := uuid.New()

	pending := &models.Payout{ID: payoutID, Status: models.PayoutStatusPending}
	queued := &models.Payout{ID: payoutID, Status: models.PayoutStatusQueuedForTransfer}

	repo.On("GetByID", ctx, payoutID).Return(pending, nil).Once()
	repo.On("UpdateStatus", ctx, payoutID,
		models.PayoutStatusPending, models.PayoutStatusQueuedForTransfer).Return(nil)
	repo.On("GetByID", ctx, payoutID).Return(queued, nil).Once()

	payout, err := svc.QueueForTransfer(ctx, payoutID)

	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusQueuedForTransfer, payout.Status)
	repo.AssertExpectations(t)
}

func TestQueueForTransfer_AlreadyQueuedIsNoop(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := NewPayoutService(repo)
	ctx := context.Background()
	payoutID := uuid.New()

	repo.On("GetByID", ctx, payoutID).Return(&models.Payout{
		ID: payoutID, Status: models.PayoutStatusQueuedForTransfer,
	}, nil)

	payout, err := svc.QueueForTransfer(ctx, payoutID)

	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusQueuedForTransfer, payout.Status)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueForTransfer_NeverRegressesPaid(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := NewPayoutService(repo)
	ctx := context.Background()
	payoutID := uuid.New()

	repo.On("GetByID", ctx, payoutID).Return(&models.Payout{
		ID: payoutID, Status: models.PayoutStatusPaid,
	}, nil)

	payout, err := svc.QueueForTransfer(ctx, payoutID)

	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPaid, payout.Status)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueForTransfer_FailedPayoutRejected(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := NewPayoutService(repo)
	ctx := context.Background()
	payoutID := uuid.New()

	repo.On("GetByID", ctx, payoutID).Return(&models.Payout{
		ID: payoutID, Status: models.PayoutStatusFailed,
	}, nil)

	_, err := svc.QueueForTransfer(ctx, payoutID)

	code, _ := apperror.Code(err)
	assert.Equal(t, apperror.ErrCodeConflict, code)
}

func TestGetWalletSummary_PureAggregation(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := NewPayoutService(repo)
	ctx := context.Background()
	contractorID := uuid.New()

	expected := &models.WalletSummary{
		LifetimeEarnings: 170,
		Available:        85,
		Pending:          42.5,
	}
	repo.On("WalletSummary", ctx, contractorID).Return(expected, nil)

	first, err := svc.GetWalletSummary(ctx, contractorID)
	assert.NoError(t, err)
	second, err := svc.GetWalletSummary(ctx, contractorID)
	assert.NoError(t, err)

	// Identical inputs, identical results.
	assert.Equal(t, first, second)
	assert.Equal(t, expected, first)
}
