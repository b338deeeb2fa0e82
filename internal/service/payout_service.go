package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
)

// PayoutRepository describes the payout service's storage dependencies.
type PayoutRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Payout, error)
	ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Payout, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string) error
	MarkPaid(ctx context.Context, id uuid.UUID, providerRef string, paidAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	WalletSummary(ctx context.Context, contractorID uuid.UUID) (*models.WalletSummary, error)
}

// NewPayout derives a payout from the accepted proposal's quoted price.
// The fee is exact, not rounded until presentation.
func NewPayout(job *models.Job, proposal *models.Proposal) *models.Payout {
	gross := proposal.Price
	fee := gross * models.PlatformFeeRate
	return &models.Payout{
		ID:           uuid.New(),
		JobID:        job.ID,
		ContractorID: proposal.ContractorID,
		AmountGross:  gross,
		PlatformFee:  fee,
		AmountNet:    gross - fee,
		Status:       models.PayoutStatusPending,
	}
}

// PayoutService exposes payout reads and post-creation state changes.
// Payout creation itself happens inside the job completion transition.
type PayoutService struct {
	payouts PayoutRepository
}

func NewPayoutService(payouts PayoutRepository) *PayoutService {
	return &PayoutService{payouts: payouts}
}

// QueueForTransfer advances a pending payout to queued_for_transfer.
// Idempotent: a payout already queued or paid is returned unchanged, never
// regressed.
func (s *PayoutService) QueueForTransfer(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	payout, err := s.payouts.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	switch payout.Status {
	case models.PayoutStatusQueuedForTransfer, models.PayoutStatusPaid:
		return payout, nil
	case models.PayoutStatusFailed:
		return nil, apperror.New(apperror.ErrCodeConflict, "failed payout cannot be queued")
	}

	if err := s.payouts.UpdateStatus(ctx, payoutID,
		models.PayoutStatusPending, models.PayoutStatusQueuedForTransfer); err != nil {
		return nil, err
	}

	return s.payouts.GetByID(ctx, payoutID)
}

// GetWalletSummary aggregates a contractor's payouts. Pure function of the
// current payout set.
func (s *PayoutService) GetWalletSummary(ctx context.Context, contractorID uuid.UUID) (*models.WalletSummary, error) {
	return s.payouts.WalletSummary(ctx, contractorID)
}

// ListPayouts returns a contractor's payout history.
func (s *PayoutService) ListPayouts(ctx context.Context, contractorID uuid.UUID) ([]models.Payout, error) {
	return s.payouts.ListByContractor(ctx, contractorID)
}

// GetPayoutForJob returns the payout attached to a job.
func (s *PayoutService) GetPayoutForJob(ctx context.Context, jobID uuid.UUID) (*models.Payout, error) {
	return s.payouts.GetByJobID(ctx, jobID)
}

// RecordSettlement applies the settlement provider's result to a queued
// payout.
func (s *PayoutService) RecordSettlement(ctx context.Context, payoutID uuid.UUID, providerRef string, failureReason string) (*models.Payout, error) {
	if failureReason != "" {
		if err := s.payouts.MarkFailed(ctx, payoutID, failureReason); err != nil {
			return nil, err
		}
	} else {
		if err := s.payouts.MarkPaid(ctx, payoutID, providerRef, time.Now().UTC()); err != nil {
			return nil, err
		}
	}
	return s.payouts.GetByID(ctx, payoutID)
}
