package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
	"github.com/needanevo/Handyman-app-sub000/internal/repository/common"
)

// PayoutRepository persists contractor payouts. Payout creation itself
// happens inside the job completion transaction in JobRepository; this
// repository covers reads and post-creation state changes.
type PayoutRepository struct {
	db *sqlx.DB
}

func NewPayoutRepository(db *sqlx.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	query := `SELECT * FROM payouts WHERE id = $1`
	if err := r.db.GetContext(ctx, &payout, query, id); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.ErrPayoutNotFound
		}
		return nil, fmt.Errorf("payout repository: get by id: %w", err)
	}
	return &payout, nil
}

func (r *PayoutRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	query := `SELECT * FROM payouts WHERE job_id = $1`
	if err := r.db.GetContext(ctx, &payout, query, jobID); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.ErrPayoutNotFound
		}
		return nil, fmt.Errorf("payout repository: get by job: %w", err)
	}
	return &payout, nil
}

func (r *PayoutRepository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Payout, error) {
	var payouts []models.Payout
	query := `SELECT * FROM payouts WHERE contractor_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &payouts, query, contractorID); err != nil {
		return nil, fmt.Errorf("payout repository: list by contractor: %w", err)
	}
	return payouts, nil
}

// UpdateStatus moves a payout between states with a compare-and-swap write.
func (r *PayoutRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string) error {
	query := `
		UPDATE payouts SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	return r.execCAS(ctx, id, query, id, expectedStatus, newStatus)
}

// MarkPaid records a successful transfer with the provider's reference.
func (r *PayoutRepository) MarkPaid(ctx context.Context, id uuid.UUID, providerRef string, paidAt time.Time) error {
	query := `
		UPDATE payouts SET status = $3, provider_ref = $4, paid_at = $5, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	return r.execCAS(ctx, id, query, id, models.PayoutStatusQueuedForTransfer, models.PayoutStatusPaid, providerRef, paidAt)
}

// MarkFailed records a failed transfer with a reason.
func (r *PayoutRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE payouts SET status = $3, failure_reason = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	return r.execCAS(ctx, id, query, id, models.PayoutStatusQueuedForTransfer, models.PayoutStatusFailed, reason)
}

// WalletSummary aggregates the contractor's payouts in one query. Lifetime
// earnings count money that is paid or queued, available counts queued only,
// pending counts payouts still waiting on completion review.
func (r *PayoutRepository) WalletSummary(ctx context.Context, contractorID uuid.UUID) (*models.WalletSummary, error) {
	var row struct {
		Lifetime       float64    `db:"lifetime"`
		Available      float64    `db:"available"`
		Pending        float64    `db:"pending"`
		LastPayoutDate *time.Time `db:"last_payout_date"`
	}
	query := `
		SELECT
			COALESCE(SUM(amount_net) FILTER (WHERE status IN ($2, $3)), 0) AS lifetime,
			COALESCE(SUM(amount_net) FILTER (WHERE status = $3), 0)        AS available,
			COALESCE(SUM(amount_net) FILTER (WHERE status = $4), 0)        AS pending,
			MAX(updated_at) FILTER (WHERE status = $2)                     AS last_payout_date
		FROM payouts
		WHERE contractor_id = $1
	`
	err := r.db.GetContext(ctx, &row, query, contractorID,
		models.PayoutStatusPaid, models.PayoutStatusQueuedForTransfer,
		models.PayoutStatusPending)
	if err != nil {
		return nil, fmt.Errorf("payout repository: wallet summary: %w", err)
	}

	return &models.WalletSummary{
		LifetimeEarnings: row.Lifetime,
		Available:        row.Available,
		Pending:          row.Pending,
		LastPayoutDate:   row.LastPayoutDate,
	}, nil
}

func (r *PayoutRepository) execCAS(ctx context.Context, id uuid.UUID, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("payout repository: update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("payout repository: rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM payouts WHERE id = $1)`
		if err := r.db.GetContext(ctx, &exists, existsQuery, id); err != nil {
			return fmt.Errorf("payout repository: check existence: %w", err)
		}
		if !exists {
			return apperror.ErrPayoutNotFound
		}
		return apperror.ErrConcurrentModification
	}
	return nil
}
