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

// GrowthRepository persists the append-only growth event log and the derived
// per-contractor summary.
type GrowthRepository struct {
	db *sqlx.DB
}

func NewGrowthRepository(db *sqlx.DB) *GrowthRepository {
	return &GrowthRepository{db: db}
}

// AppendAndRecompute inserts a growth event and rebuilds the contractor's
// summary in the same transaction. The compute callback receives the full
// event history in chronological order, including the new event; the summary
// it returns replaces the stored one. The contractor's history is locked for
// the duration so concurrent emissions serialize.
func (r *GrowthRepository) AppendAndRecompute(
	ctx context.Context,
	event *models.GrowthEvent,
	compute func(events []models.GrowthEvent) *models.GrowthSummary,
) (*models.GrowthSummary, error) {
	var summary *models.GrowthSummary

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Serialize emissions per contractor.
		lockQuery := `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`
		if _, err := tx.ExecContext(ctx, lockQuery, event.ContractorID); err != nil {
			return fmt.Errorf("growth repository: acquire lock: %w", err)
		}

		event.CreatedAt = time.Now().UTC()
		insertQuery := `
			INSERT INTO growth_events (id, contractor_id, role, event_type, value, meta, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, insertQuery,
			event.ID, event.ContractorID, event.Role, event.EventType,
			event.Value, event.Meta, event.CreatedAt); err != nil {
			return fmt.Errorf("growth repository: append event: %w", err)
		}

		var events []models.GrowthEvent
		historyQuery := `
			SELECT * FROM growth_events
			WHERE contractor_id = $1
			ORDER BY created_at, id
		`
		if err := tx.SelectContext(ctx, &events, historyQuery, event.ContractorID); err != nil {
			return fmt.Errorf("growth repository: load history: %w", err)
		}

		summary = compute(events)
		summary.ContractorID = event.ContractorID
		summary.UpdatedAt = time.Now().UTC()

		upsertQuery := `
			INSERT INTO growth_summaries (contractor_id, total_jobs_completed, total_revenue,
			                              rating_sum, rating_count, average_rating,
			                              llc_linked, license_uploaded, insurance_uploaded, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (contractor_id) DO UPDATE SET
				total_jobs_completed = EXCLUDED.total_jobs_completed,
				total_revenue = EXCLUDED.total_revenue,
				rating_sum = EXCLUDED.rating_sum,
				rating_count = EXCLUDED.rating_count,
				average_rating = EXCLUDED.average_rating,
				llc_linked = EXCLUDED.llc_linked,
				license_uploaded = EXCLUDED.license_uploaded,
				insurance_uploaded = EXCLUDED.insurance_uploaded,
				updated_at = EXCLUDED.updated_at
		`
		if _, err := tx.ExecContext(ctx, upsertQuery,
			summary.ContractorID, summary.TotalJobsCompleted, summary.TotalRevenue,
			summary.RatingSum, summary.RatingCount, summary.AverageRating,
			summary.LLCLinked, summary.LicenseUploaded, summary.InsuranceUploaded,
			summary.UpdatedAt); err != nil {
			return fmt.Errorf("growth repository: upsert summary: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *GrowthRepository) GetSummary(ctx context.Context, contractorID uuid.UUID) (*models.GrowthSummary, error) {
	var summary models.GrowthSummary
	query := `SELECT * FROM growth_summaries WHERE contractor_id = $1`
	if err := r.db.GetContext(ctx, &summary, query, contractorID); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "growth summary not found")
		}
		return nil, fmt.Errorf("growth repository: get summary: %w", err)
	}
	return &summary, nil
}

// ListEvents returns a contractor's history newest first, paginated.
func (r *GrowthRepository) ListEvents(ctx context.Context, contractorID uuid.UUID, limit, offset int) ([]models.GrowthEvent, error) {
	var events []models.GrowthEvent
	query := `
		SELECT * FROM growth_events
		WHERE contractor_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &events, query, contractorID, limit, offset); err != nil {
		return nil, fmt.Errorf("growth repository: list events: %w", err)
	}
	return events, nil
}
