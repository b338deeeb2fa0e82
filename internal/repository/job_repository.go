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

// JobRepository persists jobs. Status changes go through compare-and-swap
// writes: every UPDATE carries the status the caller read, and zero affected
// rows means somebody else won the race.
type JobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, customer_id, title, description, category, status,
		                  address_line, latitude, longitude, budget_min, budget_max,
		                  created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.CustomerID, job.Title, job.Description, job.Category, job.Status,
		job.AddressLine, job.Latitude, job.Longitude, job.BudgetMin, job.BudgetMax, now)
	if err != nil {
		return fmt.Errorf("job repository: create: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	query := `SELECT * FROM jobs WHERE id = $1`
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, fmt.Errorf("job repository: get by id: %w", err)
	}
	return &job, nil
}

// ListPublishedGeocoded returns published jobs that have coordinates,
// oldest first. Jobs without coordinates never reach the matcher.
func (r *JobRepository) ListPublishedGeocoded(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	query := `
		SELECT * FROM jobs
		WHERE status = $1 AND latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at, id
	`
	if err := r.db.SelectContext(ctx, &jobs, query, models.JobStatusPublished); err != nil {
		return nil, fmt.Errorf("job repository: list published: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	query := `SELECT * FROM jobs WHERE customer_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &jobs, query, customerID); err != nil {
		return nil, fmt.Errorf("job repository: list by customer: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	query := `SELECT * FROM jobs WHERE contractor_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &jobs, query, contractorID); err != nil {
		return nil, fmt.Errorf("job repository: list by contractor: %w", err)
	}
	return jobs, nil
}

// UpdateDetails saves editable fields of a draft.
func (r *JobRepository) UpdateDetails(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs
		SET title = $2, description = $3, category = $4, address_line = $5,
		    latitude = $6, longitude = $7, budget_min = $8, budget_max = $9,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		job.ID, job.Title, job.Description, job.Category, job.AddressLine,
		job.Latitude, job.Longitude, job.BudgetMin, job.BudgetMax)
	if err != nil {
		return fmt.Errorf("job repository: update details: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("job repository: update details rows: %w", err)
	}
	if rows == 0 {
		return apperror.ErrJobNotFound
	}
	return nil
}

// UpdateStatus writes the job's status and transition-owned fields with a
// compare-and-swap on expectedStatus. Zero rows affected means either the
// job vanished or another writer changed the status first.
func (r *JobRepository) UpdateStatus(ctx context.Context, job *models.Job, expectedStatus string) error {
	query := `
		UPDATE jobs
		SET status = $3, contractor_id = $4, accepted_proposal_id = $5,
		    scheduled_start = $6, scheduled_end = $7, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		job.ID, expectedStatus, job.Status, job.ContractorID, job.AcceptedProposalID,
		job.ScheduledStart, job.ScheduledEnd)
	if err != nil {
		return fmt.Errorf("job repository: update status: %w", err)
	}
	return r.checkCASResult(ctx, result, job.ID)
}

// AcceptProposal atomically selects a proposal for a published job: the job
// moves to proposal_selected with the winning contractor attached, the
// winning proposal becomes accepted, and every other pending proposal on the
// job becomes rejected. All three writes commit or none do.
func (r *JobRepository) AcceptProposal(ctx context.Context, jobID, proposalID, contractorID uuid.UUID) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		jobQuery := `
			UPDATE jobs
			SET status = $3, contractor_id = $4, accepted_proposal_id = $5, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`
		result, err := tx.ExecContext(ctx, jobQuery,
			jobID, models.JobStatusPublished, models.JobStatusProposalSelected,
			contractorID, proposalID)
		if err != nil {
			return fmt.Errorf("job repository: accept proposal job update: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("job repository: accept proposal rows: %w", err)
		}
		if rows == 0 {
			return r.classifyCASMiss(ctx, jobID)
		}

		acceptQuery := `
			UPDATE proposals SET status = $3, updated_at = NOW()
			WHERE id = $1 AND job_id = $2 AND status = $4
		`
		result, err = tx.ExecContext(ctx, acceptQuery,
			proposalID, jobID, models.ProposalStatusAccepted, models.ProposalStatusPending)
		if err != nil {
			return fmt.Errorf("job repository: accept proposal: %w", err)
		}
		rows, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("job repository: accept proposal rows: %w", err)
		}
		if rows == 0 {
			return apperror.ErrProposalNotFound
		}

		rejectQuery := `
			UPDATE proposals SET status = $3, updated_at = NOW()
			WHERE job_id = $1 AND id <> $2 AND status = $4
		`
		if _, err := tx.ExecContext(ctx, rejectQuery,
			jobID, proposalID, models.ProposalStatusRejected, models.ProposalStatusPending); err != nil {
			return fmt.Errorf("job repository: reject losing proposals: %w", err)
		}

		return nil
	})
	return err
}

// FinishWithPayout atomically moves a job from in_progress to
// completed_pending_review, inserts the payout row, and links it back to the
// job. A partial failure rolls everything back, so a reader never sees the
// new status without its payout.
func (r *JobRepository) FinishWithPayout(ctx context.Context, jobID uuid.UUID, payout *models.Payout) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()
		payout.CreatedAt = now
		payout.UpdatedAt = now

		payoutQuery := `
			INSERT INTO payouts (id, job_id, contractor_id, amount_gross, platform_fee,
			                     amount_net, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		`
		if _, err := tx.ExecContext(ctx, payoutQuery,
			payout.ID, payout.JobID, payout.ContractorID, payout.AmountGross,
			payout.PlatformFee, payout.AmountNet, payout.Status, now); err != nil {
			if common.IsUniqueViolation(err, "") {
				return apperror.Wrap(err, apperror.ErrCodePayoutCreation, "payout already exists for this job")
			}
			return apperror.Wrap(err, apperror.ErrCodePayoutCreation, "insert payout failed")
		}

		jobQuery := `
			UPDATE jobs SET status = $3, payout_id = $4, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`
		result, err := tx.ExecContext(ctx, jobQuery,
			jobID, models.JobStatusInProgress, models.JobStatusCompletedPendingReview, payout.ID)
		if err != nil {
			return fmt.Errorf("job repository: finish job update: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("job repository: finish job rows: %w", err)
		}
		if rows == 0 {
			return r.classifyCASMiss(ctx, jobID)
		}

		return nil
	})
	return err
}

// CompleteAndQueuePayout atomically moves a job from completed_pending_review
// to completed and advances its payout to queued_for_transfer. The payout
// update only touches pending payouts, so re-running after a partial retry
// never regresses a paid payout.
func (r *JobRepository) CompleteAndQueuePayout(ctx context.Context, jobID uuid.UUID, payoutID *uuid.UUID) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		jobQuery := `
			UPDATE jobs SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`
		result, err := tx.ExecContext(ctx, jobQuery,
			jobID, models.JobStatusCompletedPendingReview, models.JobStatusCompleted)
		if err != nil {
			return fmt.Errorf("job repository: complete job update: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("job repository: complete job rows: %w", err)
		}
		if rows == 0 {
			return r.classifyCASMiss(ctx, jobID)
		}

		if payoutID == nil {
			return nil
		}

		payoutQuery := `
			UPDATE payouts SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`
		if _, err := tx.ExecContext(ctx, payoutQuery,
			*payoutID, models.PayoutStatusPending, models.PayoutStatusQueuedForTransfer); err != nil {
			return fmt.Errorf("job repository: queue payout: %w", err)
		}

		return nil
	})
	return err
}

// CountActiveAssignments returns how many jobs currently count against the
// contractor's capacity.
func (r *JobRepository) CountActiveAssignments(ctx context.Context, contractorID uuid.UUID) (int, error) {
	query, args, err := sqlx.In(`
		SELECT COUNT(*) FROM jobs
		WHERE contractor_id = ? AND status IN (?)
	`, contractorID, models.ActiveAssignmentStatuses)
	if err != nil {
		return 0, fmt.Errorf("job repository: count active query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("job repository: count active: %w", err)
	}
	return count, nil
}

func (r *JobRepository) checkCASResult(ctx context.Context, result interface{ RowsAffected() (int64, error) }, jobID uuid.UUID) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("job repository: rows affected: %w", err)
	}
	if rows == 0 {
		return r.classifyCASMiss(ctx, jobID)
	}
	return nil
}

// classifyCASMiss distinguishes a missing job from a lost race.
func (r *JobRepository) classifyCASMiss(ctx context.Context, jobID uuid.UUID) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, jobID); err != nil {
		return fmt.Errorf("job repository: check existence: %w", err)
	}
	if !exists {
		return apperror.ErrJobNotFound
	}
	return apperror.ErrConcurrentModification
}
