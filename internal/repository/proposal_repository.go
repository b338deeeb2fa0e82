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

// ProposalRepository persists contractor bids. A partial unique index in the
// schema guarantees at most one active (pending or accepted) proposal per
// contractor per job, closing the duplicate-bid race at the storage level.
type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (id, job_id, contractor_id, contractor_role, price,
		                       estimated_hours, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`
	now := time.Now().UTC()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		proposal.ID, proposal.JobID, proposal.ContractorID, proposal.ContractorRole,
		proposal.Price, proposal.EstimatedHours, proposal.Message, proposal.Status, now)
	if err != nil {
		if common.IsUniqueViolation(err, "proposals_one_active_per_contractor") {
			return apperror.ErrDuplicateProposal
		}
		return fmt.Errorf("proposal repository: create: %w", err)
	}
	return nil
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	query := `SELECT * FROM proposals WHERE id = $1`
	if err := r.db.GetContext(ctx, &proposal, query, id); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by id: %w", err)
	}
	return &proposal, nil
}

func (r *ProposalRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	query := `SELECT * FROM proposals WHERE job_id = $1 ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &proposals, query, jobID); err != nil {
		return nil, fmt.Errorf("proposal repository: list by job: %w", err)
	}
	return proposals, nil
}

func (r *ProposalRepository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	query := `SELECT * FROM proposals WHERE contractor_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &proposals, query, contractorID); err != nil {
		return nil, fmt.Errorf("proposal repository: list by contractor: %w", err)
	}
	return proposals, nil
}

// UpdateStatus moves a proposal from expectedStatus to newStatus with a
// compare-and-swap write.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string) error {
	query := `
		UPDATE proposals SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, expectedStatus, newStatus)
	if err != nil {
		return fmt.Errorf("proposal repository: update status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("proposal repository: update status rows: %w", err)
	}
	if rows == 0 {
		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM proposals WHERE id = $1)`
		if err := r.db.GetContext(ctx, &exists, existsQuery, id); err != nil {
			return fmt.Errorf("proposal repository: check existence: %w", err)
		}
		if !exists {
			return apperror.ErrProposalNotFound
		}
		return apperror.ErrConcurrentModification
	}
	return nil
}
