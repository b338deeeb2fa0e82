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

// MediaRepository persists uploaded file metadata.
type MediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(ctx context.Context, file *models.MediaFile) error {
	query := `
		INSERT INTO media_files (id, user_id, job_id, file_path, file_type, file_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	file.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.UserID, file.JobID, file.FilePath, file.FileType,
		file.FileSize, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("media repository: create: %w", err)
	}
	return nil
}

func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	var file models.MediaFile
	query := `SELECT * FROM media_files WHERE id = $1`
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "file not found")
		}
		return nil, fmt.Errorf("media repository: get by id: %w", err)
	}
	return &file, nil
}

func (r *MediaRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.MediaFile, error) {
	var files []models.MediaFile
	query := `SELECT * FROM media_files WHERE job_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &files, query, jobID); err != nil {
		return nil, fmt.Errorf("media repository: list by job: %w", err)
	}
	return files, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM media_files WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("media repository: delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("media repository: delete rows: %w", err)
	}
	if rows == 0 {
		return apperror.New(apperror.ErrCodeNotFound, "file not found")
	}
	return nil
}
