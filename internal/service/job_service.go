package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/needanevo/Handyman-app-sub000/internal/logger"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
	"github.com/needanevo/Handyman-app-sub000/internal/validation"
)

// JobStore describes the job service's storage dependencies.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Job, error)
	ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Job, error)
	UpdateDetails(ctx context.Context, job *models.Job) error
}

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
}

// CreateJobInput holds the fields of a new job posting.
type CreateJobInput struct {
	Title       string
	Description string
	Category    string
	AddressLine *string
	BudgetMin   *float64
	BudgetMax   *float64
	Publish     bool
}

// JobService handles job postings. Status changes past creation go through
// the lifecycle service, never here.
type JobService struct {
	jobs     JobStore
	geocoder Geocoder
}

func NewJobService(jobs JobStore, geocoder Geocoder) *JobService {
	return &JobService{jobs: jobs, geocoder: geocoder}
}

// CreateJob posts a new job as draft, or directly as published.
// Geocoding is best effort: a failed lookup leaves the job without
// coordinates, which keeps it out of the matching feed until the address is
// fixed.
func (s *JobService) CreateJob(ctx context.Context, customerID uuid.UUID, in CreateJobInput) (*models.Job, error) {
	if err := validation.JobTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.JobDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.Budget(in.BudgetMin, in.BudgetMax); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.Category == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "category is required")
	}

	status := models.JobStatusDraft
	if in.Publish {
		status = models.JobStatusPublished
	}

	job := &models.Job{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      status,
		AddressLine: in.AddressLine,
		BudgetMin:   in.BudgetMin,
		BudgetMax:   in.BudgetMax,
	}

	s.geocodeJob(ctx, job)

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateJob edits a job's details. Only drafts are editable; everything
// later is frozen except through lifecycle transitions.
func (s *JobService) UpdateJob(ctx context.Context, jobID, customerID uuid.UUID, in CreateJobInput) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CustomerID != customerID {
		return nil, apperror.ErrNotOwner
	}
	if job.Status != models.JobStatusDraft {
		return nil, apperror.Newf(apperror.ErrCodeConflict,
			"only draft jobs can be edited (current status: %s)", job.Status)
	}

	if err := validation.JobTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.JobDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.Budget(in.BudgetMin, in.BudgetMax); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	job.Title = in.Title
	job.Description = in.Description
	if in.Category != "" {
		job.Category = in.Category
	}
	job.BudgetMin = in.BudgetMin
	job.BudgetMax = in.BudgetMax

	addressChanged := in.AddressLine != nil &&
		(job.AddressLine == nil || *job.AddressLine != *in.AddressLine)
	if addressChanged {
		job.AddressLine = in.AddressLine
		job.Latitude = nil
		job.Longitude = nil
		s.geocodeJob(ctx, job)
	}

	if err := s.jobs.UpdateDetails(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// GetJob loads one job.
func (s *JobService) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	return s.jobs.GetByID(ctx, jobID)
}

// ListCustomerJobs returns a customer's postings.
func (s *JobService) ListCustomerJobs(ctx context.Context, customerID uuid.UUID) ([]models.Job, error) {
	return s.jobs.ListByCustomer(ctx, customerID)
}

// ListContractorJobs returns jobs assigned to a contractor.
func (s *JobService) ListContractorJobs(ctx context.Context, contractorID uuid.UUID) ([]models.Job, error) {
	return s.jobs.ListByContractor(ctx, contractorID)
}

func (s *JobService) geocodeJob(ctx context.Context, job *models.Job) {
	if job.AddressLine == nil || *job.AddressLine == "" {
		return
	}
	lat, lon, err := s.geocoder.Geocode(ctx, *job.AddressLine)
	if err != nil {
		logger.Log.WithError(err).WithField("job_id", job.ID).
			Warn("job service: geocoding failed, job stays unmatched until address resolves")
		return
	}
	job.Latitude = &lat
	job.Longitude = &lon
}
