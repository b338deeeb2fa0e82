package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
)

// GrowthRepository describes the growth aggregator's storage dependencies.
type GrowthRepository interface {
	AppendAndRecompute(ctx context.Context, event *models.GrowthEvent, compute func(events []models.GrowthEvent) *models.GrowthSummary) (*models.GrowthSummary, error)
	GetSummary(ctx context.Context, contractorID uuid.UUID) (*models.GrowthSummary, error)
	ListEvents(ctx context.Context, contractorID uuid.UUID, limit, offset int) ([]models.GrowthEvent, error)
}

// GrowthService maintains an append-only event log per contractor and a
// derived summary. Every emission recomputes the summary from the complete
// history rather than merging incrementally, so the summary can never drift
// from the log. O(event count) work per emission is the accepted cost.
type GrowthService struct {
	repo GrowthRepository
}

func NewGrowthService(repo GrowthRepository) *GrowthService {
	return &GrowthService{repo: repo}
}

// EmitEvent appends one event and rebuilds the contractor's summary.
func (s *GrowthService) EmitEvent(ctx context.Context, contractorID uuid.UUID, role, eventType string, value float64, meta json.RawMessage) (*models.GrowthSummary, error) {
	if _, ok := models.ValidGrowthEventTypes[eventType]; !ok {
		return nil, apperror.Newf(apperror.ErrCodeValidation, "unknown growth event type %q", eventType)
	}

	event := &models.GrowthEvent{
		ID:           uuid.New(),
		ContractorID: contractorID,
		Role:         role,
		EventType:    eventType,
		Value:        value,
		Meta:         meta,
	}

	return s.repo.AppendAndRecompute(ctx, event, ComputeSummary)
}

// GetSummary returns a contractor's summary. A contractor with no history
// gets a zero-valued summary, not an error.
func (s *GrowthService) GetSummary(ctx context.Context, contractorID uuid.UUID) (*models.GrowthSummary, error) {
	summary, err := s.repo.GetSummary(ctx, contractorID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return &models.GrowthSummary{ContractorID: contractorID}, nil
		}
		return nil, err
	}
	return summary, nil
}

// GetEvents returns a contractor's history newest first, paginated.
func (s *GrowthService) GetEvents(ctx context.Context, contractorID uuid.UUID, limit, offset int) ([]models.GrowthEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListEvents(ctx, contractorID, limit, offset)
}

// ComputeSummary derives a summary from a complete event history. The
// history must be in chronological order so document-status flags resolve
/// deterministically. Flags only move forward: a later event of the same
// type never reverts a set flag.
func ComputeSummary(events []models.GrowthEvent) *models.GrowthSummary {
	summary := &models.GrowthSummary{}

	for _, event := range events {
		switch event.EventType {
		case models.GrowthEventJobCompleted:
			summary.TotalJobsCompleted += int(event.Value)
		case models.GrowthEventRevenueEarned:
			summary.TotalRevenue += event.Value
		case models.GrowthEventFiveStarReview:
			summary.RatingSum += 5
			summary.RatingCount++
		case models.GrowthEventFourStarReview:
			summary.RatingSum += 4
			summary.RatingCount++
		case models.GrowthEventLLCLinked:
			summary.LLCLinked = true
		case models.GrowthEventLicenseUploaded:
			summary.LicenseUploaded = true
		case models.GrowthEventInsuranceUploaded:
			summary.InsuranceUploaded = true
		}
	}

	if summary.RatingCount > 0 {
		summary.AverageRating = summary.RatingSum / float64(summary.RatingCount)
	}

	return summary
}
