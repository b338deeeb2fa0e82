package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/needanevo/Handyman-app-sub000/internal/geo"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
)

// MatchingJobRepository describes the matcher's view of job storage.
type MatchingJobRepository interface {
	ListPublishedGeocoded(ctx context.Context) ([]models.Job, error)
	CountActiveAssignments(ctx context.Context, contractorID uuid.UUID) (int, error)
}

// ProviderDirectory describes the matcher's view of provider data.
type ProviderDirectory interface {
	GetDefaultAddress(ctx context.Context, userID uuid.UUID) (*models.Address, error)
	GetContractorProfile(ctx context.Context, userID uuid.UUID) (*models.ContractorProfile, error)
	ListGeocodedProviders(ctx context.Context, category string) ([]models.ProviderCandidate, error)
}

// MatchingService filters and ranks jobs and providers by distance.
//
// It fails closed on missing geodata: a provider without a geocoded default
// address sees an empty feed, and a job without coordinates is never routed.
type MatchingService struct {
	jobs        MatchingJobRepository
	providers   ProviderDirectory
	radiusMiles float64
	capacity    int
}

func NewMatchingService(jobs MatchingJobRepository, providers ProviderDirectory, radiusMiles float64, capacity int) *MatchingService {
	return &MatchingService{
		jobs:        jobs,
		providers:   providers,
		radiusMiles: radiusMiles,
		capacity:    capacity,
	}
}

// GetAvailableJobsFeed returns the open jobs a provider is eligible to see,
// nearest first, paginated. Ties sort by job id so the order is reproducible.
// No capacity check applies here: browsing is unrestricted.
func (s *MatchingService) GetAvailableJobsFeed(ctx context.Context, contractorID uuid.UUID, category string, limit, offset int) ([]models.JobWithDistance, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	address, err := s.providers.GetDefaultAddress(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	if !address.Geocoded() {
		return []models.JobWithDistance{}, nil
	}

	specialties, err := s.loadSpecialties(ctx, contractorID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobs.ListPublishedGeocoded(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]models.JobWithDistance, 0, len(jobs))
	for _, job := range jobs {
		if !categoryMatches(specialties, category, job.Category) {
			continue
		}
		distance := geo.Distance(*address.Latitude, *address.Longitude, *job.Latitude, *job.Longitude)
		if distance > s.radiusMiles {
			continue
		}
		eligible = append(eligible, models.JobWithDistance{Job: job, DistanceMiles: distance})
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].DistanceMiles != eligible[j].DistanceMiles {
			return eligible[i].DistanceMiles < eligible[j].DistanceMiles
		}
		return eligible[i].Job.ID.String() < eligible[j].Job.ID.String()
	})

	if offset >= len(eligible) {
		return []models.JobWithDistance{}, nil
	}
	end := offset + limit
	if end > len(eligible) {
		end = len(eligible)
	}
	return eligible[offset:end], nil
}

// FindBestContractor returns the nearest eligible provider with spare
// capacity, or nil when none qualifies and manual assignment is needed.
// Candidates are walked in ascending-distance order and capacity is checked
// lazily per candidate; the first available one wins. This is a greedy
// assignment with no global optimization across jobs.
func (s *MatchingService) FindBestContractor(ctx context.Context, job *models.Job) (*uuid.UUID, error) {
	if !job.Geocoded() {
		return nil, nil
	}

	candidates, err := s.providers.ListGeocodedProviders(ctx, job.Category)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		id       uuid.UUID
		distance float64
	}
	inRange := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		distance := geo.Distance(c.Latitude, c.Longitude, *job.Latitude, *job.Longitude)
		if distance > s.radiusMiles {
			continue
		}
		inRange = append(inRange, ranked{id: c.UserID, distance: distance})
	}

	sort.Slice(inRange, func(i, j int) bool {
		if inRange[i].distance != inRange[j].distance {
			return inRange[i].distance < inRange[j].distance
		}
		return inRange[i].id.String() < inRange[j].id.String()
	})

	for _, candidate := range inRange {
		active, err := s.jobs.CountActiveAssignments(ctx, candidate.id)
		if err != nil {
			return nil, err
		}
		if active < s.capacity {
			id := candidate.id
			return &id, nil
		}
	}

	return nil, nil
}

// loadSpecialties returns the provider's specialty set. A missing profile
// means no restrictions.
func (s *MatchingService) loadSpecialties(ctx context.Context, contractorID uuid.UUID) ([]string, error) {
	profile, err := s.providers.GetContractorProfile(ctx, contractorID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return profile.Specialties, nil
}

// categoryMatches applies the specialty rule: an empty specialty set matches
// any category. A caller-supplied filter further narrows to an exact match.
func categoryMatches(specialties []string, filter, jobCategory string) bool {
	if filter != "" && jobCategory != filter {
		return false
	}
	if len(specialties) == 0 {
		return true
	}
	for _, s := range specialties {
		if s == jobCategory {
			return true
		}
	}
	return false
}
