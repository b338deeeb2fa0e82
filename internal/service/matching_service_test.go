package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
)

type mockMatchingJobRepo struct {
	mock.Mock
}

func (m *mockMatchingJobRepo) ListPublishedGeocoded(ctx context.Context) ([]models.Job, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *mockMatchingJobRepo) CountActiveAssignments(ctx context.Context, contractorID uuid.UUID) (int, error) {
	args := m.Called(ctx, contractorID)
	return args.Int(0), args.Error(1)
}

type mockProviderDirectory struct {
	mock.Mock
}

func (m *mockProviderDirectory) GetDefaultAddress(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *mockProviderDirectory) GetContractorProfile(ctx context.Context, userID uuid.UUID) (*models.ContractorProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContractorProfile), args.Error(1)
}

func (m *mockProviderDirectory) ListGeocodedProviders(ctx context.Context, category string) ([]models.ProviderCandidate, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]models.ProviderCandidate), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

// geocodedJob builds a published job at the given coordinates.
func geocodedJob(category string, lat, lon float64) models.Job {
	return models.Job{
		ID:        uuid.New(),
		Status:    models.JobStatusPublished,
		Category:  category,
		Latitude:  ptr(lat),
		Longitude: ptr(lon),
	}
}

func TestFeed_NoGeocodedAddress_FailsClosed(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 5)
	ctx := context.Background()
	contractorID := uuid.New()

	providers.On("GetDefaultAddress", ctx, contractorID).Return(&models.Address{}, nil)

	feed, err := svc.GetAvailableJobsFeed(ctx, contractorID, "", 20, 0)

	assert.NoError(t, err)
	assert.Empty(t, feed)
	jobs.AssertNotCalled(t, "ListPublishedGeocoded", mock.Anything)
}

func TestFeed_NoAddressAtAll_FailsClosed(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 5)
	ctx := context.Background()
	contractorID := uuid.New()

	providers.On("GetDefaultAddress", ctx, contractorID).Return(nil, nil)

	feed, err := svc.GetAvailableJobsFeed(ctx, contractorID, "", 20, 0)

	assert.NoError(t, err)
	assert.Empty(t, feed)
}

func TestFeed_RadiusFilter(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 5)
	ctx := context.Background()
	contractorID := uuid.New()

	// Contractor at the origin point; one job ~10 miles north, one ~60 miles
	// north (1 degree latitude is ~69 miles).
	providers.On("GetDefaultAddress", ctx, contractorID).Return(&models.Address{
		Latitude: ptr(40.0), Longitude: ptr(-74.0),
	}, nil)
	providers.On("GetContractorProfile", ctx, contractorID).
		Return(nil, apperror.New(apperror.ErrCodeNotFound, "contractor profile not found"))

	near := geocodedJob("plumbing", 40.145, -74.0)
	far := geocodedJob("plumbing", 40.87, -74.0)
	jobs.On("ListPublishedGeocoded", ctx).Return([]models.Job{far, near}, nil)

	feed, err := svc.GetAvailableJobsFeed(ctx, contractorID, "", 20, 0)

	assert.NoError(t, err)
	assert.Len(t, feed, 1)
	assert.Equal(t, near.ID, feed[0].Job.ID)
	assert.InDelta(t, 10.0, feed[0].DistanceMiles, 0.5)
}

func TestFeed_SpecialtyFilter(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 5)
	ctx := context.Background()
	contractorID := uuid.New()

	providers.On("GetDefaultAddress", ctx, contractorID).Return(&models.Address{
		Latitude: ptr(40.0), Longitude: ptr(-74.0),
	}, nil)
	providers.On("GetContractorProfile", ctx, contractorID).Return(&models.ContractorProfile{
		UserID:      contractorID,
		Specialties: []string{"plumbing", "electrical"},
	}, nil)

	plumbing := geocodedJob("plumbing", 40.05, -74.0)
	roofing := geocodedJob("roofing", 40.05, -74.0)
	jobs.On("ListPublishedGeocoded", ctx).Return([]models.Job{plumbing, roofing}, nil)

	feed, err := svc.GetAvailableJobsFeed(ctx, contractorID, "", 20, 0)

	assert.NoError(t, err)
	assert.Len(t, feed, 1)
	assert.Equal(t, plumbing.ID, feed[0].Job.ID)
}

func TestFeed_EmptySpecialtiesMatchAnyCategory(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 5)
	ctx := context.Background()
	contractorID := uuid.New()

	providers.On("GetDefaultAddress", ctx, contractorID).Return(&models.Address{
		Latitude: ptr(40.0), Longitude: ptr(-74.0),
	}, nil)
	providers.On("GetContractorProfile", ctx, contractorID).Return(&models.ContractorProfile{
		UserID: contractorID,
	}, nil)

	plumbing := geocodedJob("plumbing", 40.05, -74.0)
	roofing := geocodedJob("roofing", 40.06, -74.0)
	jobs.On("ListPublishedGeocoded", ctx).Return([]models.Job{plumbing, roofing}, nil)

	feed, err := svc.GetAvailableJobsFeed(ctx, contractorID, "", 20, 0)

	assert.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestFeed_SortedByDistanceThenID(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 5)
	ctx := context.Background()
	contractorID := uuid.New()

	providers.On("GetDefaultAddress", ctx, contractorID).Return(&models.Address{
		Latitude: ptr(40.0), Longitude: ptr(-74.0),
	}, nil)
	providers.On("GetContractorProfile", ctx, contractorID).
		Return(nil, apperror.New(apperror.ErrCodeNotFound, "contractor profile not found"))

	far := geocodedJob("plumbing", 40.3, -74.0)
	near := geocodedJob("plumbing", 40.05, -74.0)
	same1 := geocodedJob("plumbing", 40.1, -74.0)
	same2 := geocodedJob("plumbing", 40.1, -74.0)
	jobs.On("ListPublishedGeocoded", ctx).Return([]models.Job{far, same2, near, same1}, nil)

	feed, err := svc.GetAvailableJobsFeed(ctx, contractorID, "", 20, 0)

	assert.NoError(t, err)
	assert.Len(t, feed, 4)
	assert.Equal(t, near.ID, feed[0].Job.ID)
	assert.Equal(t, far.ID, feed[3].Job.ID)
	// Equidistant jobs order by id for reproducibility.
	assert.True(t, feed[1].Job.ID.String() < feed[2].Job.ID.String())
}

func TestFeed_Pagination(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 5)
	ctx := context.Background()
	contractorID := uuid.New()

	providers.On("GetDefaultAddress", ctx, contractorID).Return(&models.Address{
		Latitude: ptr(40.0), Longitude: ptr(-74.0),
	}, nil)
	providers.On("GetContractorProfile", ctx, contractorID).
		Return(nil, apperror.New(apperror.ErrCodeNotFound, "contractor profile not found"))

	pool := []models.Job{
		geocodedJob("plumbing", 40.02, -74.0),
		geocodedJob("plumbing", 40.04, -74.0),
		geocodedJob("plumbing", 40.06, -74.0),
	}
	jobs.On("ListPublishedGeocoded", ctx).Return(pool, nil)

	page, err := svc.GetAvailableJobsFeed(ctx, contractorID, "", 2, 1)
	assert.NoError(t, err)
	assert.Len(t, page, 2)

	empty, err := svc.GetAvailableJobsFeed(ctx, contractorID, "", 2, 10)
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindBestContractor_UngeocodedJob(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 5)

	id, err := svc.FindBestContractor(context.Background(), &models.Job{ID: uuid.New()})

	assert.NoError(t, err)
	assert.Nil(t, id)
	providers.AssertNotCalled(t, "ListGeocodedProviders", mock.Anything, mock.Anything)
}

func TestFindBestContractor_NearestWithCapacityWins(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 5)
	ctx := context.Background()

	job := geocodedJob("plumbing", 40.0, -74.0)

	nearest := models.ProviderCandidate{UserID: uuid.New(), Role: models.RoleHandyman, Latitude: 40.02, Longitude: -74.0}
	second := models.ProviderCandidate{UserID: uuid.New(), Role: models.RoleContractor, Latitude: 40.1, Longitude: -74.0}
	tooFar := models.ProviderCandidate{UserID: uuid.New(), Role: models.RoleHandyman, Latitude: 41.5, Longitude: -74.0}

	providers.On("ListGeocodedProviders", ctx, "plumbing").
		Return([]models.ProviderCandidate{second, tooFar, nearest}, nil)
	// Nearest candidate is at capacity, second one is free.
	jobs.On("CountActiveAssignments", ctx, nearest.UserID).Return(5, nil)
	jobs.On("CountActiveAssignments", ctx, second.UserID).Return(2, nil)

	id, err := svc.FindBestContractor(ctx, &job)

	assert.NoError(t, err)
	assert.NotNil(t, id)
	assert.Equal(t, second.UserID, *id)
	jobs.AssertNotCalled(t, "CountActiveAssignments", ctx, tooFar.UserID)
}

func TestFindBestContractor_AllAtCapacity(t *testing.T) {
	jobs := new(mockMatchingJobRepo)
	providers := new(mockProviderDirectory)
	svc := NewMatchingService(jobs, providers, 50, 1)
	ctx := context.Background()

	job := geocodedJob("plumbing", 40.0, -74.0)
	only := models.ProviderCandidate{UserID: uuid.New(), Role: models.RoleHandyman, Latitude: 40.02, Longitude: -74.0}

	providers.On("ListGeocodedProviders", ctx, "plumbing").
		Return([]models.ProviderCandidate{only}, nil)
	jobs.On("CountActiveAssignments", ctx, only.UserID).Return(1, nil)

	id, err := svc.FindBestContractor(ctx, &job)

	assert.NoError(t, err)
	assert.Nil(t, id)
}
