package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/needanevo/Handyman-app-sub000/internal/logger"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
	"github.com/needanevo/Handyman-app-sub000/internal/validation"
)

// ProfileRepository describes the profile service's storage dependencies.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateAddress(ctx context.Context, address *models.Address) error
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	GetDefaultAddress(ctx context.Context, userID uuid.UUID) (*models.Address, error)
	SetAddressCoordinates(ctx context.Context, addressID uuid.UUID, lat, lon float64) error
	UpsertContractorProfile(ctx context.Context, profile *models.ContractorProfile) error
	GetContractorProfile(ctx context.Context, userID uuid.UUID) (*models.ContractorProfile, error)
}

// AddAddressInput holds a new street address.
type AddAddressInput struct {
	Line1     string
	City      string
	State     string
	Zip       string
	IsDefault bool
}

// UpdateProfileInput holds contractor profile fields.
type UpdateProfileInput struct {
	Bio               *string
	Skills            []string
	Specialties       []string
	HourlyRate        *float64
	LicenseNumber     *string
	InsuranceVerified *bool
}

// ProfileService manages addresses and contractor profiles. Uploading a
// license or verifying insurance also lands in the growth log, so the
// contractor's progress summary reflects it.
type ProfileService struct {
	repo     ProfileRepository
	geocoder Geocoder
	growth   GrowthEmitter
}

func NewProfileService(repo ProfileRepository, geocoder Geocoder, growth GrowthEmitter) *ProfileService {
	return &ProfileService{repo: repo, geocoder: geocoder, growth: growth}
}

// AddAddress stores and geocodes a new address. Geocoding failure is not
// fatal: the address stays un-geocoded and matching fails closed for it.
func (s *ProfileService) AddAddress(ctx context.Context, userID uuid.UUID, in AddAddressInput) (*models.Address, error) {
	if strings.TrimSpace(in.Line1) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "address line is required")
	}
	if err := validation.ZipCode(in.Zip); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	address := &models.Address{
		ID:        uuid.New(),
		UserID:    userID,
		Line1:     in.Line1,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		IsDefault: in.IsDefault,
	}

	full := fmt.Sprintf("%s, %s, %s %s", in.Line1, in.City, in.State, in.Zip)
	if lat, lon, err := s.geocoder.Geocode(ctx, full); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).
			Warn("profile service: address geocoding failed")
	} else {
		address.Latitude = &lat
		address.Longitude = &lon
	}

	if err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// ListAddresses returns a user's addresses.
func (s *ProfileService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return s.repo.ListAddresses(ctx, userID)
}

// UpdateContractorProfile upserts provider matching data and emits growth
// events for newly present documents.
func (s *ProfileService) UpdateContractorProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.ContractorProfile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := models.ProviderRoles[user.Role]; !ok {
		return nil, apperror.ErrRoleNotAllowed
	}

	if err := validation.Skills(in.Skills); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.Skills(in.Specialties); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	existing, err := s.repo.GetContractorProfile(ctx, userID)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	profile := &models.ContractorProfile{
		UserID:      userID,
		Bio:         in.Bio,
		Skills:      in.Skills,
		Specialties: in.Specialties,
		HourlyRate:  in.HourlyRate,
	}
	if in.LicenseNumber != nil {
		profile.LicenseNumber = in.LicenseNumber
	} else if existing != nil {
		profile.LicenseNumber = existing.LicenseNumber
	}
	if in.InsuranceVerified != nil {
		profile.InsuranceVerified = *in.InsuranceVerified
	} else if existing != nil {
		profile.InsuranceVerified = existing.InsuranceVerified
	}

	if err := s.repo.UpsertContractorProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.emitDocumentEvents(ctx, user, existing, profile)

	return profile, nil
}

// GetContractorProfile loads provider matching data.
func (s *ProfileService) GetContractorProfile(ctx context.Context, userID uuid.UUID) (*models.ContractorProfile, error) {
	return s.repo.GetContractorProfile(ctx, userID)
}

// emitDocumentEvents records license/insurance milestones the first time
// they appear. Best effort.
func (s *ProfileService) emitDocumentEvents(ctx context.Context, user *models.User, before, after *models.ContractorProfile) {
	licenseWasSet := before != nil && before.LicenseNumber != nil
	if after.LicenseNumber != nil && !licenseWasSet {
		s.emit(ctx, user, models.GrowthEventLicenseUploaded)
	}

	insuranceWasSet := before != nil && before.InsuranceVerified
	if after.InsuranceVerified && !insuranceWasSet {
		s.emit(ctx, user, models.GrowthEventInsuranceUploaded)
	}
}

func (s *ProfileService) emit(ctx context.Context, user *models.User, eventType string) {
	meta, _ := json.Marshal(map[string]string{"source": "profile_update"})
	if _, err := s.growth.EmitEvent(ctx, user.ID, user.Role, eventType, 1, meta); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).
			Warnf("profile service: failed to record %s growth event", eventType)
	}
}
