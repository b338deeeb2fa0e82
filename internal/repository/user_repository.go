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

// UserRepository persists accounts, sessions, addresses and contractor
// profiles.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, role, phone,
		                   is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.Role,
		user.Phone, user.IsActive, now)
	if err != nil {
		if common.IsUniqueViolation(err, "") {
			return apperror.New(apperror.ErrCodeConflict, "email or username already taken")
		}
		return fmt.Errorf("user repository: create: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_login_at = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("user repository: update last login: %w", err)
	}
	return nil
}

// Sessions.

func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, refresh_token, user_agent, ip_address,
		                      expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	session.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.RefreshToken, session.UserAgent,
		session.IPAddress, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("user repository: create session: %w", err)
	}
	return nil
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	query := `SELECT * FROM sessions WHERE refresh_token = $1`
	if err := r.db.GetContext(ctx, &session, query, refreshToken); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, fmt.Errorf("user repository: get session: %w", err)
	}
	return &session, nil
}

func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	query := `DELETE FROM sessions WHERE refresh_token = $1`
	if _, err := r.db.ExecContext(ctx, query, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session: %w", err)
	}
	return nil
}

func (r *UserRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < NOW()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("user repository: delete expired sessions: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// Addresses.

func (r *UserRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if address.IsDefault {
			clearQuery := `UPDATE addresses SET is_default = FALSE WHERE user_id = $1`
			if _, err := tx.ExecContext(ctx, clearQuery, address.UserID); err != nil {
				return fmt.Errorf("user repository: clear default address: %w", err)
			}
		}

		address.CreatedAt = time.Now().UTC()
		insertQuery := `
			INSERT INTO addresses (id, user_id, line1, city, state, zip,
			                       latitude, longitude, is_default, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := tx.ExecContext(ctx, insertQuery,
			address.ID, address.UserID, address.Line1, address.City, address.State,
			address.Zip, address.Latitude, address.Longitude, address.IsDefault,
			address.CreatedAt); err != nil {
			return fmt.Errorf("user repository: create address: %w", err)
		}
		return nil
	})
	return err
}

func (r *UserRepository) GetDefaultAddress(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var address models.Address
	query := `SELECT * FROM addresses WHERE user_id = $1 AND is_default = TRUE`
	if err := r.db.GetContext(ctx, &address, query, userID); err != nil {
		if common.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("user repository: get default address: %w", err)
	}
	return &address, nil
}

func (r *UserRepository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	query := `SELECT * FROM addresses WHERE user_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &addresses, query, userID); err != nil {
		return nil, fmt.Errorf("user repository: list addresses: %w", err)
	}
	return addresses, nil
}

// SetAddressCoordinates records a geocoding result.
func (r *UserRepository) SetAddressCoordinates(ctx context.Context, addressID uuid.UUID, lat, lon float64) error {
	query := `UPDATE addresses SET latitude = $2, longitude = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, addressID, lat, lon); err != nil {
		return fmt.Errorf("user repository: set address coordinates: %w", err)
	}
	return nil
}

// Contractor profiles.

func (r *UserRepository) UpsertContractorProfile(ctx context.Context, profile *models.ContractorProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	query := `
		INSERT INTO contractor_profiles (user_id, bio, skills, specialties, hourly_rate,
		                                 license_number, insurance_verified, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			bio = EXCLUDED.bio,
			skills = EXCLUDED.skills,
			specialties = EXCLUDED.specialties,
			hourly_rate = EXCLUDED.hourly_rate,
			license_number = EXCLUDED.license_number,
			insurance_verified = EXCLUDED.insurance_verified,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.UserID, profile.Bio, profile.Skills, profile.Specialties,
		profile.HourlyRate, profile.LicenseNumber, profile.InsuranceVerified,
		profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user repository: upsert profile: %w", err)
	}
	return nil
}

func (r *UserRepository) GetContractorProfile(ctx context.Context, userID uuid.UUID) (*models.ContractorProfile, error) {
	var profile models.ContractorProfile
	query := `SELECT * FROM contractor_profiles WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if common.IsNoRows(err) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "contractor profile not found")
		}
		return nil, fmt.Errorf("user repository: get profile: %w", err)
	}
	return &profile, nil
}

// ListGeocodedProviders returns active providers whose default address has
// coordinates. Category filtering honors the empty-specialties convention:
// a provider with no specialties listed takes work in any category.
func (r *UserRepository) ListGeocodedProviders(ctx context.Context, category string) ([]models.ProviderCandidate, error) {
	var candidates []models.ProviderCandidate
	query := `
		SELECT u.id AS user_id, u.role, a.latitude, a.longitude
		FROM users u
		JOIN addresses a
		  ON a.user_id = u.id AND a.is_default = TRUE
		 AND a.latitude IS NOT NULL AND a.longitude IS NOT NULL
		LEFT JOIN contractor_profiles p ON p.user_id = u.id
		WHERE u.is_active = TRUE
		  AND u.role IN ($1, $2)
		  AND (p.user_id IS NULL
		       OR p.specialties IS NULL
		       OR cardinality(p.specialties) = 0
		       OR $3 = ANY(p.specialties))
		ORDER BY u.id
	`
	if err := r.db.SelectContext(ctx, &candidates, query,
		models.RoleHandyman, models.RoleContractor, category); err != nil {
		return nil, fmt.Errorf("user repository: list providers: %w", err)
	}
	return candidates, nil
}
