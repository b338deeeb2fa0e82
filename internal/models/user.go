package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User describes a platform account: customer, handyman, contractor or admin.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Address is a geocodable street address owned by a user.
// Latitude/Longitude stay nil until geocoding succeeds.
type Address struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Line1     string    `db:"line1" json:"line1"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	Zip       string    `db:"zip" json:"zip"`
	Latitude  *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64  `db:"longitude" json:"longitude,omitempty"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Geocoded reports whether the address has coordinates.
func (a *Address) Geocoded() bool {
	return a != nil && a.Latitude != nil && a.Longitude != nil
}

// ContractorProfile holds provider-specific matching data.
// An empty Specialties set means the contractor takes work in any category.
type ContractorProfile struct {
	UserID            uuid.UUID      `db:"user_id" json:"user_id"`
	Bio               *string        `db:"bio" json:"bio,omitempty"`
	Skills            pq.StringArray `db:"skills" json:"skills"`
	Specialties       pq.StringArray `db:"specialties" json:"specialties"`
	HourlyRate        *float64       `db:"hourly_rate" json:"hourly_rate,omitempty"`
	LicenseNumber     *string        `db:"license_number" json:"license_number,omitempty"`
	InsuranceVerified bool           `db:"insurance_verified" json:"insurance_verified"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// ProviderCandidate is a row the matcher works with: a provider whose
// default address is geocoded.
type ProviderCandidate struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Role      string    `db:"role" json:"role"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
}

// Session represents a stored refresh-token session.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
