package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type MineStatus string

const (
	MineActive   MineStatus = "Active"
	MineInactive MineStatus = "Inactive"
)

// Zambia GPS bounding box.
var (
	minLatitude  = decimal.NewFromFloat(-18.0)
	maxLatitude  = decimal.NewFromFloat(-8.0)
	minLongitude = decimal.NewFromFloat(22.0)
	maxLongitude = decimal.NewFromFloat(34.0)
)

type Mine struct {
	ID            int             `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Location      string          `json:"location" db:"location"`
	Status        MineStatus      `json:"status" db:"status"`
	OwnerID       string          `json:"owner_id" db:"owner_id"`
	Latitude      decimal.Decimal `json:"latitude" db:"latitude"`
	Longitude     decimal.Decimal `json:"longitude" db:"longitude"`
	LicenseDoc    *string         `json:"license_doc,omitempty" db:"license_doc"`
	LicenseExpiry *time.Time      `json:"license_expiry,omitempty" db:"license_expiry"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate checks the fields an owner can set. Name uniqueness is enforced
// by the database.
func (m *Mine) Validate() error {
	if m.Name == "" {
		return errors.New("mine name is required")
	}
	if m.Status != MineActive && m.Status != MineInactive {
		return errors.New("status must be 'Active' or 'Inactive'")
	}
	if m.Latitude.LessThan(minLatitude) || m.Latitude.GreaterThan(maxLatitude) {
		return errors.New("latitude must be between -18.0 and -8.0 (Zambia)")
	}
	if m.Longitude.LessThan(minLongitude) || m.Longitude.GreaterThan(maxLongitude) {
		return errors.New("longitude must be between 22.0 and 34.0 (Zambia)")
	}
	return nil
}

// IsLicenseExpired reports whether the ZEMA license has lapsed. Mines
// without an expiry on file are not treated as expired.
func (m *Mine) IsLicenseExpired(now time.Time) bool {
	if m.LicenseExpiry == nil {
		return false
	}
	return dateOf(*m.LicenseExpiry).Before(dateOf(now))
}

// DaysUntilExpiry returns the days left on the license, clamped at zero,
// or nil when no expiry date is recorded.
func (m *Mine) DaysUntilExpiry(now time.Time) *int {
	if m.LicenseExpiry == nil {
		return nil
	}
	days := daysBetween(dateOf(now), dateOf(*m.LicenseExpiry))
	if days < 0 {
		days = 0
	}
	return &days
}

// dateOf truncates a timestamp to its calendar date in its own location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b (negative when b is
// earlier). The dates are re-anchored in UTC so a DST transition between
// them cannot shave an hour off the difference.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
