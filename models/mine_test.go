package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validMine() *Mine {
	return &Mine{
		Name:      "Kansanshi North",
		Location:  "Solwezi",
		Status:    MineActive,
		Latitude:  decimal.NewFromFloat(-12.1),
		Longitude: decimal.NewFromFloat(26.4),
	}
}

func TestMineValidate(t *testing.T) {
	assert.NoError(t, validMine().Validate())

	m := validMine()
	m.Name = ""
	assert.Error(t, m.Validate())

	m = validMine()
	m.Status = "Closed"
	assert.Error(t, m.Validate())

	// Coordinates must fall inside Zambia.
	m = validMine()
	m.Latitude = decimal.NewFromFloat(-19.0)
	assert.Error(t, m.Validate())

	m = validMine()
	m.Latitude = decimal.NewFromFloat(-7.5)
	assert.Error(t, m.Validate())

	m = validMine()
	m.Longitude = decimal.NewFromFloat(21.9)
	assert.Error(t, m.Validate())

	m = validMine()
	m.Longitude = decimal.NewFromFloat(34.1)
	assert.Error(t, m.Validate())

	// Bounds are inclusive.
	m = validMine()
	m.Latitude = decimal.NewFromFloat(-18.0)
	m.Longitude = decimal.NewFromFloat(34.0)
	assert.NoError(t, m.Validate())
}

func TestLicenseExpiry(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	m := validMine()
	assert.False(t, m.IsLicenseExpired(now))
	assert.Nil(t, m.DaysUntilExpiry(now))

	expiry := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	m.LicenseExpiry = &expiry
	assert.False(t, m.IsLicenseExpired(now))
	if assert.NotNil(t, m.DaysUntilExpiry(now)) {
		assert.Equal(t, 10, *m.DaysUntilExpiry(now))
	}

	// Expiring today is not expired yet.
	sameDay := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	m.LicenseExpiry = &sameDay
	assert.False(t, m.IsLicenseExpired(now))
	assert.Equal(t, 0, *m.DaysUntilExpiry(now))

	past := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	m.LicenseExpiry = &past
	assert.True(t, m.IsLicenseExpired(now))
	assert.Equal(t, 0, *m.DaysUntilExpiry(now))
}

func TestDaysUntilExpiryAcrossDSTTransition(t *testing.T) {
	// The count is in calendar days, unaffected by a spring-forward
	// transition between now and the expiry date.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	now := time.Date(2026, 2, 15, 9, 0, 0, 0, ny)
	expiry := time.Date(2026, 4, 1, 0, 0, 0, 0, ny)

	m := validMine()
	m.LicenseExpiry = &expiry
	if assert.NotNil(t, m.DaysUntilExpiry(now)) {
		assert.Equal(t, 45, *m.DaysUntilExpiry(now))
	}
}
