package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDailyTargetMet(t *testing.T) {
	p := &ProductionRecord{Quantity: decimal.NewFromFloat(250.00)}
	assert.True(t, p.DailyTargetMet())

	p.Quantity = decimal.NewFromFloat(249.99)
	assert.False(t, p.DailyTargetMet())

	p.Quantity = decimal.NewFromFloat(300)
	assert.True(t, p.DailyTargetMet())
}

func TestIsLate(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	// Same-day entry before the 18:00 cutoff.
	p := &ProductionRecord{
		Date:     day,
		LoggedAt: time.Date(2026, 8, 31, 17, 59, 0, 0, time.UTC),
	}
	assert.False(t, p.IsLate())

	// Exactly 18:00 is still on time; one second later is late.
	p.LoggedAt = time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	assert.False(t, p.IsLate())

	p.LoggedAt = time.Date(2026, 8, 31, 18, 0, 1, 0, time.UTC)
	assert.True(t, p.IsLate())

	// Backdated entry is late regardless of the clock.
	p.LoggedAt = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	assert.True(t, p.IsLate())
}

func TestProductionValidate(t *testing.T) {
	p := &ProductionRecord{
		Date:     time.Now(),
		Quantity: decimal.NewFromFloat(120.5),
	}
	assert.NoError(t, p.Validate())

	p.Quantity = decimal.NewFromFloat(-1)
	assert.Error(t, p.Validate())

	p = &ProductionRecord{Quantity: decimal.NewFromFloat(10)}
	assert.Error(t, p.Validate())
}

func TestPercentOfTarget(t *testing.T) {
	pct := PercentOfTarget(decimal.NewFromFloat(125), DailyTarget)
	assert.True(t, pct.Equal(decimal.NewFromFloat(50)))

	pct = PercentOfTarget(decimal.NewFromFloat(1000), MonthlyTarget)
	assert.True(t, pct.Equal(decimal.NewFromFloat(40)))

	// Rounded to one decimal place.
	pct = PercentOfTarget(decimal.NewFromFloat(100), decimal.NewFromFloat(300))
	assert.True(t, pct.Equal(decimal.NewFromFloat(33.3)))

	// Zero target never divides.
	pct = PercentOfTarget(decimal.NewFromFloat(100), decimal.Zero)
	assert.True(t, pct.Equal(decimal.Zero))
}

func TestUtilization(t *testing.T) {
	assert.Equal(t, 50.0, Utilization(1, 2))
	assert.Equal(t, 66.7, Utilization(2, 3))
	assert.Equal(t, 100.0, Utilization(5, 5))
	assert.Equal(t, 0.0, Utilization(0, 0))
}
