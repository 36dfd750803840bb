package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func equipmentWithHours(used, lastService float64) *Equipment {
	return &Equipment{
		SerialNumber:     "EX-001",
		Type:             "EX",
		Status:           EquipmentOperational,
		HoursUsed:        decimal.NewFromFloat(used),
		LastServiceHours: decimal.NewFromFloat(lastService),
	}
}

func TestHoursToService(t *testing.T) {
	e := equipmentWithHours(100, 0)
	assert.True(t, e.HoursToService().Equal(decimal.NewFromFloat(150)))

	// Fresh unit: full cycle remaining.
	e = equipmentWithHours(0, 0)
	assert.True(t, e.HoursToService().Equal(decimal.NewFromFloat(250)))

	// Past the cycle: clamps at zero, never negative.
	e = equipmentWithHours(600, 0)
	assert.True(t, e.HoursToService().Equal(decimal.Zero))

	// Hour-meter reset leaves last_service_hours above hours_used; remaining
	// clamps at the full interval.
	e = equipmentWithHours(10, 200)
	assert.True(t, e.HoursToService().Equal(decimal.NewFromFloat(250)))
}

func TestServiceStatusBoundaries(t *testing.T) {
	// Exactly 250 elapsed: due now, but not yet overdue.
	e := equipmentWithHours(250, 0)
	assert.False(t, e.IsOverdue())
	assert.True(t, e.IsServiceDue())
	assert.Equal(t, ServiceDueSoon, e.ServiceStatus())

	// One more hour tips it over.
	e = equipmentWithHours(251, 0)
	assert.True(t, e.IsOverdue())
	assert.Equal(t, ServiceOverdue, e.ServiceStatus())

	// 225 elapsed = 25 remaining: start of the due-soon window.
	e = equipmentWithHours(225, 0)
	assert.False(t, e.IsOverdue())
	assert.True(t, e.IsServiceDue())
	assert.Equal(t, ServiceDueSoon, e.ServiceStatus())

	// 224 elapsed = 26 remaining: still on track.
	e = equipmentWithHours(224, 0)
	assert.False(t, e.IsServiceDue())
	assert.Equal(t, ServiceOnTrack, e.ServiceStatus())
}

func TestServiceStatusWithServiceHistory(t *testing.T) {
	// Cycle is measured from the last service anchor, not from zero.
	e := equipmentWithHours(700, 500)
	assert.Equal(t, ServiceOnTrack, e.ServiceStatus())
	assert.True(t, e.HoursToService().Equal(decimal.NewFromFloat(50)))

	e = equipmentWithHours(780, 500)
	assert.Equal(t, ServiceOverdue, e.ServiceStatus())
}

func TestEquipmentValidate(t *testing.T) {
	e := equipmentWithHours(0, 0)
	assert.NoError(t, e.Validate())

	e = equipmentWithHours(0, 0)
	e.SerialNumber = ""
	assert.Error(t, e.Validate())

	e = equipmentWithHours(0, 0)
	e.Type = "XX"
	assert.Error(t, e.Validate())

	e = equipmentWithHours(0, 0)
	e.Status = "Broken"
	assert.Error(t, e.Validate())

	e = equipmentWithHours(0, 0)
	e.HoursUsed = decimal.NewFromFloat(-1)
	assert.Error(t, e.Validate())
}

func TestTypeName(t *testing.T) {
	e := equipmentWithHours(0, 0)
	assert.Equal(t, "Excavator", e.TypeName())

	e.Type = "HL"
	assert.Equal(t, "Haul Truck", e.TypeName())
}
