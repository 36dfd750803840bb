package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithinWindow(t *testing.T) {
	lusaka, err := time.LoadLocation("Africa/Lusaka")
	if err != nil {
		lusaka = time.UTC
	}

	at := func(hour, min, sec int) time.Time {
		return time.Date(2026, 8, 31, hour, min, sec, 0, lusaka)
	}

	// Shift-start window is [07:00, 07:05).
	assert.False(t, withinWindow(at(6, 59, 59), 7, 0, 5))
	assert.True(t, withinWindow(at(7, 0, 0), 7, 0, 5))
	assert.True(t, withinWindow(at(7, 4, 59), 7, 0, 5))
	assert.False(t, withinWindow(at(7, 5, 0), 7, 0, 5))
	assert.False(t, withinWindow(at(19, 2, 0), 7, 0, 5))

	// Shift-end window is [19:00, 19:05).
	assert.True(t, withinWindow(at(19, 0, 0), 19, 0, 5))
	assert.True(t, withinWindow(at(19, 4, 30), 19, 0, 5))
	assert.False(t, withinWindow(at(19, 5, 0), 19, 0, 5))
	assert.False(t, withinWindow(at(7, 2, 0), 19, 0, 5))
}

func TestShiftAlertsGateOutsideWindow(t *testing.T) {
	// Outside the window the jobs return before touching the database; a
	// nil handle here would otherwise panic.
	lusaka, err := time.LoadLocation("Africa/Lusaka")
	if err != nil {
		lusaka = time.UTC
	}
	noon := time.Date(2026, 8, 31, 12, 0, 0, 0, lusaka)

	assert.NotPanics(t, func() { SendShiftStartAlerts(noon) })
	assert.NotPanics(t, func() { SendShiftEndAlerts(noon) })
}
