package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Alert types recorded in notification_log.
const (
	AlertShiftStart    = "shift_start"
	AlertShiftEnd      = "shift_end"
	AlertLowProduction = "low_production"
	AlertServiceDue    = "service_due"
)

// MarkNotified claims the (employee, alert, day) slot. It returns true only
// for the first caller on a given day; the scheduled jobs send an SMS only
// when the claim succeeds, so overlapping job runs cannot double-send.
func MarkNotified(ctx context.Context, employeeID int, alertType string, day time.Time) (bool, error) {
	if DB == nil {
		return false, errors.New("database not initialized")
	}

	result, err := DB.ExecContext(ctx, `
		INSERT INTO notification_log (employee_id, alert_type, date)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, alert_type, date) DO NOTHING
	`, employeeID, alertType, day.Format("2006-01-02"))
	if err != nil {
		return false, fmt.Errorf("notification log insert failed: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return inserted > 0, nil
}
