// Package tasks runs the scheduled SMS jobs: shift alerts, the daily
// low-production check and the equipment service check. Jobs are gated on
// fixed wall-clock windows and deduplicated through notification_log, so a
// job re-run inside its window is a no-op.
package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"ZMMiningBackend/database"
	"ZMMiningBackend/models"
	"ZMMiningBackend/sms"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Alert windows (local time). Jobs fire every minute of their window and
// self-gate, so a missed first minute still sends.
const alertWindowMinutes = 5

// Start registers the jobs and starts the scheduler in the given location.
func Start(loc *time.Location) *cron.Cron {
	c := cron.New(cron.WithLocation(loc))

	c.AddFunc("0-4 7 * * *", func() { SendShiftStartAlerts(time.Now().In(loc)) })
	c.AddFunc("0-4 19 * * *", func() { SendShiftEndAlerts(time.Now().In(loc)) })
	c.AddFunc("0 20 * * *", func() { CheckDailyProduction(time.Now().In(loc)) })
	c.AddFunc("0 8 * * *", func() { CheckEquipmentService(time.Now().In(loc)) })

	c.Start()
	log.Printf("Notification scheduler started (%s)", loc)
	return c
}

// withinWindow reports whether now falls in [start, start+span) for the
// given wall-clock start on now's own day.
func withinWindow(now time.Time, hour, minute, spanMinutes int) bool {
	start := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	end := start.Add(time.Duration(spanMinutes) * time.Minute)
	return !now.Before(start) && now.Before(end)
}

type smsRecipient struct {
	EmployeeID int
	FirstName  string
	Phone      string
	MineName   string
}

// optedInRecipients lists employees who accept SMS and have a valid +260
// number, optionally restricted to one mine.
func optedInRecipients(ctx context.Context, mineID int) ([]smsRecipient, error) {
	query := `
		SELECT e.id, e.first_name, e.phone, m.name
		FROM employees e
		JOIN mines m ON m.id = e.mine_id
		WHERE e.receive_sms = true AND e.is_active = true AND e.phone LIKE '+260%'`
	args := []interface{}{}
	if mineID > 0 {
		args = append(args, mineID)
		query += fmt.Sprintf(" AND e.mine_id = $%d", len(args))
	}

	rows, err := database.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recipient query failed: %w", err)
	}
	defer rows.Close()

	recipients := []smsRecipient{}
	for rows.Next() {
		var r smsRecipient
		if err := rows.Scan(&r.EmployeeID, &r.FirstName, &r.Phone, &r.MineName); err != nil {
			return nil, fmt.Errorf("recipient scan failed: %w", err)
		}
		recipients = append(recipients, r)
	}

	return recipients, rows.Err()
}

// SendShiftStartAlerts texts every opted-in employee at the start of the
// 07:00 shift. Outside the 07:00-07:05 window it does nothing.
func SendShiftStartAlerts(now time.Time) {
	if !withinWindow(now, 7, 0, alertWindowMinutes) {
		return
	}

	ctx := context.Background()
	recipients, err := optedInRecipients(ctx, 0)
	if err != nil {
		log.Printf("shift-start alert: %v", err)
		return
	}

	for _, r := range recipients {
		claimed, err := database.MarkNotified(ctx, r.EmployeeID, database.AlertShiftStart, now)
		if err != nil {
			log.Printf("shift-start alert: %v", err)
			continue
		}
		if !claimed {
			continue
		}
		msg := fmt.Sprintf("ZM MINING: Good morning %s! Shift starts at 07:00. Report to %s.", r.FirstName, r.MineName)
		sms.Send(r.Phone, msg)
	}
}

// SendShiftEndAlerts texts every opted-in employee at the end of the 19:00
// shift. Outside the 19:00-19:05 window it does nothing.
func SendShiftEndAlerts(now time.Time) {
	if !withinWindow(now, 19, 0, alertWindowMinutes) {
		return
	}

	ctx := context.Background()
	recipients, err := optedInRecipients(ctx, 0)
	if err != nil {
		log.Printf("shift-end alert: %v", err)
		return
	}

	for _, r := range recipients {
		claimed, err := database.MarkNotified(ctx, r.EmployeeID, database.AlertShiftEnd, now)
		if err != nil {
			log.Printf("shift-end alert: %v", err)
			continue
		}
		if !claimed {
			continue
		}
		msg := fmt.Sprintf("ZM MINING: Shift ending at 19:00. Safe journey home from %s!", r.MineName)
		sms.Send(r.Phone, msg)
	}
}

// CheckDailyProduction alerts a mine's management when today's logged
// tonnage is below the 200 t threshold.
func CheckDailyProduction(now time.Time) {
	ctx := context.Background()

	rows, err := database.DB.QueryContext(ctx, `
		SELECT m.id, m.name, COALESCE(SUM(p.quantity), 0)
		FROM mines m
		LEFT JOIN production_records p ON p.mine_id = m.id AND p.date = $1
		WHERE m.status = 'Active'
		GROUP BY m.id, m.name
	`, now.Format("2006-01-02"))
	if err != nil {
		log.Printf("low-production check: %v", err)
		return
	}
	defer rows.Close()

	type mineTotal struct {
		id    int
		name  string
		total decimal.Decimal
	}
	lowMines := []mineTotal{}
	for rows.Next() {
		var mt mineTotal
		if err := rows.Scan(&mt.id, &mt.name, &mt.total); err != nil {
			log.Printf("low-production check: %v", err)
			return
		}
		if mt.total.LessThan(models.LowProductionThreshold) {
			lowMines = append(lowMines, mt)
		}
	}
	if err := rows.Err(); err != nil {
		log.Printf("low-production check: %v", err)
		return
	}

	for _, mine := range lowMines {
		managers, err := managementRecipients(ctx, mine.id)
		if err != nil {
			log.Printf("low-production check: %v", err)
			continue
		}
		for _, mgr := range managers {
			claimed, err := database.MarkNotified(ctx, mgr.EmployeeID, database.AlertLowProduction, now)
			if err != nil {
				log.Printf("low-production check: %v", err)
				continue
			}
			if !claimed {
				continue
			}
			msg := fmt.Sprintf("ALERT: Low production today at %s! Only %s tons logged. Target: %s t.",
				mine.name, mine.total.StringFixed(2), models.DailyTarget.StringFixed(0))
			sms.Send(mgr.Phone, msg)
		}
	}
}

// managementRecipients filters a mine's opted-in employees down to the
// management role category.
func managementRecipients(ctx context.Context, mineID int) ([]smsRecipient, error) {
	rows, err := database.DB.QueryContext(ctx, `
		SELECT e.id, e.first_name, e.phone, e.role, m.name
		FROM employees e
		JOIN mines m ON m.id = e.mine_id
		WHERE e.mine_id = $1 AND e.receive_sms = true AND e.is_active = true AND e.phone LIKE '+260%'
	`, mineID)
	if err != nil {
		return nil, fmt.Errorf("management recipient query failed: %w", err)
	}
	defer rows.Close()

	recipients := []smsRecipient{}
	for rows.Next() {
		var r smsRecipient
		var role string
		if err := rows.Scan(&r.EmployeeID, &r.FirstName, &r.Phone, &role, &r.MineName); err != nil {
			return nil, fmt.Errorf("management recipient scan failed: %w", err)
		}
		if models.RoleCategory(role) == models.CategoryManagement {
			recipients = append(recipients, r)
		}
	}

	return recipients, rows.Err()
}

// CheckEquipmentService texts one contact at each mine for every unit past
// the 250-hour cycle.
func CheckEquipmentService(now time.Time) {
	ctx := context.Background()

	rows, err := database.DB.QueryContext(ctx, `
		SELECT e.id, e.serial_number, e.type, e.hours_used, e.mine_id, m.name
		FROM equipment e
		JOIN mines m ON m.id = e.mine_id
		WHERE e.hours_used - e.last_service_hours >= 250
	`)
	if err != nil {
		log.Printf("service check: %v", err)
		return
	}
	defer rows.Close()

	type dueUnit struct {
		id       int
		serial   string
		typeCode string
		hours    decimal.Decimal
		mineID   int
		mineName string
	}
	due := []dueUnit{}
	for rows.Next() {
		var u dueUnit
		if err := rows.Scan(&u.id, &u.serial, &u.typeCode, &u.hours, &u.mineID, &u.mineName); err != nil {
			log.Printf("service check: %v", err)
			return
		}
		due = append(due, u)
	}
	if err := rows.Err(); err != nil {
		log.Printf("service check: %v", err)
		return
	}

	for _, u := range due {
		contacts, err := optedInRecipients(ctx, u.mineID)
		if err != nil {
			log.Printf("service check: %v", err)
			continue
		}
		if len(contacts) == 0 {
			continue
		}
		contact := contacts[0]
		claimed, err := database.MarkNotified(ctx, contact.EmployeeID, database.AlertServiceDue, now)
		if err != nil {
			log.Printf("service check: %v", err)
			continue
		}
		if !claimed {
			continue
		}
		typeName := u.typeCode
		if name, ok := models.EquipmentTypes[u.typeCode]; ok {
			typeName = name
		}
		msg := fmt.Sprintf("SERVICE DUE: %s %s at %s has %s hrs. Schedule maintenance!",
			typeName, u.serial, u.mineName, u.hours.StringFixed(1))
		sms.Send(contact.Phone, msg)
	}
}
