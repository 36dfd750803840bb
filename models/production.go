package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Production targets in tons.
var (
	DailyTarget            = decimal.NewFromFloat(250.00)
	MonthlyTarget          = decimal.NewFromFloat(2500.00)
	AnnualTarget           = decimal.NewFromFloat(30000.00)
	LowProductionThreshold = decimal.NewFromFloat(200.00)
)

// lateCutoffHour: records logged after 18:00 local count as late.
const lateCutoffHour = 18

// ProductionRecord is one mine's tonnage for one calendar day.
type ProductionRecord struct {
	ID        int             `json:"id" db:"id"`
	Date      time.Time       `json:"date" db:"date"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
	MineID    int             `json:"mine_id" db:"mine_id"`
	OwnerID   string          `json:"owner_id" db:"owner_id"`
	Notes     string          `json:"notes" db:"notes"`
	LoggedAt  time.Time       `json:"logged_at" db:"logged_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

func (p *ProductionRecord) Validate() error {
	if p.Date.IsZero() {
		return errors.New("production date is required")
	}
	if p.Quantity.IsNegative() {
		return errors.New("quantity cannot be negative")
	}
	return nil
}

// IsLate flags records entered after the 18:00 cutoff, or backdated/
// future-dated relative to the day they were logged.
func (p *ProductionRecord) IsLate() bool {
	logged := p.LoggedAt
	d := p.Date
	if d.Year() != logged.Year() || d.Month() != logged.Month() || d.Day() != logged.Day() {
		return true
	}
	cutoff := time.Date(logged.Year(), logged.Month(), logged.Day(), lateCutoffHour, 0, 0, 0, logged.Location())
	return logged.After(cutoff)
}

// DailyTargetMet reports whether this single day's quantity hit 250.00 t.
func (p *ProductionRecord) DailyTargetMet() bool {
	return p.Quantity.GreaterThanOrEqual(DailyTarget)
}

// PercentOfTarget returns total/target*100 rounded to one decimal, or zero
// when the target is zero.
func PercentOfTarget(total, target decimal.Decimal) decimal.Decimal {
	if target.IsZero() {
		return decimal.Zero
	}
	return total.Div(target).Mul(decimal.NewFromInt(100)).Round(1)
}

// Utilization is operational/total*100 rounded to one decimal, zero when
// there is no equipment.
func Utilization(operational, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(operational)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	f, _ := pct.Float64()
	return f
}
