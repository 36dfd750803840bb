package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type EquipmentStatus string

const (
	EquipmentOperational EquipmentStatus = "Operational"
	EquipmentMaintenance EquipmentStatus = "Maintenance"
	EquipmentDown        EquipmentStatus = "Down"
)

// Service-state labels, in priority order.
const (
	ServiceOverdue = "OVERDUE"
	ServiceDueSoon = "DUE SOON"
	ServiceOnTrack = "ON TRACK"
)

// EquipmentTypes maps the two-letter type codes to display names.
var EquipmentTypes = map[string]string{
	"EX": "Excavator",
	"HL": "Haul Truck",
	"DR": "Drill Rig",
	"LD": "Loader",
	"BL": "Bulldozer",
	"GR": "Grader",
	"CR": "Crane",
	"OT": "Other",
}

// ZABS 250-hour service cycle: due-soon kicks in within the last 10%.
var (
	serviceInterval = decimal.NewFromFloat(250.0)
	dueSoonWindow   = decimal.NewFromFloat(25.0)
)

type Equipment struct {
	ID               int             `json:"id" db:"id"`
	SerialNumber     string          `json:"serial_number" db:"serial_number"`
	Type             string          `json:"type" db:"type"`
	Status           EquipmentStatus `json:"status" db:"status"`
	MineID           int             `json:"mine_id" db:"mine_id"`
	OwnerID          string          `json:"owner_id" db:"owner_id"`
	LastService      *time.Time      `json:"last_service,omitempty" db:"last_service"`
	LastServiceHours decimal.Decimal `json:"last_service_hours" db:"last_service_hours"`
	HoursUsed        decimal.Decimal `json:"hours_used" db:"hours_used"`
	PurchaseDate     *time.Time      `json:"purchase_date,omitempty" db:"purchase_date"`
	WarrantyExpiry   *time.Time      `json:"warranty_expiry,omitempty" db:"warranty_expiry"`
	FuelType         string          `json:"fuel_type" db:"fuel_type"`
	Description      string          `json:"description" db:"description"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

func (e *Equipment) Validate() error {
	if e.SerialNumber == "" {
		return errors.New("serial number is required")
	}
	if _, ok := EquipmentTypes[e.Type]; !ok {
		return errors.New("invalid equipment type code")
	}
	switch e.Status {
	case EquipmentOperational, EquipmentMaintenance, EquipmentDown:
	default:
		return errors.New("status must be 'Operational', 'Maintenance' or 'Down'")
	}
	if e.HoursUsed.IsNegative() || e.LastServiceHours.IsNegative() {
		return errors.New("operating hours cannot be negative")
	}
	return nil
}

func (e *Equipment) TypeName() string {
	if name, ok := EquipmentTypes[e.Type]; ok {
		return name
	}
	return e.Type
}

// HoursToService is the remaining hours in the 250-hour cycle, clamped at
// zero. A negative elapsed value (service logged after an hour-meter reset)
// clamps at the interval ceiling rather than producing artifacts.
func (e *Equipment) HoursToService() decimal.Decimal {
	remaining := serviceInterval.Sub(e.HoursUsed.Sub(e.LastServiceHours))
	if remaining.IsNegative() {
		return decimal.Zero
	}
	if remaining.GreaterThan(serviceInterval) {
		return serviceInterval
	}
	return remaining
}

func (e *Equipment) IsServiceDue() bool {
	return e.HoursToService().LessThanOrEqual(dueSoonWindow)
}

func (e *Equipment) IsOverdue() bool {
	return e.HoursUsed.Sub(e.LastServiceHours).GreaterThan(serviceInterval)
}

// ServiceStatus resolves the maintenance state; overdue wins over due-soon.
func (e *Equipment) ServiceStatus() string {
	if e.IsOverdue() {
		return ServiceOverdue
	}
	if e.IsServiceDue() {
		return ServiceDueSoon
	}
	return ServiceOnTrack
}
