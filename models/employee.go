package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Safety-training display classifications.
const (
	TrainingNone    = "NO TRAINING"
	TrainingExpired = "EXPIRED"
	TrainingDueSoon = "DUE SOON"
	TrainingValid   = "VALID"
)

var (
	nrcPattern   = regexp.MustCompile(`^\d{6}/\d{2}/\d{1}$`)
	phonePattern = regexp.MustCompile(`^\+260\d{9}$`)
	titleCaser   = cases.Title(language.English)
)

// Employee is a ZEMA/NAPSA/Ministry of Mines compliant worker record.
type Employee struct {
	ID                 int        `json:"id" db:"id"`
	FirstName          string     `json:"first_name" db:"first_name"`
	LastName           string     `json:"last_name" db:"last_name"`
	NRC                string     `json:"nrc" db:"nrc"`
	NapsaNumber        *string    `json:"napsa_number,omitempty" db:"napsa_number"`
	Role               string     `json:"role" db:"role"`
	MineID             int        `json:"mine_id" db:"mine_id"`
	OwnerID            string     `json:"owner_id" db:"owner_id"`
	Phone              string     `json:"phone" db:"phone"`
	ReceiveSMS         bool       `json:"receive_sms" db:"receive_sms"`
	DateJoined         time.Time  `json:"date_joined" db:"date_joined"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	LastSafetyTraining *time.Time `json:"last_safety_training,omitempty" db:"last_safety_training"`
	Photo              *string    `json:"photo,omitempty" db:"photo"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// Normalize title-cases the names. Applied on every write.
func (e *Employee) Normalize() {
	e.FirstName = titleCaser.String(strings.TrimSpace(e.FirstName))
	e.LastName = titleCaser.String(strings.TrimSpace(e.LastName))
}

func (e *Employee) Validate() error {
	if e.FirstName == "" || e.LastName == "" {
		return errors.New("first and last name are required")
	}
	if !nrcPattern.MatchString(e.NRC) {
		return errors.New("NRC format: 123456/78/9")
	}
	if e.NapsaNumber != nil && len(*e.NapsaNumber) < 6 {
		return errors.New("NAPSA number too short")
	}
	if !IsValidRole(e.Role) {
		return errors.New("unknown job role")
	}
	if e.Phone != "" && !phonePattern.MatchString(e.Phone) {
		return errors.New("phone format: +260971234567")
	}
	return nil
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// IsNAPSACompliant is true when a NAPSA registration number is on file.
func (e *Employee) IsNAPSACompliant() bool {
	return e.NapsaNumber != nil && *e.NapsaNumber != ""
}

// SafetyTrainingStatus classifies the annual ZEMA training by how long ago
// it happened: >365 days expired, the last 30 days of the year due-soon.
func (e *Employee) SafetyTrainingStatus(now time.Time) string {
	if e.LastSafetyTraining == nil {
		return TrainingNone
	}
	days := daysBetween(dateOf(*e.LastSafetyTraining), dateOf(now))
	switch {
	case days > 365:
		return TrainingExpired
	case days > 335:
		return TrainingDueSoon
	default:
		return TrainingValid
	}
}

// NeedsSafetyTraining is true when no training is on file or the 365-day
// anniversary falls within the next 30 days. This is a 30-day lookahead on
// the due date, computed independently of SafetyTrainingStatus; the two
// rules are deliberately not unified.
func (e *Employee) NeedsSafetyTraining(now time.Time) bool {
	if e.LastSafetyTraining == nil {
		return true
	}
	due := dateOf(*e.LastSafetyTraining).AddDate(0, 0, 365)
	return !due.After(dateOf(now).AddDate(0, 0, 30))
}

// RoleCategory groups the role for display filtering.
func (e *Employee) RoleCategory() string {
	return RoleCategory(e.Role)
}
