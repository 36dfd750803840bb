package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validEmployee() *Employee {
	return &Employee{
		FirstName: "Mwamba",
		LastName:  "Banda",
		NRC:       "123456/78/9",
		Role:      "Drill Operator",
		MineID:    1,
		Phone:     "+260971234567",
		IsActive:  true,
	}
}

func trainingDaysAgo(now time.Time, days int) *time.Time {
	t := now.AddDate(0, 0, -days)
	return &t
}

func TestEmployeeValidate(t *testing.T) {
	assert.NoError(t, validEmployee().Validate())

	e := validEmployee()
	e.FirstName = ""
	assert.Error(t, e.Validate())

	e = validEmployee()
	e.NRC = "12345/78/9"
	assert.Error(t, e.Validate())

	e = validEmployee()
	e.NRC = "123456/78/99"
	assert.Error(t, e.Validate())

	e = validEmployee()
	e.Phone = "0971234567"
	assert.Error(t, e.Validate())

	// Phone is optional.
	e = validEmployee()
	e.Phone = ""
	assert.NoError(t, e.Validate())

	e = validEmployee()
	short := "12345"
	e.NapsaNumber = &short
	assert.Error(t, e.Validate())

	e = validEmployee()
	e.Role = "Astronaut"
	assert.Error(t, e.Validate())
}

func TestNormalize(t *testing.T) {
	e := validEmployee()
	e.FirstName = "  mwamba "
	e.LastName = "BANDA"
	e.Normalize()
	assert.Equal(t, "Mwamba", e.FirstName)
	assert.Equal(t, "Banda", e.LastName)
	assert.Equal(t, "Mwamba Banda", e.FullName())
}

func TestNAPSACompliance(t *testing.T) {
	e := validEmployee()
	assert.False(t, e.IsNAPSACompliant())

	number := "1234567890"
	e.NapsaNumber = &number
	assert.True(t, e.IsNAPSACompliant())

	empty := ""
	e.NapsaNumber = &empty
	assert.False(t, e.IsNAPSACompliant())
}

func TestSafetyTrainingStatus(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	e := validEmployee()
	assert.Equal(t, TrainingNone, e.SafetyTrainingStatus(now))

	e.LastSafetyTraining = trainingDaysAgo(now, 100)
	assert.Equal(t, TrainingValid, e.SafetyTrainingStatus(now))

	// 335 days is the last valid day; 336 enters the due-soon window.
	e.LastSafetyTraining = trainingDaysAgo(now, 335)
	assert.Equal(t, TrainingValid, e.SafetyTrainingStatus(now))

	e.LastSafetyTraining = trainingDaysAgo(now, 336)
	assert.Equal(t, TrainingDueSoon, e.SafetyTrainingStatus(now))

	// 365 days is still due-soon; expiry starts at 366.
	e.LastSafetyTraining = trainingDaysAgo(now, 365)
	assert.Equal(t, TrainingDueSoon, e.SafetyTrainingStatus(now))

	e.LastSafetyTraining = trainingDaysAgo(now, 366)
	assert.Equal(t, TrainingExpired, e.SafetyTrainingStatus(now))
}

func TestNeedsSafetyTraining(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	e := validEmployee()
	assert.True(t, e.NeedsSafetyTraining(now))

	// Anniversary more than 30 days out.
	e.LastSafetyTraining = trainingDaysAgo(now, 300)
	assert.False(t, e.NeedsSafetyTraining(now))

	// Anniversary exactly 30 days out: flagged.
	e.LastSafetyTraining = trainingDaysAgo(now, 335)
	assert.True(t, e.NeedsSafetyTraining(now))

	// Anniversary 31 days out: not yet.
	e.LastSafetyTraining = trainingDaysAgo(now, 334)
	assert.False(t, e.NeedsSafetyTraining(now))

	// Long expired training still needs renewal.
	e.LastSafetyTraining = trainingDaysAgo(now, 400)
	assert.True(t, e.NeedsSafetyTraining(now))
}

func TestSafetyTrainingStatusAcrossDSTTransition(t *testing.T) {
	// A spring-forward transition between training and now must not shave
	// a day off the count and mask the due-soon boundary.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, ny)
	e := validEmployee()

	// 336 days earlier, across the March 2026 transition: due-soon.
	e.LastSafetyTraining = trainingDaysAgo(now, 336)
	assert.Equal(t, TrainingDueSoon, e.SafetyTrainingStatus(now))

	e.LastSafetyTraining = trainingDaysAgo(now, 366)
	assert.Equal(t, TrainingExpired, e.SafetyTrainingStatus(now))
}

func TestRoleCategories(t *testing.T) {
	assert.Equal(t, CategoryManagement, RoleCategory("Mine Manager"))
	assert.Equal(t, CategorySupervisor, RoleCategory("Shift Supervisor"))
	// "Safety Supervisor" matches the supervisor rule before the safety one.
	assert.Equal(t, CategorySupervisor, RoleCategory("Safety Supervisor"))
	assert.Equal(t, CategoryOperator, RoleCategory("Drill Operator"))
	assert.Equal(t, CategoryOperator, RoleCategory("Haul Truck Driver"))
	assert.Equal(t, CategoryTechnician, RoleCategory("Auto Electrician"))
	assert.Equal(t, CategorySafety, RoleCategory("Safety Officer"))
	assert.Equal(t, CategorySafety, RoleCategory("First Aider"))
	assert.Equal(t, CategorySupport, RoleCategory("Cook"))

	// Unknown roles fall through the same cascade.
	assert.Equal(t, CategoryOperator, RoleCategory("Crane Operator"))
	assert.Equal(t, CategorySupport, RoleCategory("Astronaut"))
	assert.False(t, IsValidRole("Crane Operator"))
	assert.True(t, IsValidRole("Drill Operator"))
}
