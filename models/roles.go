package models

import "strings"

// Role category labels used for display grouping and filtering.
const (
	CategoryManagement = "Management"
	CategorySupervisor = "Supervisors"
	CategoryOperator   = "Operators"
	CategoryTechnician = "Technicians"
	CategorySafety     = "Safety & Environment"
	CategorySupport    = "Support"
)

// Roles is the fixed catalog of Zambian mining job roles.
var Roles = []string{
	// Management
	"General Manager",
	"Mine Manager",
	"Operations Manager",
	"HR Manager",

	// Supervisors
	"Shift Supervisor",
	"Section Supervisor",
	"Safety Supervisor",

	// Operators
	"Drill Operator",
	"Blasting Operator",
	"Loader Operator",
	"Haul Truck Driver",
	"Excavator Operator",

	// Technicians
	"Mechanical Technician",
	"Electrical Technician",
	"Instrumentation Technician",
	"Auto Electrician",

	// Safety & Environment
	"Safety Officer",
	"Environmental Officer",
	"First Aider",

	// Support
	"Storeman",
	"Security Officer",
	"Cleaner",
	"Cook",
}

// roleCategories maps every catalog role to its category once, so lookups
// for known roles don't re-run the string matching below.
var roleCategories = make(map[string]string, len(Roles))

func init() {
	for _, role := range Roles {
		roleCategories[role] = classifyRole(role)
	}
}

func IsValidRole(role string) bool {
	_, ok := roleCategories[role]
	return ok
}

// RoleCategory returns the display category for a role. Roles outside the
// catalog fall through the same priority-ordered matching used to build it.
func RoleCategory(role string) string {
	if category, ok := roleCategories[role]; ok {
		return category
	}
	return classifyRole(role)
}

// classifyRole groups a role name by a priority-ordered cascade: exact
// management titles first, then substring checks. First match wins.
func classifyRole(role string) string {
	switch role {
	case "General Manager", "Mine Manager", "Operations Manager", "HR Manager":
		return CategoryManagement
	}
	switch {
	case strings.Contains(role, "Supervisor"):
		return CategorySupervisor
	case strings.Contains(role, "Operator") || strings.Contains(role, "Driver"):
		return CategoryOperator
	case strings.Contains(role, "Technician") || strings.Contains(role, "Electrician"):
		return CategoryTechnician
	case strings.Contains(role, "Safety") || strings.Contains(role, "Environmental") || strings.Contains(role, "First Aider"):
		return CategorySafety
	}
	return CategorySupport
}
