package handlers

import (
	"ZMMiningBackend/database"
	"ZMMiningBackend/middleware"
	"ZMMiningBackend/models"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
)

// EmployeeResponse carries the compliance evaluations alongside the record.
type EmployeeResponse struct {
	models.Employee
	FullName             string `json:"full_name"`
	MineName             string `json:"mine_name"`
	RoleCategory         string `json:"role_category"`
	NAPSACompliant       bool   `json:"napsa_compliant"`
	SafetyTrainingStatus string `json:"safety_training_status"`
	NeedsSafetyTraining  bool   `json:"needs_safety_training"`
}

func newEmployeeResponse(e models.Employee, mineName string) EmployeeResponse {
	now := localNow()
	return EmployeeResponse{
		Employee:             e,
		FullName:             e.FullName(),
		MineName:             mineName,
		RoleCategory:         e.RoleCategory(),
		NAPSACompliant:       e.IsNAPSACompliant(),
		SafetyTrainingStatus: e.SafetyTrainingStatus(now),
		NeedsSafetyTraining:  e.NeedsSafetyTraining(now),
	}
}

const employeeColumns = `e.id, e.first_name, e.last_name, e.nrc, e.napsa_number, e.role,
	e.mine_id, e.owner_id, e.phone, e.receive_sms, e.date_joined, e.is_active,
	e.last_safety_training, e.photo, e.created_at, e.updated_at`

func scanEmployee(row interface{ Scan(...interface{}) error }) (models.Employee, string, error) {
	var e models.Employee
	var mineName string
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.NRC, &e.NapsaNumber, &e.Role,
		&e.MineID, &e.OwnerID, &e.Phone, &e.ReceiveSMS, &e.DateJoined, &e.IsActive,
		&e.LastSafetyTraining, &e.Photo, &e.CreatedAt, &e.UpdatedAt, &mineName)
	return e, mineName, err
}

func CreateEmployee(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var emp models.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	emp.OwnerID = ownerID
	emp.Normalize()
	if emp.DateJoined.IsZero() {
		emp.DateJoined = localNow()
	}

	if err := emp.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var mineName string
	err := database.DB.QueryRow(
		"SELECT name FROM mines WHERE id = $1 AND owner_id = $2",
		emp.MineID, ownerID,
	).Scan(&mineName)
	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Mine not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	err = database.DB.QueryRow(
		`INSERT INTO employees (first_name, last_name, nrc, napsa_number, role, mine_id, owner_id,
		        phone, receive_sms, date_joined, is_active, last_safety_training, photo)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		emp.FirstName, emp.LastName, emp.NRC, emp.NapsaNumber, emp.Role, emp.MineID, emp.OwnerID,
		emp.Phone, emp.ReceiveSMS, emp.DateJoined, emp.IsActive, emp.LastSafetyTraining, emp.Photo,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		respondWithError(w, http.StatusConflict, "An employee with this NRC or NAPSA number already exists")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error creating employee: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, newEmployeeResponse(emp, mineName))
}

// GetEmployees is the workforce dashboard: the employee list with
// compliance fields, searchable with ?q= (names and NRC) and filterable
// with ?mine_id=, plus the summary counters the register page shows.
func GetEmployees(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := `SELECT ` + employeeColumns + `, m.name
		FROM employees e
		JOIN mines m ON m.id = e.mine_id
		WHERE e.owner_id = $1`
	args := []interface{}{ownerID}

	if q := r.URL.Query().Get("q"); q != "" {
		args = append(args, "%"+q+"%")
		query += ` AND (e.first_name ILIKE $2 OR e.last_name ILIKE $2 OR e.nrc ILIKE $2)`
	}
	if mineID := r.URL.Query().Get("mine_id"); mineID != "" {
		args = append(args, mineID)
		query += ` AND e.mine_id = $` + strconv.Itoa(len(args))
	}
	query += " ORDER BY e.last_name, e.first_name"

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	employees := []EmployeeResponse{}
	active, napsaCompliant, safetyTrained := 0, 0, 0
	for rows.Next() {
		e, mineName, err := scanEmployee(rows)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Error scanning employee data")
			return
		}
		resp := newEmployeeResponse(e, mineName)
		if e.IsActive {
			active++
		}
		if resp.NAPSACompliant {
			napsaCompliant++
		}
		if resp.SafetyTrainingStatus == models.TrainingValid || resp.SafetyTrainingStatus == models.TrainingDueSoon {
			safetyTrained++
		}
		employees = append(employees, resp)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"employees": employees,
		"stats": map[string]int{
			"total":           len(employees),
			"active":          active,
			"napsa_compliant": napsaCompliant,
			"safety_trained":  safetyTrained,
		},
	})
}

func GetEmployee(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	empID := vars["id"]

	row := database.DB.QueryRow(
		`SELECT `+employeeColumns+`, m.name
		 FROM employees e
		 JOIN mines m ON m.id = e.mine_id
		 WHERE e.id = $1 AND e.owner_id = $2`,
		empID, ownerID,
	)
	e, mineName, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Employee not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondWithJSON(w, http.StatusOK, newEmployeeResponse(e, mineName))
}

func UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	empID := vars["id"]

	var emp models.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	emp.OwnerID = ownerID
	emp.Normalize()
	if emp.DateJoined.IsZero() {
		emp.DateJoined = localNow()
	}

	if err := emp.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := database.DB.QueryRow(
		`UPDATE employees
		 SET first_name = $1, last_name = $2, nrc = $3, napsa_number = $4, role = $5,
		     phone = $6, receive_sms = $7, date_joined = $8, is_active = $9,
		     last_safety_training = $10, photo = $11, updated_at = NOW()
		 WHERE id = $12 AND owner_id = $13
		 RETURNING id, mine_id, created_at, updated_at`,
		emp.FirstName, emp.LastName, emp.NRC, emp.NapsaNumber, emp.Role,
		emp.Phone, emp.ReceiveSMS, emp.DateJoined, emp.IsActive,
		emp.LastSafetyTraining, emp.Photo, empID, ownerID,
	).Scan(&emp.ID, &emp.MineID, &emp.CreatedAt, &emp.UpdatedAt)

	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Employee not found")
		return
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		respondWithError(w, http.StatusConflict, "An employee with this NRC or NAPSA number already exists")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error updating employee")
		return
	}

	var mineName string
	database.DB.QueryRow("SELECT name FROM mines WHERE id = $1", emp.MineID).Scan(&mineName)

	respondWithJSON(w, http.StatusOK, newEmployeeResponse(emp, mineName))
}

func DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	empID := vars["id"]

	result, err := database.DB.Exec(
		"DELETE FROM employees WHERE id = $1 AND owner_id = $2",
		empID, ownerID,
	)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error deleting employee")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		respondWithError(w, http.StatusNotFound, "Employee not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Employee deleted successfully"})
}

// GetJobRoles serves the fixed role catalog grouped by category, for the
// employee form dropdown.
func GetJobRoles(w http.ResponseWriter, r *http.Request) {
	grouped := map[string][]string{}
	for _, role := range models.Roles {
		category := models.RoleCategory(role)
		grouped[category] = append(grouped[category], role)
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"roles":      models.Roles,
		"categories": grouped,
	})
}
