package handlers

import (
	"ZMMiningBackend/database"
	"ZMMiningBackend/middleware"
	"ZMMiningBackend/models"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// MineResponse augments a mine with the derived license state and the
// headcounts the dashboard list shows per site.
type MineResponse struct {
	models.Mine
	LicenseExpired  bool `json:"license_expired"`
	DaysUntilExpiry *int `json:"days_until_expiry,omitempty"`
	EquipmentCount  int  `json:"equipment_count"`
	EmployeeCount   int  `json:"employee_count"`
}

func newMineResponse(m models.Mine, equipmentCount, employeeCount int) MineResponse {
	now := localNow()
	return MineResponse{
		Mine:            m,
		LicenseExpired:  m.IsLicenseExpired(now),
		DaysUntilExpiry: m.DaysUntilExpiry(now),
		EquipmentCount:  equipmentCount,
		EmployeeCount:   employeeCount,
	}
}

func CreateMine(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var mine models.Mine
	if err := json.NewDecoder(r.Body).Decode(&mine); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if mine.Status == "" {
		mine.Status = models.MineActive
	}
	mine.OwnerID = ownerID

	if err := mine.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := database.DB.QueryRow(
		`INSERT INTO mines (name, location, status, owner_id, latitude, longitude, license_doc, license_expiry)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		mine.Name, mine.Location, mine.Status, mine.OwnerID,
		mine.Latitude, mine.Longitude, mine.LicenseDoc, mine.LicenseExpiry,
	).Scan(&mine.ID, &mine.CreatedAt, &mine.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		respondWithError(w, http.StatusConflict, "A mine with this name already exists")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error creating mine: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, newMineResponse(mine, 0, 0))
}

func GetMines(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rows, err := database.DB.Query(
		`SELECT m.id, m.name, m.location, m.status, m.owner_id, m.latitude, m.longitude,
		        m.license_doc, m.license_expiry, m.created_at, m.updated_at,
		        (SELECT COUNT(*) FROM equipment e WHERE e.mine_id = m.id),
		        (SELECT COUNT(*) FROM employees emp WHERE emp.mine_id = m.id)
		 FROM mines m WHERE m.owner_id = $1 ORDER BY m.name`,
		ownerID,
	)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	mines := []MineResponse{}
	for rows.Next() {
		var m models.Mine
		var equipmentCount, employeeCount int
		err := rows.Scan(&m.ID, &m.Name, &m.Location, &m.Status, &m.OwnerID,
			&m.Latitude, &m.Longitude, &m.LicenseDoc, &m.LicenseExpiry,
			&m.CreatedAt, &m.UpdatedAt, &equipmentCount, &employeeCount)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Error scanning mine data")
			return
		}
		mines = append(mines, newMineResponse(m, equipmentCount, employeeCount))
	}

	respondWithJSON(w, http.StatusOK, mines)
}

// GetMine returns one mine with its recent production picture: today's
// total, the last seven days as a zero-filled series, and the 7-day average.
func GetMine(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	mineID := vars["id"]

	var m models.Mine
	var equipmentCount, employeeCount int
	err := database.DB.QueryRow(
		`SELECT m.id, m.name, m.location, m.status, m.owner_id, m.latitude, m.longitude,
		        m.license_doc, m.license_expiry, m.created_at, m.updated_at,
		        (SELECT COUNT(*) FROM equipment e WHERE e.mine_id = m.id),
		        (SELECT COUNT(*) FROM employees emp WHERE emp.mine_id = m.id)
		 FROM mines m WHERE m.id = $1 AND m.owner_id = $2`,
		mineID, ownerID,
	).Scan(&m.ID, &m.Name, &m.Location, &m.Status, &m.OwnerID,
		&m.Latitude, &m.Longitude, &m.LicenseDoc, &m.LicenseExpiry,
		&m.CreatedAt, &m.UpdatedAt, &equipmentCount, &employeeCount)

	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Mine not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	today := localNow()
	todayTotal, err := database.MineProductionTotalForDay(r.Context(), m.ID, today)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error computing production")
		return
	}

	start := today.AddDate(0, 0, -6)
	series, err := database.DailyProductionSeries(r.Context(), m.ID, start, 7)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error computing production")
		return
	}

	weekTotal := decimal.Zero
	seriesOut := make([]map[string]interface{}, 0, len(series))
	for _, day := range series {
		weekTotal = weekTotal.Add(day.Total)
		seriesOut = append(seriesOut, map[string]interface{}{
			"date":  day.Date.Format("2006-01-02"),
			"total": day.Total,
		})
	}
	weekAverage := weekTotal.Div(decimal.NewFromInt(7)).Round(2)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"mine":             newMineResponse(m, equipmentCount, employeeCount),
		"today_production": todayTotal,
		"daily_target_met": todayTotal.GreaterThanOrEqual(models.DailyTarget),
		"week_series":      seriesOut,
		"week_average":     weekAverage,
	})
}

func UpdateMine(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	mineID := vars["id"]

	var mine models.Mine
	if err := json.NewDecoder(r.Body).Decode(&mine); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if mine.Status == "" {
		mine.Status = models.MineActive
	}
	mine.OwnerID = ownerID

	if err := mine.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := database.DB.QueryRow(
		`UPDATE mines
		 SET name = $1, location = $2, status = $3, latitude = $4, longitude = $5,
		     license_doc = $6, license_expiry = $7, updated_at = NOW()
		 WHERE id = $8 AND owner_id = $9
		 RETURNING id, created_at, updated_at`,
		mine.Name, mine.Location, mine.Status, mine.Latitude, mine.Longitude,
		mine.LicenseDoc, mine.LicenseExpiry, mineID, ownerID,
	).Scan(&mine.ID, &mine.CreatedAt, &mine.UpdatedAt)

	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Mine not found")
		return
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		respondWithError(w, http.StatusConflict, "A mine with this name already exists")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error updating mine")
		return
	}

	var equipmentCount int
	database.DB.QueryRow("SELECT COUNT(*) FROM equipment WHERE mine_id = $1", mine.ID).Scan(&equipmentCount)
	employeeCount, _ := database.EmployeeCountForMine(r.Context(), mine.ID)
	respondWithJSON(w, http.StatusOK, newMineResponse(mine, equipmentCount, employeeCount))
}

// DeleteMine removes a mine; equipment, employees and production records
// under it cascade away at the database level.
func DeleteMine(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	mineID := vars["id"]

	result, err := database.DB.Exec(
		"DELETE FROM mines WHERE id = $1 AND owner_id = $2",
		mineID, ownerID,
	)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error deleting mine")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		respondWithError(w, http.StatusNotFound, "Mine not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Mine deleted successfully"})
}
