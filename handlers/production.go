package handlers

import (
	"ZMMiningBackend/database"
	"ZMMiningBackend/middleware"
	"ZMMiningBackend/models"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ProductionResponse adds the evaluated flags to a record.
type ProductionResponse struct {
	models.ProductionRecord
	MineName       string `json:"mine_name"`
	IsLate         bool   `json:"is_late"`
	DailyTargetMet bool   `json:"daily_target_met"`
}

func newProductionResponse(p models.ProductionRecord, mineName string) ProductionResponse {
	// logged_at comes back from Postgres in server time; the 18:00 cutoff
	// is a mine-site wall-clock rule.
	p.LoggedAt = p.LoggedAt.In(location)
	return ProductionResponse{
		ProductionRecord: p,
		MineName:         mineName,
		IsLate:           p.IsLate(),
		DailyTargetMet:   p.DailyTargetMet(),
	}
}

func CreateProductionRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var record models.ProductionRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	record.OwnerID = ownerID
	if record.Date.IsZero() {
		record.Date = localNow()
	}

	if err := record.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var mineName string
	err := database.DB.QueryRow(
		"SELECT name FROM mines WHERE id = $1 AND owner_id = $2",
		record.MineID, ownerID,
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
		`INSERT INTO production_records (date, quantity, mine_id, owner_id, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, date, logged_at, updated_at`,
		record.Date.Format("2006-01-02"), record.Quantity, record.MineID, record.OwnerID, record.Notes,
	).Scan(&record.ID, &record.Date, &record.LoggedAt, &record.UpdatedAt)

	// One record per mine per day; corrections go through PUT.
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		respondWithError(w, http.StatusConflict, "Production for this mine and date is already logged")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error logging production: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, newProductionResponse(record, mineName))
}

// GetProductionRecords lists records newest first with the month-to-date
// and trailing-30-day summaries. ?mine_id= narrows to one site and
// ?limit= caps the list.
func GetProductionRecords(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := `SELECT p.id, p.date, p.quantity, p.mine_id, p.owner_id, p.notes,
	                 p.logged_at, p.updated_at, m.name
		FROM production_records p
		JOIN mines m ON m.id = p.mine_id
		WHERE p.owner_id = $1`
	args := []interface{}{ownerID}

	if mineID := r.URL.Query().Get("mine_id"); mineID != "" {
		args = append(args, mineID)
		query += " AND p.mine_id = $2"
	}
	query += " ORDER BY p.date DESC, p.id DESC"

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	args = append(args, limit)
	query += " LIMIT $" + strconv.Itoa(len(args))

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	records := []ProductionResponse{}
	for rows.Next() {
		var p models.ProductionRecord
		var mineName string
		err := rows.Scan(&p.ID, &p.Date, &p.Quantity, &p.MineID, &p.OwnerID,
			&p.Notes, &p.LoggedAt, &p.UpdatedAt, &mineName)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Error scanning production data")
			return
		}
		records = append(records, newProductionResponse(p, mineName))
	}

	now := localNow()
	todayTotal, err := database.ProductionTotalForDay(r.Context(), ownerID, now)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error computing totals")
		return
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthTotal, err := database.ProductionTotalSince(r.Context(), ownerID, monthStart)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error computing totals")
		return
	}
	thirtyDayTotal, err := database.ProductionTotalSince(r.Context(), ownerID, now.AddDate(0, 0, -29))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error computing totals")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"stats": map[string]interface{}{
			"today_total":        todayTotal,
			"today_target_met":   todayTotal.GreaterThanOrEqual(models.DailyTarget),
			"month_total":        monthTotal,
			"month_target_pct":   models.PercentOfTarget(monthTotal, models.MonthlyTarget),
			"thirty_day_total":   thirtyDayTotal,
			"thirty_day_average": thirtyDayTotal.Div(decimal.NewFromInt(30)).Round(2),
		},
	})
}

func GetProductionRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	recordID := vars["id"]

	var p models.ProductionRecord
	var mineName string
	err := database.DB.QueryRow(
		`SELECT p.id, p.date, p.quantity, p.mine_id, p.owner_id, p.notes,
		        p.logged_at, p.updated_at, m.name
		 FROM production_records p
		 JOIN mines m ON m.id = p.mine_id
		 WHERE p.id = $1 AND p.owner_id = $2`,
		recordID, ownerID,
	).Scan(&p.ID, &p.Date, &p.Quantity, &p.MineID, &p.OwnerID,
		&p.Notes, &p.LoggedAt, &p.UpdatedAt, &mineName)

	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Production record not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondWithJSON(w, http.StatusOK, newProductionResponse(p, mineName))
}

// UpdateProductionRecord corrects quantity and notes. Date and mine are
// fixed once logged; a wrong-day entry is deleted and re-logged.
func UpdateProductionRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	recordID := vars["id"]

	var update struct {
		Quantity decimal.Decimal `json:"quantity"`
		Notes    string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if update.Quantity.IsNegative() {
		respondWithError(w, http.StatusBadRequest, "quantity cannot be negative")
		return
	}

	var p models.ProductionRecord
	err := database.DB.QueryRow(
		`UPDATE production_records
		 SET quantity = $1, notes = $2, updated_at = NOW()
		 WHERE id = $3 AND owner_id = $4
		 RETURNING id, date, quantity, mine_id, owner_id, notes, logged_at, updated_at`,
		update.Quantity, update.Notes, recordID, ownerID,
	).Scan(&p.ID, &p.Date, &p.Quantity, &p.MineID, &p.OwnerID,
		&p.Notes, &p.LoggedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Production record not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error updating production record")
		return
	}

	var mineName string
	database.DB.QueryRow("SELECT name FROM mines WHERE id = $1", p.MineID).Scan(&mineName)

	respondWithJSON(w, http.StatusOK, newProductionResponse(p, mineName))
}

func DeleteProductionRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	recordID := vars["id"]

	result, err := database.DB.Exec(
		"DELETE FROM production_records WHERE id = $1 AND owner_id = $2",
		recordID, ownerID,
	)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error deleting production record")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		respondWithError(w, http.StatusNotFound, "Production record not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Production record deleted successfully"})
}
