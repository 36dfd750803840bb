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

// EquipmentResponse adds the derived service-cycle fields to a unit.
type EquipmentResponse struct {
	models.Equipment
	TypeName       string          `json:"type_name"`
	HoursToService decimal.Decimal `json:"hours_to_service"`
	ServiceDue     bool            `json:"service_due"`
	ServiceStatus  string          `json:"service_status"`
}

func newEquipmentResponse(e models.Equipment) EquipmentResponse {
	return EquipmentResponse{
		Equipment:      e,
		TypeName:       e.TypeName(),
		HoursToService: e.HoursToService(),
		ServiceDue:     e.IsServiceDue(),
		ServiceStatus:  e.ServiceStatus(),
	}
}

const equipmentColumns = `id, serial_number, type, status, mine_id, owner_id,
	last_service, last_service_hours, hours_used, purchase_date, warranty_expiry,
	fuel_type, description, created_at, updated_at`

func scanEquipment(row interface{ Scan(...interface{}) error }) (models.Equipment, error) {
	var e models.Equipment
	err := row.Scan(&e.ID, &e.SerialNumber, &e.Type, &e.Status, &e.MineID, &e.OwnerID,
		&e.LastService, &e.LastServiceHours, &e.HoursUsed, &e.PurchaseDate, &e.WarrantyExpiry,
		&e.FuelType, &e.Description, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func CreateEquipment(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var equip models.Equipment
	if err := json.NewDecoder(r.Body).Decode(&equip); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if equip.Status == "" {
		equip.Status = models.EquipmentOperational
	}
	if equip.FuelType == "" {
		equip.FuelType = "Diesel"
	}
	equip.OwnerID = ownerID

	if err := equip.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The target mine must belong to the caller.
	var mineExists bool
	err := database.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM mines WHERE id = $1 AND owner_id = $2)",
		equip.MineID, ownerID,
	).Scan(&mineExists)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !mineExists {
		respondWithError(w, http.StatusNotFound, "Mine not found")
		return
	}

	err = database.DB.QueryRow(
		`INSERT INTO equipment (serial_number, type, status, mine_id, owner_id, last_service,
		        last_service_hours, hours_used, purchase_date, warranty_expiry, fuel_type, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`,
		equip.SerialNumber, equip.Type, equip.Status, equip.MineID, equip.OwnerID,
		equip.LastService, equip.LastServiceHours, equip.HoursUsed,
		equip.PurchaseDate, equip.WarrantyExpiry, equip.FuelType, equip.Description,
	).Scan(&equip.ID, &equip.CreatedAt, &equip.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		respondWithError(w, http.StatusConflict, "This serial number is already registered at this mine")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error creating equipment: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, newEquipmentResponse(equip))
}

// GetEquipment lists the fleet with service-cycle state plus the
// utilization and maintenance summary. ?mine_id= narrows to one site.
func GetEquipment(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := "SELECT " + equipmentColumns + " FROM equipment WHERE owner_id = $1"
	args := []interface{}{ownerID}
	if mineID := r.URL.Query().Get("mine_id"); mineID != "" {
		args = append(args, mineID)
		query += " AND mine_id = $2"
	}
	query += " ORDER BY serial_number"

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	fleet := []EquipmentResponse{}
	operational, maintenance, down, serviceDue := 0, 0, 0, 0
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Error scanning equipment data")
			return
		}
		switch e.Status {
		case models.EquipmentOperational:
			operational++
		case models.EquipmentMaintenance:
			maintenance++
		case models.EquipmentDown:
			down++
		}
		if e.IsServiceDue() {
			serviceDue++
		}
		fleet = append(fleet, newEquipmentResponse(e))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"equipment": fleet,
		"stats": map[string]interface{}{
			"total":       len(fleet),
			"operational": operational,
			"maintenance": maintenance,
			"down":        down,
			"service_due": serviceDue,
			"utilization": models.Utilization(operational, len(fleet)),
		},
	})
}

func GetEquipmentByID(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	equipID := vars["id"]

	row := database.DB.QueryRow(
		"SELECT "+equipmentColumns+" FROM equipment WHERE id = $1 AND owner_id = $2",
		equipID, ownerID,
	)
	e, err := scanEquipment(row)
	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Equipment not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondWithJSON(w, http.StatusOK, newEquipmentResponse(e))
}

func UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	equipID := vars["id"]

	var equip models.Equipment
	if err := json.NewDecoder(r.Body).Decode(&equip); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if equip.Status == "" {
		equip.Status = models.EquipmentOperational
	}
	if equip.FuelType == "" {
		equip.FuelType = "Diesel"
	}
	equip.OwnerID = ownerID

	if err := equip.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := database.DB.QueryRow(
		`UPDATE equipment
		 SET serial_number = $1, type = $2, status = $3, last_service = $4,
		     last_service_hours = $5, hours_used = $6, purchase_date = $7,
		     warranty_expiry = $8, fuel_type = $9, description = $10, updated_at = NOW()
		 WHERE id = $11 AND owner_id = $12
		 RETURNING id, mine_id, created_at, updated_at`,
		equip.SerialNumber, equip.Type, equip.Status, equip.LastService,
		equip.LastServiceHours, equip.HoursUsed, equip.PurchaseDate,
		equip.WarrantyExpiry, equip.FuelType, equip.Description, equipID, ownerID,
	).Scan(&equip.ID, &equip.MineID, &equip.CreatedAt, &equip.UpdatedAt)

	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Equipment not found")
		return
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		respondWithError(w, http.StatusConflict, "This serial number is already registered at this mine")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error updating equipment")
		return
	}

	respondWithJSON(w, http.StatusOK, newEquipmentResponse(equip))
}

// RecordService marks a unit as serviced now: the service date moves to
// today and the cycle anchor jumps to the current hour-meter reading.
func RecordService(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	equipID := vars["id"]

	today := localNow().Format("2006-01-02")
	row := database.DB.QueryRow(
		`UPDATE equipment
		 SET last_service = $1, last_service_hours = hours_used, status = 'Operational', updated_at = NOW()
		 WHERE id = $2 AND owner_id = $3
		 RETURNING `+equipmentColumns,
		today, equipID, ownerID,
	)
	e, err := scanEquipment(row)
	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Equipment not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error recording service")
		return
	}

	respondWithJSON(w, http.StatusOK, newEquipmentResponse(e))
}

func DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	equipID := vars["id"]

	result, err := database.DB.Exec(
		"DELETE FROM equipment WHERE id = $1 AND owner_id = $2",
		equipID, ownerID,
	)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error deleting equipment")
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		respondWithError(w, http.StatusNotFound, "Equipment not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Equipment deleted successfully"})
}
