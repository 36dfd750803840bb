package handlers

import (
	"ZMMiningBackend/database"
	"ZMMiningBackend/middleware"
	"ZMMiningBackend/models"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// GetProductionTrend serves the trailing-30-day series across all the
// owner's mines, zero-filled, for the line chart.
func GetProductionTrend(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	start := localNow().AddDate(0, 0, -29)
	series, err := database.OwnerDailyProductionSeries(r.Context(), ownerID, start, 30)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	labels := make([]string, 0, len(series))
	data := make([]decimal.Decimal, 0, len(series))
	total := decimal.Zero
	for _, day := range series {
		labels = append(labels, day.Date.Format("Jan 02"))
		data = append(data, day.Total)
		total = total.Add(day.Total)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"labels":       labels,
		"data":         data,
		"total":        total,
		"daily_target": models.DailyTarget,
	})
}

// GetMineShare serves each mine's all-time output for the share pie chart.
func GetMineShare(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	totals, err := database.MineProductionTotals(r.Context(), ownerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	grand := decimal.Zero
	for _, mt := range totals {
		grand = grand.Add(mt.Total)
	}

	labels := make([]string, 0, len(totals))
	data := make([]decimal.Decimal, 0, len(totals))
	shares := make([]decimal.Decimal, 0, len(totals))
	for _, mt := range totals {
		labels = append(labels, mt.Name)
		data = append(data, mt.Total)
		shares = append(shares, models.PercentOfTarget(mt.Total, grand))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"labels": labels,
		"data":   data,
		"shares": shares,
		"total":  grand,
	})
}

// GetEquipmentReport lists the fleet ordered by urgency (fewest hours to
// service first) with the availability percentage.
func GetEquipmentReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rows, err := database.DB.Query(
		`SELECT e.id, e.serial_number, e.type, e.status, e.last_service_hours, e.hours_used, m.name
		 FROM equipment e
		 JOIN mines m ON m.id = e.mine_id
		 WHERE e.owner_id = $1`,
		ownerID,
	)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	type reportRow struct {
		ID             int             `json:"id"`
		SerialNumber   string          `json:"serial_number"`
		TypeName       string          `json:"type_name"`
		Status         string          `json:"status"`
		MineName       string          `json:"mine_name"`
		HoursUsed      decimal.Decimal `json:"hours_used"`
		HoursToService decimal.Decimal `json:"hours_to_service"`
		ServiceStatus  string          `json:"service_status"`
	}

	report := []reportRow{}
	operational := 0
	for rows.Next() {
		var e models.Equipment
		var mineName string
		err := rows.Scan(&e.ID, &e.SerialNumber, &e.Type, &e.Status,
			&e.LastServiceHours, &e.HoursUsed, &mineName)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Error scanning equipment data")
			return
		}
		if e.Status == models.EquipmentOperational {
			operational++
		}
		report = append(report, reportRow{
			ID:             e.ID,
			SerialNumber:   e.SerialNumber,
			TypeName:       e.TypeName(),
			Status:         string(e.Status),
			MineName:       mineName,
			HoursUsed:      e.HoursUsed,
			HoursToService: e.HoursToService(),
			ServiceStatus:  e.ServiceStatus(),
		})
	}

	sort.Slice(report, func(i, j int) bool {
		return report[i].HoursToService.LessThan(report[j].HoursToService)
	})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"equipment":    report,
		"availability": models.Utilization(operational, len(report)),
	})
}

// GetWorkforceReport serves the per-mine headcount bar chart.
func GetWorkforceReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	counts, names, err := database.WorkforceByMine(r.Context(), ownerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	data := make([]int, 0, len(names))
	total := 0
	for _, name := range names {
		data = append(data, counts[name])
		total += counts[name]
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"labels": names,
		"data":   data,
		"total":  total,
	})
}

// GetMonthlyTargets compares each month's output with the 2,500 t monthly
// target for a year (?year=, default current; ?mine_id= narrows to one site).
func GetMonthlyTargets(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	year := localNow().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 2000 && n <= 2100 {
			year = n
		}
	}

	var totals [12]decimal.Decimal
	var err error
	if v := r.URL.Query().Get("mine_id"); v != "" {
		mineID, convErr := strconv.Atoi(v)
		if convErr != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid mine id")
			return
		}
		var owned bool
		if dbErr := database.DB.QueryRow(
			"SELECT EXISTS(SELECT 1 FROM mines WHERE id = $1 AND owner_id = $2)",
			mineID, ownerID,
		).Scan(&owned); dbErr != nil || !owned {
			respondWithError(w, http.StatusNotFound, "Mine not found")
			return
		}
		totals, err = database.MonthlyProductionTotals(r.Context(), mineID, year)
	} else {
		totals, err = database.OwnerMonthlyProductionTotals(r.Context(), ownerID, year)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	labels := make([]string, 0, 12)
	actual := make([]decimal.Decimal, 0, 12)
	target := make([]decimal.Decimal, 0, 12)
	annualTotal := decimal.Zero
	for month := 1; month <= 12; month++ {
		labels = append(labels, time.Month(month).String()[:3])
		actual = append(actual, totals[month-1])
		target = append(target, models.MonthlyTarget)
		annualTotal = annualTotal.Add(totals[month-1])
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"year":           year,
		"labels":         labels,
		"actual":         actual,
		"target":         target,
		"annual_total":   annualTotal,
		"annual_target":  models.AnnualTarget,
		"annual_percent": models.PercentOfTarget(annualTotal, models.AnnualTarget),
	})
}
