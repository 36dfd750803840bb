package handlers

import (
	"ZMMiningBackend/database"
	"ZMMiningBackend/middleware"
	"ZMMiningBackend/models"
	"net/http"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GetDashboard serves the owner's home page figures: entity counts, fleet
// utilization and today's production against the 250 t daily target.
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	stats, err := database.GetDashboardStats(r.Context(), ownerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := localNow()
	todayTotal, err := database.ProductionTotalForDay(r.Context(), ownerID, now)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error computing production")
		return
	}

	// Progress toward today's target, capped at 100 for the gauge.
	progress := models.PercentOfTarget(todayTotal, models.DailyTarget)
	if progress.GreaterThan(hundred) {
		progress = hundred
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"mines":            stats.Mines,
		"active_mines":     stats.ActiveMines,
		"employees":        stats.Employees,
		"active_employees": stats.ActiveEmployees,
		"equipment":        stats.Equipment,
		"operational":      stats.OperationalCount,
		"utilization":      models.Utilization(stats.OperationalCount, stats.Equipment),
		"today_production": todayTotal,
		"daily_target":     models.DailyTarget,
		"daily_progress":   progress,
		"daily_target_met": todayTotal.GreaterThanOrEqual(models.DailyTarget),
		"is_after_6pm":     now.Hour() >= 18,
	})
}
