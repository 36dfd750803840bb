package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats are the owner-scoped counts feeding the dashboard and the
// home page. Utilization is left to the caller (models.Utilization) so the
// zero-equipment guard lives in one place.
type DashboardStats struct {
	Mines            int
	ActiveMines      int
	Employees        int
	ActiveEmployees  int
	Equipment        int
	OperationalCount int
}

// DailyTotal is one calendar day's summed production.
type DailyTotal struct {
	Date  time.Time
	Total decimal.Decimal
}

// MineTotal is a mine's all-time production, for the output-share report.
type MineTotal struct {
	MineID int
	Name   string
	Total  decimal.Decimal
}

func GetDashboardStats(ctx context.Context, ownerID string) (*DashboardStats, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}

	stats := &DashboardStats{}
	err := DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM mines WHERE owner_id = $1),
			(SELECT COUNT(*) FROM mines WHERE owner_id = $1 AND status = 'Active'),
			(SELECT COUNT(*) FROM employees WHERE owner_id = $1),
			(SELECT COUNT(*) FROM employees WHERE owner_id = $1 AND is_active = true),
			(SELECT COUNT(*) FROM equipment WHERE owner_id = $1),
			(SELECT COUNT(*) FROM equipment WHERE owner_id = $1 AND status = 'Operational')
	`, ownerID).Scan(&stats.Mines, &stats.ActiveMines, &stats.Employees,
		&stats.ActiveEmployees, &stats.Equipment, &stats.OperationalCount)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats query failed: %w", err)
	}

	return stats, nil
}

// ProductionTotalForDay sums an owner's production for one calendar day.
// Days without records are zero, never an error.
func ProductionTotalForDay(ctx context.Context, ownerID string, day time.Time) (decimal.Decimal, error) {
	if DB == nil {
		return decimal.Zero, errors.New("database not initialized")
	}

	var total decimal.Decimal
	err := DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM production_records
		WHERE owner_id = $1 AND date = $2
	`, ownerID, day.Format("2006-01-02")).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("daily production query failed: %w", err)
	}

	return total, nil
}

// MineProductionTotalForDay is ProductionTotalForDay scoped to one mine.
func MineProductionTotalForDay(ctx context.Context, mineID int, day time.Time) (decimal.Decimal, error) {
	if DB == nil {
		return decimal.Zero, errors.New("database not initialized")
	}

	var total decimal.Decimal
	err := DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM production_records
		WHERE mine_id = $1 AND date = $2
	`, mineID, day.Format("2006-01-02")).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("mine daily production query failed: %w", err)
	}

	return total, nil
}

// DailyProductionSeries returns one entry per day from start for `days`
// days, zero-filling days that have no records.
func DailyProductionSeries(ctx context.Context, mineID int, start time.Time, days int) ([]DailyTotal, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}

	end := start.AddDate(0, 0, days-1)
	rows, err := DB.QueryContext(ctx, `
		SELECT date, SUM(quantity)
		FROM production_records
		WHERE mine_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY date
		ORDER BY date
	`, mineID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("production series query failed: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]decimal.Decimal)
	for rows.Next() {
		var day time.Time
		var total decimal.Decimal
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("production series scan failed: %w", err)
		}
		byDay[day.Format("2006-01-02")] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	series := make([]DailyTotal, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		total, ok := byDay[day.Format("2006-01-02")]
		if !ok {
			total = decimal.Zero
		}
		series = append(series, DailyTotal{Date: day, Total: total})
	}

	return series, nil
}

// OwnerDailyProductionSeries is DailyProductionSeries across all of an
// owner's mines.
func OwnerDailyProductionSeries(ctx context.Context, ownerID string, start time.Time, days int) ([]DailyTotal, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}

	end := start.AddDate(0, 0, days-1)
	rows, err := DB.QueryContext(ctx, `
		SELECT date, SUM(quantity)
		FROM production_records
		WHERE owner_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY date
		ORDER BY date
	`, ownerID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("owner production series query failed: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]decimal.Decimal)
	for rows.Next() {
		var day time.Time
		var total decimal.Decimal
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("owner production series scan failed: %w", err)
		}
		byDay[day.Format("2006-01-02")] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	series := make([]DailyTotal, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		total, ok := byDay[day.Format("2006-01-02")]
		if !ok {
			total = decimal.Zero
		}
		series = append(series, DailyTotal{Date: day, Total: total})
	}

	return series, nil
}

// MonthlyProductionTotals returns a mine's production summed per calendar
// month for a year. Months without records are zero.
func MonthlyProductionTotals(ctx context.Context, mineID int, year int) ([12]decimal.Decimal, error) {
	var totals [12]decimal.Decimal
	if DB == nil {
		return totals, errors.New("database not initialized")
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT EXTRACT(MONTH FROM date)::int, SUM(quantity)
		FROM production_records
		WHERE mine_id = $1 AND EXTRACT(YEAR FROM date) = $2
		GROUP BY 1
		ORDER BY 1
	`, mineID, year)
	if err != nil {
		return totals, fmt.Errorf("monthly totals query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var month int
		var total decimal.Decimal
		if err := rows.Scan(&month, &total); err != nil {
			return totals, fmt.Errorf("monthly totals scan failed: %w", err)
		}
		if month >= 1 && month <= 12 {
			totals[month-1] = total
		}
	}

	return totals, rows.Err()
}

// OwnerMonthlyProductionTotals sums per month across all the owner's mines.
func OwnerMonthlyProductionTotals(ctx context.Context, ownerID string, year int) ([12]decimal.Decimal, error) {
	var totals [12]decimal.Decimal
	if DB == nil {
		return totals, errors.New("database not initialized")
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT EXTRACT(MONTH FROM date)::int, SUM(quantity)
		FROM production_records
		WHERE owner_id = $1 AND EXTRACT(YEAR FROM date) = $2
		GROUP BY 1
		ORDER BY 1
	`, ownerID, year)
	if err != nil {
		return totals, fmt.Errorf("owner monthly totals query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var month int
		var total decimal.Decimal
		if err := rows.Scan(&month, &total); err != nil {
			return totals, fmt.Errorf("owner monthly totals scan failed: %w", err)
		}
		if month >= 1 && month <= 12 {
			totals[month-1] = total
		}
	}

	return totals, rows.Err()
}

// ProductionTotalSince sums an owner's production from a start date to now.
// Used for the month-to-date and trailing-30-day figures.
func ProductionTotalSince(ctx context.Context, ownerID string, start time.Time) (decimal.Decimal, error) {
	if DB == nil {
		return decimal.Zero, errors.New("database not initialized")
	}

	var total decimal.Decimal
	err := DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM production_records
		WHERE owner_id = $1 AND date >= $2
	`, ownerID, start.Format("2006-01-02")).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("production-since query failed: %w", err)
	}

	return total, nil
}

// MineProductionTotals returns all-time production per mine for an owner,
// including mines with no records at zero.
func MineProductionTotals(ctx context.Context, ownerID string) ([]MineTotal, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT m.id, m.name, COALESCE(SUM(p.quantity), 0)
		FROM mines m
		LEFT JOIN production_records p ON p.mine_id = m.id
		WHERE m.owner_id = $1
		GROUP BY m.id, m.name
		ORDER BY m.name
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("mine totals query failed: %w", err)
	}
	defer rows.Close()

	totals := []MineTotal{}
	for rows.Next() {
		var mt MineTotal
		if err := rows.Scan(&mt.MineID, &mt.Name, &mt.Total); err != nil {
			return nil, fmt.Errorf("mine totals scan failed: %w", err)
		}
		totals = append(totals, mt)
	}

	return totals, rows.Err()
}

// WorkforceByMine counts employees per mine for an owner.
func WorkforceByMine(ctx context.Context, ownerID string) (map[string]int, []string, error) {
	if DB == nil {
		return nil, nil, errors.New("database not initialized")
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT m.name, COUNT(e.id)
		FROM mines m
		LEFT JOIN employees e ON e.mine_id = m.id
		WHERE m.owner_id = $1
		GROUP BY m.name
		ORDER BY m.name
	`, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("workforce query failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	names := []string{}
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, nil, fmt.Errorf("workforce scan failed: %w", err)
		}
		counts[name] = count
		names = append(names, name)
	}

	return counts, names, rows.Err()
}

// EmployeeCountForMine counts one mine's workforce.
func EmployeeCountForMine(ctx context.Context, mineID int) (int, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}

	var count int
	err := DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE mine_id = $1`, mineID).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("employee count query failed: %w", err)
	}

	return count, nil
}
