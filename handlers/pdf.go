package handlers

import (
	"ZMMiningBackend/database"
	"ZMMiningBackend/middleware"
	"ZMMiningBackend/models"
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
)

func writePDF(w http.ResponseWriter, pdf *gofpdf.Fpdf, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := pdf.Output(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error rendering PDF")
	}
}

func pdfHeader(pdf *gofpdf.Fpdf, title, subtitle string) {
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, subtitle)
	pdf.Ln(12)
}

// renderTrendChart draws the daily series as a PNG line chart for embedding.
func renderTrendChart(series []database.DailyTotal) (*bytes.Buffer, error) {
	xs := make([]time.Time, 0, len(series))
	ys := make([]float64, 0, len(series))
	targets := make([]float64, 0, len(series))
	dailyTarget, _ := models.DailyTarget.Float64()
	for _, day := range series {
		xs = append(xs, day.Date)
		total, _ := day.Total.Float64()
		ys = append(ys, total)
		targets = append(targets, dailyTarget)
	}

	graph := chart.Chart{
		Width:  800,
		Height: 300,
		XAxis:  chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Production (t)", XValues: xs, YValues: ys},
			chart.TimeSeries{
				Name:    "Target",
				XValues: xs,
				YValues: targets,
				Style:   chart.Style{StrokeDashArray: []float64{5.0, 5.0}},
			},
		},
	}

	buf := &bytes.Buffer{}
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// GetMineReportPDF produces a mine's 30-day production report: the trend
// chart followed by the day-by-day table.
func GetMineReportPDF(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	mineID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid mine id")
		return
	}

	var mineName, mineLocation string
	err = database.DB.QueryRow(
		"SELECT name, location FROM mines WHERE id = $1 AND owner_id = $2",
		mineID, ownerID,
	).Scan(&mineName, &mineLocation)
	if err == sql.ErrNoRows {
		respondWithError(w, http.StatusNotFound, "Mine not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	start := localNow().AddDate(0, 0, -29)
	series, err := database.DailyProductionSeries(r.Context(), mineID, start, 30)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdfHeader(pdf, "Production Report: "+mineName,
		fmt.Sprintf("%s | Last 30 days | Generated %s", mineLocation, localNow().Format("02 Jan 2006")))

	if chartBuf, err := renderTrendChart(series); err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("trend", opts, chartBuf)
		pdf.ImageOptions("trend", 10, pdf.GetY(), 190, 0, true, opts, 0, "")
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(50, 7, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Tonnage", "1", 0, "R", false, 0, "")
	pdf.CellFormat(50, 7, "Target Met", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	total := decimal.Zero
	for _, day := range series {
		met := "No"
		if day.Total.GreaterThanOrEqual(models.DailyTarget) {
			met = "Yes"
		}
		total = total.Add(day.Total)
		pdf.CellFormat(50, 6, day.Date.Format("02 Jan 2006"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, day.Total.StringFixed(2)+" t", "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, met, "1", 1, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(50, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, total.StringFixed(2)+" t", "1", 0, "R", false, 0, "")
	pdf.CellFormat(50, 7, "", "1", 1, "C", false, 0, "")

	writePDF(w, pdf, fmt.Sprintf("production-%d.pdf", mineID))
}

// GetAnnualReportPDF produces the year's month-by-month report against the
// 2,500 t monthly target across all the owner's mines.
func GetAnnualReportPDF(w http.ResponseWriter, r *http.Request) {
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

	totals, err := database.OwnerMonthlyProductionTotals(r.Context(), ownerID, year)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdfHeader(pdf, fmt.Sprintf("Annual Production Report %d", year),
		"All mines | Generated "+localNow().Format("02 Jan 2006"))

	// Monthly bar chart.
	bars := make([]chart.Value, 0, 12)
	for month := 1; month <= 12; month++ {
		total, _ := totals[month-1].Float64()
		bars = append(bars, chart.Value{Value: total, Label: time.Month(month).String()[:3]})
	}
	graph := chart.BarChart{
		Width:    800,
		Height:   300,
		BarWidth: 40,
		Bars:     bars,
	}
	chartBuf := &bytes.Buffer{}
	if err := graph.Render(chart.PNG, chartBuf); err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("monthly", opts, chartBuf)
		pdf.ImageOptions("monthly", 10, pdf.GetY(), 190, 0, true, opts, 0, "")
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(50, 7, "Month", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, "Actual", "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 7, "Target", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "% of Target", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	annual := decimal.Zero
	for month := 1; month <= 12; month++ {
		actual := totals[month-1]
		annual = annual.Add(actual)
		pdf.CellFormat(50, 6, time.Month(month).String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, actual.StringFixed(2)+" t", "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, models.MonthlyTarget.StringFixed(2)+" t", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, models.PercentOfTarget(actual, models.MonthlyTarget).String()+"%", "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(50, 7, "Year", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, annual.StringFixed(2)+" t", "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 7, models.AnnualTarget.StringFixed(2)+" t", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, models.PercentOfTarget(annual, models.AnnualTarget).String()+"%", "1", 1, "R", false, 0, "")

	writePDF(w, pdf, fmt.Sprintf("annual-report-%d.pdf", year))
}

// GetEmployeeRegisterPDF produces the workforce register with compliance
// columns, the format mine inspectors ask for.
func GetEmployeeRegisterPDF(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rows, err := database.DB.Query(
		`SELECT e.first_name, e.last_name, e.nrc, e.napsa_number, e.role,
		        e.last_safety_training, m.name
		 FROM employees e
		 JOIN mines m ON m.id = e.mine_id
		 WHERE e.owner_id = $1 AND e.is_active = true
		 ORDER BY m.name, e.last_name, e.first_name`,
		ownerID,
	)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdfHeader(pdf, "Employee Register", "Active employees | Generated "+localNow().Format("02 Jan 2006"))

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(55, 7, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "NRC", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "NAPSA", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Role", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Mine", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Training", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	now := localNow()
	for rows.Next() {
		var e models.Employee
		var mineName string
		if err := rows.Scan(&e.FirstName, &e.LastName, &e.NRC, &e.NapsaNumber,
			&e.Role, &e.LastSafetyTraining, &mineName); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Error scanning employee data")
			return
		}
		napsa := "-"
		if e.NapsaNumber != nil {
			napsa = *e.NapsaNumber
		}
		pdf.CellFormat(55, 6, e.FullName(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, e.NRC, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, napsa, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, e.Role, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, mineName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, e.SafetyTrainingStatus(now), "1", 1, "C", false, 0, "")
	}

	writePDF(w, pdf, "employee-register.pdf")
}
