package handlers

import (
	"ZMMiningBackend/database"
	"ZMMiningBackend/middleware"
	"ZMMiningBackend/models"
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"
)

type napsaEntry struct {
	Employee models.Employee
	MineName string
}

// napsaWorkbook builds the register workbook. Only NAPSA-registered
// employees become rows; anyone without a number on file is not part of
// the submission.
func napsaWorkbook(entries []napsaEntry) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "NAPSA Register"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"NRC", "Full Name", "NAPSA Number", "Mine", "Role", "Phone"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetColWidth(sheet, "A", "B", 22)
	f.SetColWidth(sheet, "C", "F", 18)

	rowNum := 2
	for _, entry := range entries {
		e := entry.Employee
		if !e.IsNAPSACompliant() {
			continue
		}
		values := []interface{}{e.NRC, e.FullName(), *e.NapsaNumber, entry.MineName, e.Role, e.Phone}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			f.SetCellValue(sheet, cell, v)
		}
		rowNum++
	}

	return f, nil
}

// ExportNAPSARegister streams the NAPSA-registered workforce as an Excel
// workbook in the layout NAPSA returns submissions are keyed on.
func ExportNAPSARegister(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rows, err := database.DB.Query(
		`SELECT e.first_name, e.last_name, e.nrc, e.napsa_number, e.role, e.phone, m.name
		 FROM employees e
		 JOIN mines m ON m.id = e.mine_id
		 WHERE e.owner_id = $1 AND e.is_active = true AND e.napsa_number IS NOT NULL
		 ORDER BY m.name, e.last_name, e.first_name`,
		ownerID,
	)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	entries := []napsaEntry{}
	for rows.Next() {
		var e models.Employee
		var mineName string
		if err := rows.Scan(&e.FirstName, &e.LastName, &e.NRC, &e.NapsaNumber,
			&e.Role, &e.Phone, &mineName); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Error scanning employee data")
			return
		}
		entries = append(entries, napsaEntry{Employee: e, MineName: mineName})
	}

	f, err := napsaWorkbook(entries)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error building workbook")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("napsa-register-%s.xlsx", localNow().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := f.Write(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error writing workbook")
	}
}
