package handlers

import (
	"ZMMiningBackend/models"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJobRoles(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/job-roles", nil)
	rec := httptest.NewRecorder()

	GetJobRoles(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload struct {
		Roles      []string            `json:"roles"`
		Categories map[string][]string `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))

	assert.Equal(t, models.Roles, payload.Roles)
	assert.Contains(t, payload.Categories[models.CategoryManagement], "Mine Manager")
	assert.Contains(t, payload.Categories[models.CategoryOperator], "Haul Truck Driver")

	// Every catalog role lands in exactly one category.
	total := 0
	for _, roles := range payload.Categories {
		total += len(roles)
	}
	assert.Equal(t, len(models.Roles), total)
}

func TestNAPSAWorkbookRegisteredOnly(t *testing.T) {
	registered := "1234567890"
	alsoRegistered := "0987654321"
	entries := []napsaEntry{
		{
			Employee: models.Employee{
				FirstName: "Mwamba", LastName: "Banda",
				NRC: "123456/78/9", NapsaNumber: &registered,
				Role: "Drill Operator", Phone: "+260971234567",
			},
			MineName: "Kansanshi North",
		},
		{
			Employee: models.Employee{
				FirstName: "Chanda", LastName: "Mulenga",
				NRC: "234567/89/1", Role: "Loader Operator",
			},
			MineName: "Kansanshi North",
		},
		{
			Employee: models.Employee{
				FirstName: "Bupe", LastName: "Phiri",
				NRC: "345678/90/1", NapsaNumber: &alsoRegistered,
				Role: "Safety Officer", Phone: "+260977654321",
			},
			MineName: "Mkushi South",
		},
	}

	f, err := napsaWorkbook(entries)
	require.NoError(t, err)
	defer f.Close()

	const sheet = "NAPSA Register"
	sheetRows, err := f.GetRows(sheet)
	require.NoError(t, err)

	// Header plus one row per registered employee; the worker without a
	// NAPSA number is not part of the submission.
	require.Len(t, sheetRows, 3)
	assert.Equal(t, []string{"NRC", "Full Name", "NAPSA Number", "Mine", "Role", "Phone"}, sheetRows[0])
	assert.Equal(t, []string{"123456/78/9", "Mwamba Banda", "1234567890", "Kansanshi North", "Drill Operator", "+260971234567"}, sheetRows[1])
	assert.Equal(t, []string{"345678/90/1", "Bupe Phiri", "0987654321", "Mkushi South", "Safety Officer", "+260977654321"}, sheetRows[2])

	for _, row := range sheetRows {
		assert.NotContains(t, row, "234567/89/1")
	}
}

func TestProductionResponseUsesConfiguredTimezone(t *testing.T) {
	lusaka, err := time.LoadLocation("Africa/Lusaka")
	require.NoError(t, err)
	InitTimezone(lusaka)
	defer InitTimezone(time.UTC)

	// 16:30 UTC is 18:30 in Lusaka (UTC+2): past the cutoff.
	record := models.ProductionRecord{
		Date:     time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Quantity: decimal.NewFromFloat(180),
		LoggedAt: time.Date(2026, 8, 31, 16, 30, 0, 0, time.UTC),
	}
	resp := newProductionResponse(record, "Kansanshi North")
	assert.True(t, resp.IsLate)

	// 15:30 UTC is 17:30 in Lusaka: on time.
	record.LoggedAt = time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)
	resp = newProductionResponse(record, "Kansanshi North")
	assert.False(t, resp.IsLate)
}

func TestLocalNow(t *testing.T) {
	lusaka, err := time.LoadLocation("Africa/Lusaka")
	require.NoError(t, err)
	InitTimezone(lusaka)
	defer InitTimezone(time.UTC)

	assert.Equal(t, lusaka, localNow().Location())

	// Nil keeps the current zone.
	InitTimezone(nil)
	assert.Equal(t, lusaka, localNow().Location())
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithError(rec, http.StatusConflict, "Production for this mine and date is already logged")

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Production for this mine and date is already logged", resp.Error)
}
