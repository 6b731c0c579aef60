package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	api := newAuthedAPI(t)

	settings := api.mustDo(http.MethodGet, "/api/settings", nil, http.StatusOK)
	assert.Equal(t, "per_service", settings["costCalculationMode"])
	assert.InDelta(t, 30.0, settings["defaultMarginPct"], 1e-9)

	settings = api.mustDo(http.MethodPut, "/api/settings", jsonObject{
		"costCalculationMode": "monthly_average",
		"defaultMarginPct":    45,
		"workingHours":        jsonObject{"saturday": jsonObject{"closed": true}},
	}, http.StatusOK)
	assert.Equal(t, "monthly_average", settings["costCalculationMode"])
	hours := settings["workingHours"].(jsonObject)
	assert.Equal(t, true, hours["saturday"].(jsonObject)["closed"])
	assert.Equal(t, "08:00", hours["monday"].(jsonObject)["open"])

	w := api.do(http.MethodPut, "/api/settings", jsonObject{"defaultMarginPct": 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodPut, "/api/settings", jsonObject{
		"workingHours": jsonObject{"monday": jsonObject{"open": "18:00", "close": "08:00"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodPut, "/api/settings", jsonObject{
		"workingHours": jsonObject{"funday": jsonObject{"closed": true}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHourlyCost(t *testing.T) {
	api := newAuthedAPI(t)

	closed := jsonObject{"closed": true}
	api.mustDo(http.MethodPut, "/api/settings", jsonObject{
		"workingHours": jsonObject{
			"monday":    jsonObject{"open": "08:00", "close": "18:00"},
			"tuesday":   closed,
			"wednesday": closed,
			"thursday":  closed,
			"friday":    closed,
			"saturday":  closed,
			"sunday":    closed,
		},
	}, http.StatusOK)

	rent := api.mustDo(http.MethodPost, "/api/settings/costs", jsonObject{"name": "Rent", "type": "fixed", "value": 1000}, http.StatusCreated)
	api.mustDo(http.MethodPost, "/api/settings/costs", jsonObject{"name": "Water", "type": "variable", "value": 200}, http.StatusCreated)

	cost := api.mustDo(http.MethodGet, "/api/settings/hourly-cost", nil, http.StatusOK)
	assert.InDelta(t, 1200.0, cost["totalMonthlyExpenses"], 1e-9)
	assert.InDelta(t, 1.0, cost["activeDaysPerWeek"], 1e-9)
	assert.InDelta(t, 4.0, cost["totalWorkingDaysInMonth"], 1e-9)
	assert.InDelta(t, 9.0, cost["averageDailyHours"], 1e-9)
	assert.InDelta(t, 1200.0/4/9, cost["hourlyCost"], 1e-9)

	api.mustDo(http.MethodPut, "/api/settings/costs/"+rent["id"].(string), jsonObject{"name": "Rent", "type": "fixed", "value": 1600}, http.StatusOK)
	cost = api.mustDo(http.MethodGet, "/api/settings/hourly-cost", nil, http.StatusOK)
	assert.InDelta(t, 1800.0/4/9, cost["hourlyCost"], 1e-9)

	w := api.do(http.MethodPost, "/api/settings/costs", jsonObject{"name": "Tax", "type": "yearly", "value": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardAndReports(t *testing.T) {
	api := newAuthedAPI(t)
	account := seedBankAccount(t, api, 0)
	api.mustDo(http.MethodPost, "/api/sales", jsonObject{
		"manualClientName": "Walk-in",
		"services":         []jsonObject{{"name": "Express wash", "price": 40}},
		"accountId":        account,
	}, http.StatusCreated)

	dashboard := api.mustDo(http.MethodGet, "/api/dashboard", nil, http.StatusOK)
	assert.NotEmpty(t, dashboard)

	report := api.mustDo(http.MethodGet, "/api/reports", nil, http.StatusOK)
	assert.InDelta(t, 40.0, report["currentMonthRevenue"], 1e-9)
	assert.InDelta(t, 1.0, report["quickStats"].(jsonObject)["totalSales"], 1e-9)

	w := api.do(http.MethodPost, "/api/reminders/send", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	logs := decode[[]jsonObject](t, api.do(http.MethodGet, "/api/reminders/logs", nil))
	assert.Empty(t, logs)
}
