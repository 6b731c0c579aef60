package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"detailpro-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientVehiclesAreSyncedOnUpdate(t *testing.T) {
	api := newAuthedAPI(t)

	client := api.mustDo(http.MethodPost, "/api/clients", jsonObject{
		"name":     "  Maria Souza ",
		"document": "123.456.789-09",
		"phone":    "+55 11 99999-0000",
		"state":    "sp",
		"vehicles": []jsonObject{
			{"brand": "Honda", "model": "Civic", "plate": "abc-1234"},
			{"brand": "Fiat", "model": "Uno", "plate": "DEF1G23"},
		},
	}, http.StatusCreated)
	assert.Equal(t, "Maria Souza", client["name"])
	assert.Equal(t, "12345678909", client["document"])
	assert.Equal(t, "SP", client["state"])

	vehicles := client["vehicles"].([]any)
	require.Len(t, vehicles, 2)
	civic := vehicles[0].(jsonObject)
	assert.Equal(t, "ABC1234", civic["plate"])

	id := client["id"].(string)
	updated := api.mustDo(http.MethodPut, "/api/clients/"+id, jsonObject{
		"name": "Maria Souza",
		"vehicles": []jsonObject{
			{"id": civic["id"], "brand": "Honda", "model": "Civic Touring", "plate": "ABC1234"},
			{"brand": "VW", "model": "Golf"},
		},
	}, http.StatusOK)
	assert.ElementsMatch(t, []string{"Civic Touring", "Golf"}, modelsOf(updated))

	list := decode[[]jsonObject](t, api.do(http.MethodGet, "/api/vehicles?search=golf", nil))
	require.Len(t, list, 1)
	assert.Equal(t, "Maria Souza", list[0]["clientName"])
}

func TestClientUpdateWithoutVehiclesKeepsThem(t *testing.T) {
	api := newAuthedAPI(t)

	client := api.mustDo(http.MethodPost, "/api/clients", jsonObject{
		"name":     "João",
		"vehicles": []jsonObject{{"brand": "Toyota", "model": "Corolla"}},
	}, http.StatusCreated)

	updated := api.mustDo(http.MethodPut, "/api/clients/"+client["id"].(string), jsonObject{"name": "João Lima"}, http.StatusOK)
	assert.Equal(t, "João Lima", updated["name"])
	assert.Len(t, updated["vehicles"], 1)
}

func TestClientVehicleSyncRollsBack(t *testing.T) {
	api := newAuthedAPI(t)

	client := api.mustDo(http.MethodPost, "/api/clients", jsonObject{
		"name":     "Ana",
		"vehicles": []jsonObject{{"brand": "Ford", "model": "Ka"}},
	}, http.StatusCreated)

	w := api.do(http.MethodPut, "/api/clients/"+client["id"].(string), jsonObject{
		"name": "Ana Renamed",
		"vehicles": []jsonObject{
			{"brand": "Ford", "model": "Fiesta"},
			{"id": "9b2f8a5e-6c1d-4e2f-9a3b-1c2d3e4f5a6b", "brand": "Ghost", "model": "Car"},
		},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var stored []models.Vehicle
	require.NoError(t, api.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "Ka", stored[0].Model)

	got := api.mustDo(http.MethodGet, "/api/clients/"+client["id"].(string), nil, http.StatusOK)
	assert.Equal(t, "Ana", got["name"])
}

func TestClientValidationAndScoping(t *testing.T) {
	api := newAuthedAPI(t)

	w := api.do(http.MethodPost, "/api/clients", jsonObject{
		"name":     "Bad",
		"document": "123",
		"vehicles": []jsonObject{{"brand": "X", "model": "Y", "plate": "12-AB"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode[jsonObject](t, w)["details"].(jsonObject)
	assert.Contains(t, details, "document")
	assert.Contains(t, details, "vehicles[0].plate")

	w = api.do(http.MethodGet, "/api/clients/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/clients/9b2f8a5e-6c1d-4e2f-9a3b-1c2d3e4f5a6b", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func modelsOf(client jsonObject) []string {
	var out []string
	for _, v := range client["vehicles"].([]any) {
		out = append(out, v.(jsonObject)["model"].(string))
	}
	return out
}

func TestCancelledRequestWritesNothing(t *testing.T) {
	api := newAuthedAPI(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := api.doContext(ctx, http.MethodPost, "/api/clients", jsonObject{
		"name":     "Late Larry",
		"vehicles": []jsonObject{{"brand": "Ford", "model": "Ka", "plate": "GHI5J67"}},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var clients, vehicles int64
	require.NoError(t, api.db.Model(&models.Client{}).Count(&clients).Error)
	require.NoError(t, api.db.Model(&models.Vehicle{}).Count(&vehicles).Error)
	assert.Zero(t, clients)
	assert.Zero(t, vehicles)
}
