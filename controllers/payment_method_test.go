package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installmentRates(method jsonObject) map[int]float64 {
	rates := map[int]float64{}
	for _, row := range method["installments"].([]any) {
		r := row.(jsonObject)
		rates[int(r["installments"].(float64))] = r["rate"].(float64)
	}
	return rates
}

func TestCreditCardGetsTwelveInstallments(t *testing.T) {
	api := newAuthedAPI(t)

	method := api.mustDo(http.MethodPost, "/api/payment-methods", jsonObject{
		"name": "Visa", "type": "credit_card", "rate": 3.5,
		"installmentRates": jsonObject{"3": 6, "12": 14.9},
	}, http.StatusCreated)

	rates := installmentRates(method)
	require.Len(t, rates, 12)
	assert.Equal(t, 3.5, rates[1])
	assert.Equal(t, 6.0, rates[3])
	assert.Equal(t, 14.9, rates[12])

	id := method["id"].(string)
	method = api.mustDo(http.MethodPut, "/api/payment-methods/"+id+"/installments", jsonObject{
		"rates": []jsonObject{{"installments": 2, "rate": 4.5}},
	}, http.StatusOK)
	assert.Equal(t, 4.5, installmentRates(method)[2])

	method = api.mustDo(http.MethodPut, "/api/payment-methods/"+id, jsonObject{"type": "pix"}, http.StatusOK)
	assert.Empty(t, method["installments"])

	w := api.do(http.MethodPut, "/api/payment-methods/"+id+"/installments", jsonObject{
		"rates": []jsonObject{{"installments": 2, "rate": 4.5}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	method = api.mustDo(http.MethodPut, "/api/payment-methods/"+id, jsonObject{"type": "credit_card", "rate": 2}, http.StatusOK)
	assert.Len(t, installmentRates(method), 12)
	assert.Equal(t, 2.0, installmentRates(method)[7])
}

func TestPaymentMethodValidation(t *testing.T) {
	api := newAuthedAPI(t)

	w := api.do(http.MethodPost, "/api/payment-methods", jsonObject{"name": "Cheque", "type": "cheque"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/payment-methods", jsonObject{
		"name": "Visa", "type": "credit_card", "installmentRates": jsonObject{"13": 1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	cash := api.mustDo(http.MethodPost, "/api/payment-methods", jsonObject{"name": "Cash", "type": "cash"}, http.StatusCreated)
	assert.Empty(t, cash["installments"])
	assert.Equal(t, true, cash["isActive"])

	api.mustDo(http.MethodDelete, "/api/payment-methods/"+cash["id"].(string), nil, http.StatusOK)
	w = api.do(http.MethodGet, "/api/payment-methods/"+cash["id"].(string), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
