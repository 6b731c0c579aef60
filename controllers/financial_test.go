package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"detailpro-backend/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionsMoveBalances(t *testing.T) {
	api := newAuthedAPI(t)
	account := seedBankAccount(t, api, 100)

	debit := api.mustDo(http.MethodPost, "/api/transactions", jsonObject{
		"accountId": account, "type": "debit", "amount": 40, "description": "Shampoo restock", "category": "supplies",
	}, http.StatusCreated)
	assert.True(t, api.account(account).Balance.Equal(decimal.NewFromInt(60)))

	api.mustDo(http.MethodPut, "/api/transactions/"+debit["id"].(string), jsonObject{
		"accountId": account, "type": "debit", "amount": 45.5, "description": "Shampoo restock",
	}, http.StatusOK)
	assert.True(t, api.account(account).Balance.Equal(decimal.RequireFromString("54.5")))

	w := api.do(http.MethodPost, "/api/transactions", jsonObject{"accountId": account, "type": "refund", "amount": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodPost, "/api/transactions", jsonObject{"accountId": account, "type": "credit", "amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	list := decode[[]jsonObject](t, api.do(http.MethodGet, "/api/transactions?category=supplies", nil))
	require.Len(t, list, 1)

	w = api.do(http.MethodDelete, "/api/accounts/"+account, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	api.mustDo(http.MethodDelete, "/api/transactions/"+debit["id"].(string), nil, http.StatusOK)
	assert.True(t, api.account(account).Balance.Equal(decimal.NewFromInt(100)))
	api.mustDo(http.MethodDelete, "/api/accounts/"+account, nil, http.StatusOK)
}

func TestAccountsTotalBalance(t *testing.T) {
	api := newAuthedAPI(t)
	seedBankAccount(t, api, 100)
	cash := api.mustDo(http.MethodPost, "/api/accounts", jsonObject{
		"name": "Drawer", "type": "cash", "initialBalance": 25.5,
	}, http.StatusCreated)

	res := api.mustDo(http.MethodGet, "/api/accounts", nil, http.StatusOK)
	assert.Len(t, res["accounts"], 2)
	assert.InDelta(t, 125.5, res["totalBalance"], 1e-9)

	// Editing an account never changes its balance.
	updated := api.mustDo(http.MethodPut, "/api/accounts/"+cash["id"].(string), jsonObject{"name": "Till"}, http.StatusOK)
	assert.Equal(t, "Till", updated["name"])
	assert.InDelta(t, 25.5, updated["balance"], 1e-9)

	w := api.do(http.MethodPost, "/api/accounts", jsonObject{"name": "Card", "type": "credit"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlannedItemLifecycle(t *testing.T) {
	api := newAuthedAPI(t)
	account := seedBankAccount(t, api, 60)
	today := utils.BeginningOfDay(time.Now())

	item := api.mustDo(http.MethodPost, "/api/planned-items", jsonObject{
		"type": "receivable", "amount": 25, "description": "Fleet invoice", "counterparty": "Acme",
		"dueDate": today.AddDate(0, 0, 1).Format(utils.DateLayout),
	}, http.StatusCreated)
	assert.Equal(t, "pending", item["status"])
	id := item["id"].(string)

	late := api.mustDo(http.MethodPost, "/api/planned-items", jsonObject{
		"type": "payable", "amount": 10, "description": "Water bill",
		"dueDate": today.AddDate(0, 0, -3).Format(utils.DateLayout),
	}, http.StatusCreated)
	assert.Equal(t, "overdue", late["status"])

	w := api.do(http.MethodPost, "/api/planned-items", jsonObject{
		"type": "payable", "amount": 10, "dueDate": "2026-13-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodPost, "/api/planned-items", jsonObject{
		"type": "payable", "amount": 10, "dueDate": today.Format(utils.DateLayout),
		"accountId": "9b2f8a5e-6c1d-4e2f-9a3b-1c2d3e4f5a6b",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	realized := api.mustDo(http.MethodPost, "/api/planned-items/"+id+"/realize", jsonObject{"accountId": account}, http.StatusOK)
	assert.Equal(t, "realized", realized["status"])
	assert.NotNil(t, realized["transactionId"])
	assert.True(t, api.account(account).Balance.Equal(decimal.NewFromInt(85)))

	w = api.do(http.MethodPost, "/api/planned-items/"+id+"/realize", jsonObject{"accountId": account})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = api.do(http.MethodDelete, "/api/planned-items/"+id, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	overdue := decode[[]jsonObject](t, api.do(http.MethodGet, "/api/planned-items?status=overdue", nil))
	require.Len(t, overdue, 1)
	assert.Equal(t, late["id"], overdue[0]["id"])

	api.mustDo(http.MethodDelete, "/api/planned-items/"+late["id"].(string), nil, http.StatusOK)
}
