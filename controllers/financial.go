package controllers

import (
	"net/http"
	"strings"
	"time"

	"detailpro-backend/cache"
	"detailpro-backend/models"
	"detailpro-backend/pricing"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateAccountInput struct {
	Name           string          `json:"name" binding:"required"`
	Type           string          `json:"type" binding:"required,oneof=bank cash"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Color          string          `json:"color" binding:"omitempty,max=9"`
	BankCode       string          `json:"bankCode" binding:"omitempty,max=10"`
}

// UpdateAccountInput never touches the balance. Balances only move through
// transactions.
type UpdateAccountInput struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Type     *string `json:"type" binding:"omitempty,oneof=bank cash"`
	Color    *string `json:"color" binding:"omitempty,max=9"`
	BankCode *string `json:"bankCode" binding:"omitempty,max=10"`
}

type TransactionRequest struct {
	AccountID    *uuid.UUID      `json:"accountId"`
	Type         string          `json:"type" binding:"required,oneof=credit debit"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Counterparty string          `json:"counterparty"`
	Date         string          `json:"date"`
}

func (r TransactionRequest) toLedger() (services.TransactionInput, error) {
	date, err := utils.ParseDate(strings.TrimSpace(r.Date), time.Now())
	if err != nil {
		return services.TransactionInput{}, pricing.ValidationErrors{"date": "must be YYYY-MM-DD"}
	}
	return services.TransactionInput{
		AccountID:    r.AccountID,
		Type:         r.Type,
		Amount:       r.Amount.Round(2),
		Description:  strings.TrimSpace(r.Description),
		Category:     strings.TrimSpace(r.Category),
		Counterparty: strings.TrimSpace(r.Counterparty),
		Date:         date,
	}, nil
}

type PlannedItemInput struct {
	AccountID    *uuid.UUID      `json:"accountId"`
	Type         string          `json:"type" binding:"required,oneof=payable receivable"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Counterparty string          `json:"counterparty"`
	DueDate      string          `json:"dueDate" binding:"required"`
}

type RealizeInput struct {
	AccountID *uuid.UUID `json:"accountId"`
	Date      string     `json:"date"`
}

// dateRange applies the from and to query values to column.
func dateRange(c *gin.Context, q *gorm.DB, column string) (*gorm.DB, bool) {
	if raw := c.Query("from"); raw != "" {
		from, err := utils.ParseDate(raw, time.Time{})
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, use YYYY-MM-DD")
			return nil, false
		}
		q = q.Where(column+" >= ?", utils.BeginningOfDay(from))
	}
	if raw := c.Query("to"); raw != "" {
		to, err := utils.ParseDate(raw, time.Time{})
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, use YYYY-MM-DD")
			return nil, false
		}
		q = q.Where(column+" <= ?", utils.EndOfDay(to))
	}
	return q, true
}

func (ctl *Controller) CreateAccount(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input CreateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	account := models.FinancialAccount{
		UserID:   userID,
		Name:     strings.TrimSpace(input.Name),
		Type:     input.Type,
		Balance:  input.InitialBalance.Round(2),
		Color:    input.Color,
		BankCode: input.BankCode,
	}
	if err := ctl.dbCtx(c).Create(&account).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusCreated, account)
}

func (ctl *Controller) GetAccounts(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	key := cache.ListKey(entityAccounts, userID, nil)
	accounts, err := cache.Remember(c.Request.Context(), ctl.cache, key, func() ([]models.FinancialAccount, error) {
		var accounts []models.FinancialAccount
		err := ctl.dbCtx(c).Where("user_id = ?", userID).Order("name").Find(&accounts).Error
		return accounts, err
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts":     accounts,
		"totalBalance": total,
	})
}

func (ctl *Controller) GetAccount(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "account")
	if !ok {
		return
	}

	var account models.FinancialAccount
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&account).Error; err != nil {
		ctl.dbError(c, err, "Account not found")
		return
	}

	c.JSON(http.StatusOK, account)
}

func (ctl *Controller) UpdateAccount(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "account")
	if !ok {
		return
	}

	var input UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var account models.FinancialAccount
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&account).Error; err != nil {
		ctl.dbError(c, err, "Account not found")
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		updates["type"] = *input.Type
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.BankCode != nil {
		updates["bank_code"] = *input.BankCode
	}
	if len(updates) > 0 {
		if err := ctl.dbCtx(c).Model(&account).Updates(updates).Error; err != nil {
			ctl.dbError(c, err, "")
			return
		}
		if err := ctl.dbCtx(c).First(&account, "id = ?", account.ID).Error; err != nil {
			ctl.dbError(c, err, "Account not found")
			return
		}
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusOK, account)
}

// DeleteAccount refuses accounts that still carry transactions.
func (ctl *Controller) DeleteAccount(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "account")
	if !ok {
		return
	}

	var account models.FinancialAccount
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&account).Error; err != nil {
		ctl.dbError(c, err, "Account not found")
		return
	}

	var used int64
	if err := ctl.dbCtx(c).Model(&models.FinancialTransaction{}).Where("account_id = ?", account.ID).Count(&used).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}
	if used > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Account has transactions")
		return
	}

	err := ctl.dbCtx(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PlannedItem{}).Where("account_id = ?", account.ID).Update("account_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&account).Error
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func (ctl *Controller) CreateTransaction(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	in, err := req.toLedger()
	if err != nil {
		utils.RespondWithValidation(c, err)
		return
	}

	t, err := ctl.ledger.CreateTransaction(c.Request.Context(), userID, in)
	if err != nil {
		ctl.serviceError(c, err)
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusCreated, t)
}

// GetTransactions filters by account_id, type, category and a from/to date
// range.
func (ctl *Controller) GetTransactions(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	q := ctl.dbCtx(c).Model(&models.FinancialTransaction{}).Where("user_id = ?", userID)
	if raw := c.Query("account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid account ID format")
			return
		}
		q = q.Where("account_id = ?", accountID)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		q = q.Where("category = ?", category)
	}
	q, ok = dateRange(c, q, "date")
	if !ok {
		return
	}

	var transactions []models.FinancialTransaction
	if err := q.Order("date DESC, created_at DESC").Find(&transactions).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, transactions)
}

func (ctl *Controller) GetTransaction(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "transaction")
	if !ok {
		return
	}

	var t models.FinancialTransaction
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&t).Error; err != nil {
		ctl.dbError(c, err, "Transaction not found")
		return
	}

	c.JSON(http.StatusOK, t)
}

func (ctl *Controller) UpdateTransaction(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "transaction")
	if !ok {
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	in, err := req.toLedger()
	if err != nil {
		utils.RespondWithValidation(c, err)
		return
	}

	t, err := ctl.ledger.UpdateTransaction(c.Request.Context(), userID, id, in)
	if err != nil {
		ctl.serviceError(c, err)
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusOK, t)
}

func (ctl *Controller) DeleteTransaction(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "transaction")
	if !ok {
		return
	}

	if err := ctl.ledger.DeleteTransaction(c.Request.Context(), userID, id); err != nil {
		ctl.serviceError(c, err)
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

func (in PlannedItemInput) apply(item *models.PlannedItem, now time.Time) error {
	due, err := utils.ParseDate(strings.TrimSpace(in.DueDate), time.Time{})
	if err != nil {
		return pricing.ValidationErrors{"dueDate": "must be YYYY-MM-DD"}
	}
	if !in.Amount.IsPositive() {
		return pricing.ValidationErrors{"amount": "must be greater than zero"}
	}
	item.AccountID = in.AccountID
	item.Type = in.Type
	item.Amount = in.Amount.Round(2)
	item.Description = strings.TrimSpace(in.Description)
	item.Category = strings.TrimSpace(in.Category)
	item.Counterparty = strings.TrimSpace(in.Counterparty)
	item.DueDate = due
	item.Status = item.OpenStatus(now)
	return nil
}

// accountOwned reports whether the optional account belongs to the user.
func (ctl *Controller) accountOwned(c *gin.Context, userID uuid.UUID, accountID *uuid.UUID) (bool, error) {
	if accountID == nil {
		return true, nil
	}
	var count int64
	err := ctl.dbCtx(c).Model(&models.FinancialAccount{}).Where("id = ? AND user_id = ?", *accountID, userID).Count(&count).Error
	return count > 0, err
}

func (ctl *Controller) CreatePlannedItem(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input PlannedItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item := models.PlannedItem{UserID: userID}
	if err := input.apply(&item, time.Now()); err != nil {
		utils.RespondWithValidation(c, err)
		return
	}
	owned, err := ctl.accountOwned(c, userID, item.AccountID)
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}
	if !owned {
		utils.RespondWithError(c, http.StatusNotFound, "Account not found")
		return
	}

	if err := ctl.dbCtx(c).Create(&item).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetPlannedItems filters by status, type and a from/to due date range.
func (ctl *Controller) GetPlannedItems(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	q := ctl.dbCtx(c).Model(&models.PlannedItem{}).Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	q, ok = dateRange(c, q, "due_date")
	if !ok {
		return
	}

	var items []models.PlannedItem
	if err := q.Order("due_date").Find(&items).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, items)
}

func (ctl *Controller) GetPlannedItem(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "planned item")
	if !ok {
		return
	}

	var item models.PlannedItem
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&item).Error; err != nil {
		ctl.dbError(c, err, "Planned item not found")
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdatePlannedItem edits an item that has not been realized yet.
func (ctl *Controller) UpdatePlannedItem(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "planned item")
	if !ok {
		return
	}

	var input PlannedItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var item models.PlannedItem
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&item).Error; err != nil {
		ctl.dbError(c, err, "Planned item not found")
		return
	}
	if item.Status == models.PlannedStatusRealized {
		utils.RespondWithError(c, http.StatusConflict, "Planned item already realized")
		return
	}
	if err := input.apply(&item, time.Now()); err != nil {
		utils.RespondWithValidation(c, err)
		return
	}
	owned, err := ctl.accountOwned(c, userID, item.AccountID)
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}
	if !owned {
		utils.RespondWithError(c, http.StatusNotFound, "Account not found")
		return
	}

	if err := ctl.dbCtx(c).Save(&item).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, item)
}

func (ctl *Controller) DeletePlannedItem(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "planned item")
	if !ok {
		return
	}

	var item models.PlannedItem
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&item).Error; err != nil {
		ctl.dbError(c, err, "Planned item not found")
		return
	}
	if item.Status == models.PlannedStatusRealized {
		utils.RespondWithError(c, http.StatusConflict, "Delete the transaction of a realized item first")
		return
	}

	if err := ctl.dbCtx(c).Delete(&item).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Planned item deleted successfully"})
}

// RealizePlannedItem books the item as a transaction. The account in the body
// wins over the one planned.
func (ctl *Controller) RealizePlannedItem(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "planned item")
	if !ok {
		return
	}

	var input RealizeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	date, err := utils.ParseDate(strings.TrimSpace(input.Date), time.Now())
	if err != nil {
		utils.RespondWithValidation(c, pricing.ValidationErrors{"date": "must be YYYY-MM-DD"})
		return
	}

	item, err := ctl.ledger.RealizePlannedItem(c.Request.Context(), userID, id, input.AccountID, date)
	if err != nil {
		ctl.serviceError(c, err)
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusOK, item)
}
