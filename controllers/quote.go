package controllers

import (
	"net/http"
	"strings"
	"time"

	"detailpro-backend/models"
	"detailpro-backend/pricing"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type QuoteStatusInput struct {
	Status string `json:"status" binding:"required,oneof=pending accepted rejected"`
}

// CloseQuoteInput names the account credited by the sale. Without an account
// the sale is closed outside the ledger.
type CloseQuoteInput struct {
	AccountID *uuid.UUID `json:"accountId"`
	Date      string     `json:"date"`
}

func (in CloseQuoteInput) toLedger() (services.CloseSaleInput, error) {
	date, err := utils.ParseDate(strings.TrimSpace(in.Date), time.Now())
	if err != nil {
		return services.CloseSaleInput{}, pricing.ValidationErrors{"date": "must be YYYY-MM-DD"}
	}
	return services.CloseSaleInput{AccountID: in.AccountID, Date: date}, nil
}

// SaleInput is the quick sale form: a quote that is closed as it is stored.
type SaleInput struct {
	services.QuoteDraft
	AccountID *uuid.UUID `json:"accountId"`
	Date      string     `json:"date"`
}

type ScheduleInput struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time"`
}

func (ctl *Controller) loadQuote(c *gin.Context, userID, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := ctl.dbCtx(c).
		Preload("Client").Preload("Vehicle").Preload("PaymentMethod").
		Where("user_id = ? AND id = ?", userID, id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CalculateQuote prices a draft without saving it.
func (ctl *Controller) CalculateQuote(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var draft services.QuoteDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	res, err := ctl.quotes.Calculate(c.Request.Context(), userID, draft)
	if err != nil {
		ctl.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (ctl *Controller) CreateQuote(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var draft services.QuoteDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	quote, _, err := ctl.quotes.Build(c.Request.Context(), userID, draft)
	if err != nil {
		ctl.serviceError(c, err)
		return
	}
	if err := ctl.dbCtx(c).Omit(clause.Associations).Create(quote).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// CreateSale records a quick sale and credits the chosen account.
func (ctl *Controller) CreateSale(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input SaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	closing, err := CloseQuoteInput{AccountID: input.AccountID, Date: input.Date}.toLedger()
	if err != nil {
		utils.RespondWithValidation(c, err)
		return
	}

	quote, _, err := ctl.quotes.Build(c.Request.Context(), userID, input.QuoteDraft)
	if err != nil {
		ctl.serviceError(c, err)
		return
	}
	if err := ctl.ledger.RecordSale(c.Request.Context(), quote, closing); err != nil {
		ctl.serviceError(c, err)
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusCreated, quote)
}

func (ctl *Controller) GetQuotes(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	q := ctl.dbCtx(c).Model(&models.Quote{}).
		Select("quotes.*").
		Joins("LEFT JOIN clients ON clients.id = quotes.client_id AND clients.deleted_at IS NULL").
		Preload("Client").Preload("Vehicle").Preload("PaymentMethod").
		Where("quotes.user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		if !models.ValidQuoteStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status")
			return
		}
		q = q.Where("quotes.status = ?", status)
	}
	dateColumn := "quotes.created_at"
	switch c.Query("is_sale") {
	case "true":
		q = q.Where("quotes.is_sale = ?", true)
		dateColumn = "quotes.closed_at"
	case "false":
		q = q.Where("quotes.is_sale = ?", false)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(clients.name) LIKE ? OR LOWER(quotes.manual_client_name) LIKE ?", like, like)
	}

	if raw := c.Query("from"); raw != "" {
		from, err := utils.ParseDate(raw, time.Time{})
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, use YYYY-MM-DD")
			return
		}
		q = q.Where(dateColumn+" >= ?", utils.BeginningOfDay(from))
	}
	if raw := c.Query("to"); raw != "" {
		to, err := utils.ParseDate(raw, time.Time{})
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, use YYYY-MM-DD")
			return
		}
		q = q.Where(dateColumn+" <= ?", utils.EndOfDay(to))
	}

	var quotes []models.Quote
	if err := q.Order(dateColumn + " DESC").Find(&quotes).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, quotes)
}

func (ctl *Controller) GetQuote(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "quote")
	if !ok {
		return
	}

	quote, err := ctl.loadQuote(c, userID, id)
	if err != nil {
		ctl.dbError(c, err, "Quote not found")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// UpdateQuote recalculates an open quote from a new draft. Closed sales are
// fixed since they already reached the ledger.
func (ctl *Controller) UpdateQuote(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "quote")
	if !ok {
		return
	}

	var draft services.QuoteDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existing models.Quote
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&existing).Error; err != nil {
		ctl.dbError(c, err, "Quote not found")
		return
	}
	if existing.Status == models.QuoteStatusClosed {
		utils.RespondWithError(c, http.StatusConflict, "Closed sales cannot be edited")
		return
	}

	quote, _, err := ctl.quotes.Build(c.Request.Context(), userID, draft)
	if err != nil {
		ctl.serviceError(c, err)
		return
	}
	quote.ID = existing.ID
	quote.CreatedAt = existing.CreatedAt
	quote.Status = existing.Status

	if err := ctl.dbCtx(c).Omit(clause.Associations).Save(quote).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// DeleteQuote also undoes the ledger entries of a closed sale.
func (ctl *Controller) DeleteQuote(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "quote")
	if !ok {
		return
	}

	if err := ctl.ledger.DeleteQuote(c.Request.Context(), userID, id); err != nil {
		ctl.serviceError(c, err)
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusOK, gin.H{"message": "Quote deleted successfully"})
}

func (ctl *Controller) UpdateQuoteStatus(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "quote")
	if !ok {
		return
	}

	var input QuoteStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	quote, err := ctl.loadQuote(c, userID, id)
	if err != nil {
		ctl.dbError(c, err, "Quote not found")
		return
	}
	if quote.Status == models.QuoteStatusClosed {
		utils.RespondWithError(c, http.StatusConflict, "Quote already closed")
		return
	}

	quote.Status = input.Status
	if err := ctl.dbCtx(c).Model(quote).Update("status", input.Status).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// CloseQuote turns the quote into a sale.
func (ctl *Controller) CloseQuote(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "quote")
	if !ok {
		return
	}

	var input CloseQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	closing, err := input.toLedger()
	if err != nil {
		utils.RespondWithValidation(c, err)
		return
	}

	quote, err := ctl.ledger.CloseSale(c.Request.Context(), userID, id, closing)
	if err != nil {
		ctl.serviceError(c, err)
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityAccounts)
	c.JSON(http.StatusOK, quote)
}

// MarkNotRealized rejects a scheduled quote and frees its agenda slot.
func (ctl *Controller) MarkNotRealized(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "quote")
	if !ok {
		return
	}

	quote, err := ctl.loadQuote(c, userID, id)
	if err != nil {
		ctl.dbError(c, err, "Quote not found")
		return
	}
	if quote.Status == models.QuoteStatusClosed {
		utils.RespondWithError(c, http.StatusConflict, "Quote already closed")
		return
	}

	quote.Status = models.QuoteStatusRejected
	quote.ScheduledDate = nil
	quote.ScheduledTime = ""
	err = ctl.dbCtx(c).Model(quote).
		Select("status", "scheduled_date", "scheduled_time").
		Updates(quote).Error
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// ScheduleQuote books the quote on the agenda.
func (ctl *Controller) ScheduleQuote(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "quote")
	if !ok {
		return
	}

	var input ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	date, err := utils.ParseDate(strings.TrimSpace(input.Date), time.Time{})
	if err != nil {
		utils.RespondWithValidation(c, pricing.ValidationErrors{"date": "must be YYYY-MM-DD"})
		return
	}
	clock := strings.TrimSpace(input.Time)
	if clock != "" && pricing.ParseHHMMToMinutes(clock) == 0 && clock != "00:00" {
		utils.RespondWithValidation(c, pricing.ValidationErrors{"time": "must be HH:MM"})
		return
	}

	quote, err := ctl.loadQuote(c, userID, id)
	if err != nil {
		ctl.dbError(c, err, "Quote not found")
		return
	}
	if quote.Status == models.QuoteStatusRejected {
		utils.RespondWithError(c, http.StatusConflict, "Rejected quotes cannot be scheduled")
		return
	}

	quote.ScheduledDate = &date
	quote.ScheduledTime = clock
	err = ctl.dbCtx(c).Model(quote).Select("scheduled_date", "scheduled_time").Updates(quote).Error
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetAgenda lists the scheduled quotes between from and to, this week by
// default. Rejected quotes are left out.
func (ctl *Controller) GetAgenda(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	today := utils.BeginningOfDay(time.Now())
	from, err := utils.ParseDate(c.Query("from"), today)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, use YYYY-MM-DD")
		return
	}
	to, err := utils.ParseDate(c.Query("to"), from.AddDate(0, 0, 6))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, use YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		utils.RespondWithError(c, http.StatusBadRequest, "to must not be before from")
		return
	}

	var quotes []models.Quote
	err = ctl.dbCtx(c).Preload("Client").Preload("Vehicle").
		Where("user_id = ? AND status <> ?", userID, models.QuoteStatusRejected).
		Where("scheduled_date BETWEEN ? AND ?", utils.BeginningOfDay(from), utils.EndOfDay(to)).
		Order("scheduled_date, scheduled_time").
		Find(&quotes).Error
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, quotes)
}
