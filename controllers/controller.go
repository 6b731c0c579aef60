package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"detailpro-backend/cache"
	"detailpro-backend/config"
	"detailpro-backend/pricing"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cached list entities. A write to one of them drops every cached list of
// that entity for the user.
const (
	entityClients        = "clients"
	entityVehicles       = "vehicles"
	entityProducts       = "products"
	entityServices       = "services"
	entityPaymentMethods = "payment_methods"
	entityAccounts       = "accounts"
)

// Controller holds what the handlers share. Every handler scopes its queries
// by the authenticated user.
type Controller struct {
	db        *gorm.DB
	cache     cache.Store
	log       *zap.Logger
	jwt       config.JWTConfig
	quotes    *services.QuoteService
	ledger    *services.LedgerService
	reports   *services.ReportService
	reminders *services.ReminderService
}

// New wires the services the handlers use. reminders may be nil when no
// message provider is configured.
func New(db *gorm.DB, store cache.Store, log *zap.Logger, jwt config.JWTConfig, reminders *services.ReminderService) (*Controller, error) {
	reports, err := services.NewReportService(db)
	if err != nil {
		return nil, err
	}
	if store == nil {
		store = cache.Nop{}
	}
	return &Controller{
		db:        db,
		cache:     store,
		log:       log,
		jwt:       jwt,
		quotes:    services.NewQuoteService(db),
		ledger:    services.NewLedgerService(db, log),
		reports:   reports,
		reminders: reminders,
	}, nil
}

// Ledger exposes the ledger service to the job scheduler.
func (ctl *Controller) Ledger() *services.LedgerService {
	return ctl.ledger
}

// dbCtx binds the database to the request so a cancelled request stops its
// queries.
func (ctl *Controller) dbCtx(c *gin.Context) *gorm.DB {
	return ctl.db.WithContext(c.Request.Context())
}

func (ctl *Controller) invalidate(ctx context.Context, userID uuid.UUID, entities ...string) {
	if err := ctl.cache.Invalidate(ctx, userID, entities...); err != nil {
		ctl.log.Warn("Cache invalidation failed", zap.Strings("entities", entities), zap.Error(err))
	}
}

// dbError answers 404 for a missing record and 500 for anything else.
func (ctl *Controller) dbError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, notFoundMsg)
		return
	}
	ctl.log.Error("Database error", zap.String("path", c.FullPath()), zap.Error(err))
	utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
}

// serviceError maps the service layer errors to HTTP answers.
func (ctl *Controller) serviceError(c *gin.Context, err error) {
	var verrs pricing.ValidationErrors
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, capitalize(err.Error()))
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondWithError(c, http.StatusConflict, capitalize(strings.TrimPrefix(err.Error(), services.ErrInvalidState.Error()+": ")))
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": "))
	case errors.As(err, &verrs):
		utils.RespondWithValidation(c, verrs)
	default:
		ctl.log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
