package controllers

import (
	"net/http"
	"strings"

	"detailpro-backend/cache"
	"detailpro-backend/models"
	"detailpro-backend/pricing"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreatePaymentMethodInput struct {
	Name     string  `json:"name" binding:"required"`
	Type     string  `json:"type" binding:"required,oneof=cash pix credit_card debit_card"`
	Rate     float64 `json:"rate" binding:"gte=0,lte=100"`
	IsActive *bool   `json:"isActive"`
	// InstallmentRates seeds the credit card table, keyed by installment count.
	InstallmentRates map[int]float64 `json:"installmentRates"`
}

type UpdatePaymentMethodInput struct {
	Name     *string  `json:"name" binding:"omitempty,min=1"`
	Type     *string  `json:"type" binding:"omitempty,oneof=cash pix credit_card debit_card"`
	Rate     *float64 `json:"rate" binding:"omitempty,gte=0,lte=100"`
	IsActive *bool    `json:"isActive"`
}

type InstallmentRateInput struct {
	Installments int     `json:"installments" binding:"required,min=1,max=12"`
	Rate         float64 `json:"rate" binding:"gte=0,lte=100"`
}

type UpdateInstallmentsInput struct {
	Rates []InstallmentRateInput `json:"rates" binding:"required,min=1,dive"`
}

func loadPaymentMethod(db *gorm.DB, method *models.PaymentMethod) error {
	return db.Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("installments") }).
		First(method, "id = ?", method.ID).Error
}

// CreatePaymentMethod stores a method. Credit cards get their 1x to 12x rate
// table created along with it.
func (ctl *Controller) CreatePaymentMethod(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input CreatePaymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	for n, rate := range input.InstallmentRates {
		if n < 1 || n > models.MaxInstallments || rate < 0 || rate > 100 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: installment rates must be 1 to 12 with a rate between 0 and 100")
			return
		}
	}

	method := models.PaymentMethod{
		UserID:   userID,
		Name:     strings.TrimSpace(input.Name),
		Type:     input.Type,
		Rate:     input.Rate,
		IsActive: input.IsActive == nil || *input.IsActive,
	}
	if method.Type == pricing.PaymentTypeCreditCard {
		method.Installments = models.DefaultInstallments(input.Rate, input.InstallmentRates)
	}

	if err := ctl.dbCtx(c).Create(&method).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}
	if err := loadPaymentMethod(ctl.dbCtx(c), &method); err != nil {
		ctl.dbError(c, err, "Payment method not found")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityPaymentMethods)
	c.JSON(http.StatusCreated, method)
}

func (ctl *Controller) GetPaymentMethods(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	activeOnly := c.Query("active") == "true"

	key := cache.ListKey(entityPaymentMethods, userID, gin.H{"active": activeOnly})
	methods, err := cache.Remember(c.Request.Context(), ctl.cache, key, func() ([]models.PaymentMethod, error) {
		var methods []models.PaymentMethod
		q := ctl.dbCtx(c).Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("installments") }).
			Where("user_id = ?", userID)
		if activeOnly {
			q = q.Where("is_active = ?", true)
		}
		err := q.Order("name").Find(&methods).Error
		return methods, err
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, methods)
}

func (ctl *Controller) GetPaymentMethod(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "payment method")
	if !ok {
		return
	}

	var method models.PaymentMethod
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&method).Error; err != nil {
		ctl.dbError(c, err, "Payment method not found")
		return
	}
	if err := loadPaymentMethod(ctl.dbCtx(c), &method); err != nil {
		ctl.dbError(c, err, "Payment method not found")
		return
	}

	c.JSON(http.StatusOK, method)
}

// UpdatePaymentMethod keeps the installment table in step with the type: a
// method turned into a credit card gets the default table, and one that stops
// being a credit card loses it.
func (ctl *Controller) UpdatePaymentMethod(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "payment method")
	if !ok {
		return
	}

	var input UpdatePaymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var method models.PaymentMethod
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&method).Error; err != nil {
		ctl.dbError(c, err, "Payment method not found")
		return
	}
	wasCredit := method.Type == pricing.PaymentTypeCreditCard

	if input.Name != nil {
		method.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		method.Type = *input.Type
	}
	if input.Rate != nil {
		method.Rate = *input.Rate
	}
	if input.IsActive != nil {
		method.IsActive = *input.IsActive
	}
	isCredit := method.Type == pricing.PaymentTypeCreditCard

	err := ctl.dbCtx(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Installments").Save(&method).Error; err != nil {
			return err
		}
		switch {
		case isCredit && !wasCredit:
			rows := models.DefaultInstallments(method.Rate, nil)
			for i := range rows {
				rows[i].PaymentMethodID = method.ID
			}
			return tx.Create(&rows).Error
		case wasCredit && !isCredit:
			return tx.Where("payment_method_id = ?", method.ID).Delete(&models.PaymentMethodInstallment{}).Error
		}
		return nil
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}
	if err := loadPaymentMethod(ctl.dbCtx(c), &method); err != nil {
		ctl.dbError(c, err, "Payment method not found")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityPaymentMethods)
	c.JSON(http.StatusOK, method)
}

// UpdateInstallments sets the fee rate of individual installment counts.
func (ctl *Controller) UpdateInstallments(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "payment method")
	if !ok {
		return
	}

	var input UpdateInstallmentsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var method models.PaymentMethod
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&method).Error; err != nil {
		ctl.dbError(c, err, "Payment method not found")
		return
	}
	if method.Type != pricing.PaymentTypeCreditCard {
		utils.RespondWithError(c, http.StatusConflict, "Only credit card methods have installments")
		return
	}

	err := ctl.dbCtx(c).Transaction(func(tx *gorm.DB) error {
		for _, r := range input.Rates {
			res := tx.Model(&models.PaymentMethodInstallment{}).
				Where("payment_method_id = ? AND installments = ?", method.ID, r.Installments).
				Update("rate", r.Rate)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				row := models.PaymentMethodInstallment{PaymentMethodID: method.ID, Installments: r.Installments, Rate: r.Rate}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}
	if err := loadPaymentMethod(ctl.dbCtx(c), &method); err != nil {
		ctl.dbError(c, err, "Payment method not found")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityPaymentMethods)
	c.JSON(http.StatusOK, method)
}

func (ctl *Controller) DeletePaymentMethod(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "payment method")
	if !ok {
		return
	}

	var method models.PaymentMethod
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&method).Error; err != nil {
		ctl.dbError(c, err, "Payment method not found")
		return
	}

	err := ctl.dbCtx(c).Transaction(func(tx *gorm.DB) error {
		// Quotes keep their stored fee but lose the reference.
		if err := tx.Model(&models.Quote{}).Where("payment_method_id = ?", method.ID).Update("payment_method_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("payment_method_id = ?", method.ID).Delete(&models.PaymentMethodInstallment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&method).Error
	})
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	ctl.invalidate(c.Request.Context(), userID, entityPaymentMethods)
	c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted successfully"})
}
