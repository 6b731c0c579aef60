package controllers

import (
	"net/http"
	"strings"

	"detailpro-backend/models"
	"detailpro-backend/pricing"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateSettingsInput struct {
	CostCalculationMode   *string             `json:"costCalculationMode" binding:"omitempty,oneof=per_service monthly_average"`
	DefaultMarginPct      *float64            `json:"defaultMarginPct" binding:"omitempty,gte=0,lt=100"`
	WorkingHours          models.WorkingHours `json:"workingHours"`
	AppointmentReminders  *bool               `json:"appointmentReminders"`
	WhatsAppNotifications *bool               `json:"whatsAppNotifications"`
	SMSNotifications      *bool               `json:"smsNotifications"`
	ReminderMessage       *string             `json:"reminderMessage"`
}

type OperationalCostInput struct {
	Name  string  `json:"name" binding:"required"`
	Type  string  `json:"type" binding:"required,oneof=fixed variable"`
	Value float64 `json:"value" binding:"gte=0"`
}

// validateWorkingHours checks weekday names and that open days close after
// they open.
func validateWorkingHours(wh models.WorkingHours) error {
	errs := pricing.ValidationErrors{}
	known := make(map[string]bool, len(models.Weekdays))
	for _, d := range models.Weekdays {
		known[d] = true
	}
	for day, h := range wh {
		field := "workingHours." + day
		if !known[day] {
			errs[field] = "unknown weekday"
			continue
		}
		if h.Closed {
			continue
		}
		opens, closes := pricing.ParseHHMMToMinutes(h.Open), pricing.ParseHHMMToMinutes(h.Close)
		if closes <= opens {
			errs[field] = "close must be after open, both as HH:MM"
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (ctl *Controller) GetSettings(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	settings, err := services.LoadSettings(ctl.dbCtx(c), userID)
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings stores the settings, creating the row on first save. Working
// hours sent are merged day by day into the stored ones.
func (ctl *Controller) UpdateSettings(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if err := validateWorkingHours(input.WorkingHours); err != nil {
		utils.RespondWithValidation(c, err)
		return
	}

	settings, err := services.LoadSettings(ctl.dbCtx(c), userID)
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	if input.CostCalculationMode != nil {
		settings.CostCalculationMode = *input.CostCalculationMode
	}
	if input.DefaultMarginPct != nil {
		settings.DefaultMarginPct = *input.DefaultMarginPct
	}
	if len(input.WorkingHours) > 0 {
		merged := models.WorkingHours{}
		for day, h := range settings.WorkingHours {
			merged[day] = h
		}
		for day, h := range input.WorkingHours {
			merged[day] = h
		}
		settings.WorkingHours = merged
	}
	if input.AppointmentReminders != nil {
		settings.AppointmentReminders = *input.AppointmentReminders
	}
	if input.WhatsAppNotifications != nil {
		settings.WhatsAppNotifications = *input.WhatsAppNotifications
	}
	if input.SMSNotifications != nil {
		settings.SMSNotifications = *input.SMSNotifications
	}
	if input.ReminderMessage != nil {
		settings.ReminderMessage = strings.TrimSpace(*input.ReminderMessage)
	}

	if err := ctl.dbCtx(c).Save(&settings).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (ctl *Controller) GetOperationalCosts(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var costs []models.OperationalCost
	if err := ctl.dbCtx(c).Where("user_id = ?", userID).Order("type, name").Find(&costs).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, costs)
}

func (ctl *Controller) CreateOperationalCost(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	var input OperationalCostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	cost := models.OperationalCost{
		UserID: userID,
		Name:   strings.TrimSpace(input.Name),
		Type:   input.Type,
		Value:  input.Value,
	}
	if err := ctl.dbCtx(c).Create(&cost).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, cost)
}

func (ctl *Controller) UpdateOperationalCost(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "cost")
	if !ok {
		return
	}

	var input OperationalCostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var cost models.OperationalCost
	if err := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).First(&cost).Error; err != nil {
		ctl.dbError(c, err, "Cost not found")
		return
	}
	cost.Name = strings.TrimSpace(input.Name)
	cost.Type = input.Type
	cost.Value = input.Value

	if err := ctl.dbCtx(c).Save(&cost).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, cost)
}

func (ctl *Controller) DeleteOperationalCost(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "cost")
	if !ok {
		return
	}

	result := ctl.dbCtx(c).Where("user_id = ? AND id = ?", userID, id).Delete(&models.OperationalCost{})
	if result.Error != nil {
		ctl.dbError(c, result.Error, "")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Cost not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cost deleted successfully"})
}

// GetHourlyCost derives the labor cost per hour from the operational costs
// and the working hours.
func (ctl *Controller) GetHourlyCost(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	settings, err := services.LoadSettings(ctl.dbCtx(c), userID)
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}
	var stored []models.OperationalCost
	if err := ctl.dbCtx(c).Where("user_id = ?", userID).Find(&stored).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	costs := make([]pricing.OperationalCost, 0, len(stored))
	for _, s := range stored {
		costs = append(costs, s.ToPricing())
	}

	c.JSON(http.StatusOK, pricing.CalculateHourlyCost(costs, settings.Schedule()))
}
