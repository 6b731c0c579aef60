// controllers/reminder.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"detailpro-backend/models"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetReminderLogs lists the latest reminder attempts, newest first.
func (ctl *Controller) GetReminderLogs(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		utils.RespondWithError(c, http.StatusBadRequest, "limit must be between 1 and 200")
		return
	}

	q := ctl.dbCtx(c).Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var logs []models.ReminderLog
	if err := q.Order("sent_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, logs)
}

// SendReminders runs the reminder job for the current user right away,
// covering tomorrow's appointments.
func (ctl *Controller) SendReminders(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}
	if ctl.reminders == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Messaging is not configured")
		return
	}

	settings, err := services.LoadSettings(ctl.dbCtx(c), userID)
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	start := utils.BeginningOfDay(time.Now()).AddDate(0, 0, 1)
	sent, err := ctl.reminders.ProcessUserReminders(c.Request.Context(), settings, start, start.AddDate(0, 0, 1))
	if err != nil {
		ctl.dbError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
