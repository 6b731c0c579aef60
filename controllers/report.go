package controllers

import (
	"net/http"
	"time"

	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetReportAnalytics returns revenue growth per month, quarter and year along
// with the best services and clients of the month.
func (ctl *Controller) GetReportAnalytics(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	summary, err := ctl.reports.Analytics(c.Request.Context(), userID, time.Now())
	if err != nil {
		ctl.log.Error("Failed to build analytics", zap.String("user_id", userID.String()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build analytics")
		return
	}

	c.JSON(http.StatusOK, summary)
}
