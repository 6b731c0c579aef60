package controllers

import (
	"net/http"
	"time"

	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (ctl *Controller) GetDashboardOverview(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return
	}

	overview, err := ctl.reports.Dashboard(c.Request.Context(), userID, time.Now())
	if err != nil {
		ctl.log.Error("Failed to build dashboard", zap.String("user_id", userID.String()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, overview)
}
