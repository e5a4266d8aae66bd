// internal/handlers/analytics.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arflow/pipeline-backend/internal/services"
	"github.com/arflow/pipeline-backend/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	activityService  *services.ActivityService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService, activityService *services.ActivityService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		activityService:  activityService,
	}
}

// GET /analytics/dashboard
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /activity
func (h *AnalyticsHandler) GetActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.activityService.Recent(limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"activity": entries,
		"count":    len(entries),
	})
}
