// internal/handlers/discovery.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/arflow/pipeline-backend/internal/services"
	"github.com/arflow/pipeline-backend/internal/utils"
)

type DiscoveryHandler struct {
	discoveryService *services.DiscoveryService
}

func NewDiscoveryHandler(discoveryService *services.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{discoveryService: discoveryService}
}

// POST /discovery/trigger
func (h *DiscoveryHandler) Trigger(c *gin.Context) {
	var req services.DiscoveryTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.discoveryService.Trigger(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /discovery/trigger
func (h *DiscoveryHandler) History(c *gin.Context) {
	entries, err := h.discoveryService.History()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"triggers": entries,
		"count":    len(entries),
	})
}
