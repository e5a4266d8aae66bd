// internal/handlers/prospect.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arflow/pipeline-backend/internal/pipeline"
	"github.com/arflow/pipeline-backend/internal/services"
	"github.com/arflow/pipeline-backend/internal/utils"
)

type ProspectHandler struct {
	prospectService *services.ProspectService
}

func NewProspectHandler(prospectService *services.ProspectService) *ProspectHandler {
	return &ProspectHandler{prospectService: prospectService}
}

// POST /prospects
func (h *ProspectHandler) CreateProspect(c *gin.Context) {
	var req services.CreateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	prospect, err := h.prospectService.Create(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"prospect": prospect})
}

// GET /prospects
func (h *ProspectHandler) GetProspects(c *gin.Context) {
	prospects, err := h.prospectService.List(c.Query("status"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"prospects": prospects,
		"count":     len(prospects),
	})
}

// GET /prospects/:id
func (h *ProspectHandler) GetProspect(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prospect ID", nil)
		return
	}

	prospect, err := h.prospectService.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"prospect": prospect})
}

type bulkImportRequest struct {
	Prospects []services.CreateProspectRequest `json:"prospects"`
}

// POST /prospects/bulk-import
func (h *ProspectHandler) BulkImport(c *gin.Context) {
	var req bulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.prospectService.BulkImport(req.Prospects)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if len(result.ValidationErrors) > 0 {
		utils.ValidationErrorResponse(c, result)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /prospects/bulk-delete
func (h *ProspectHandler) BulkDelete(c *gin.Context) {
	var req services.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.prospectService.BulkDelete(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /prospects/bulk-delete/preview
func (h *ProspectHandler) BulkDeletePreview(c *gin.Context) {
	preview, err := h.prospectService.DeletePreview()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, preview)
}

// handleServiceError maps service failures onto the response envelope:
// validation rejections become 400s with field details, missing entities
// become 404s, everything else is a server fault.
func handleServiceError(c *gin.Context, err error) {
	var vErr *pipeline.ValidationError
	if errors.As(err, &vErr) {
		utils.BadRequestResponse(c, vErr.Message, gin.H{"field": vErr.Field})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "")
	case errors.Is(err, services.ErrNoOpenApplication):
		utils.BadRequestResponse(c, "No open application found for this prospect", nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
