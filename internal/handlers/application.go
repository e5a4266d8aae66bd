// internal/handlers/application.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arflow/pipeline-backend/internal/models"
	"github.com/arflow/pipeline-backend/internal/services"
	"github.com/arflow/pipeline-backend/internal/utils"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	storageService     *services.StorageService
}

func NewApplicationHandler(applicationService *services.ApplicationService, storageService *services.StorageService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		storageService:     storageService,
	}
}

// GET /applications
func (h *ApplicationHandler) GetApplications(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	applications, total, err := h.applicationService.List(c.Query("status"), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(applications, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /webhooks/application-completed
//
// Receives the finished voice application from the automation workflow and
// upserts the prospect's open application.
func (h *ApplicationHandler) ApplicationCompleted(c *gin.Context) {
	var req services.ApplicationCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.applicationService.Complete(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /webhooks/arf-submission
func (h *ApplicationHandler) ARFSubmission(c *gin.Context) {
	var req services.ARFSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if req.ApplicationID == nil && req.ProspectID == nil {
		utils.BadRequestResponse(c, "application_id or prospect_id is required", nil)
		return
	}

	result, err := h.applicationService.SubmitToARF(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// PUT /webhooks/arf-status-update
func (h *ApplicationHandler) ARFStatusUpdate(c *gin.Context) {
	var req services.ARFStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if req.Status == "" {
		utils.BadRequestResponse(c, "status is required", nil)
		return
	}
	if req.ApplicationID == nil && req.ARFReferenceNumber == "" {
		utils.BadRequestResponse(c, "application_id or arf_reference_number is required", nil)
		return
	}

	result, err := h.applicationService.UpdateARFStatus(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /applications/:id/documents
//
// Lists stored documents with short-lived download links when S3 is
// configured.
func (h *ApplicationHandler) GetDocuments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	app, err := h.applicationService.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	stored, _ := app.ApplicationData["documents"].([]interface{})
	documents := make([]gin.H, 0, len(stored))
	for _, d := range stored {
		doc, ok := d.(map[string]interface{})
		if !ok {
			continue
		}

		entry := gin.H{
			"filename":  doc["filename"],
			"size":      doc["size"],
			"mime_type": doc["mime_type"],
		}
		if key, ok := doc["key"].(string); ok {
			if url, err := h.storageService.GeneratePresignedURL(key, 15*time.Minute); err == nil {
				entry["download_url"] = url
			}
		}
		documents = append(documents, entry)
	}

	utils.SuccessResponse(c, gin.H{
		"documents": documents,
		"count":     len(documents),
	})
}

// POST /applications/:id/documents
func (h *ApplicationHandler) UploadDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("document")
	if err != nil {
		utils.BadRequestResponse(c, "document file is required", err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadDocument(file, header, id)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	if err := h.applicationService.MarkDocumentsUploaded(id, models.JSONB{
		"key":       result.Key,
		"url":       result.URL,
		"filename":  result.Filename,
		"size":      result.Size,
		"mime_type": result.MimeType,
	}); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"document": result})
}
