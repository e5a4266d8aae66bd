// internal/handlers/conversation.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arflow/pipeline-backend/internal/services"
	"github.com/arflow/pipeline-backend/internal/utils"
)

type ConversationHandler struct {
	conversationService *services.ConversationService
}

func NewConversationHandler(conversationService *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// GET /conversations
func (h *ConversationHandler) GetConversations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	conversations, err := h.conversationService.List(limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// POST /webhooks/conversation-update
//
// Receives conversation events from the AI outreach workflow: new messages,
// score updates, and qualification flips.
func (h *ConversationHandler) ConversationUpdate(c *gin.Context) {
	var req services.ConversationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if req.ConversationID == nil && req.ProspectID == nil {
		utils.BadRequestResponse(c, "conversation_id or prospect_id is required", nil)
		return
	}

	result, err := h.conversationService.Update(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

type startOutreachRequest struct {
	CampaignType string `json:"campaign_type,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// POST /webhooks/start-outreach
func (h *ConversationHandler) StartOutreach(c *gin.Context) {
	var req startOutreachRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.conversationService.StartOutreach(req.CampaignType, req.Timestamp)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}
