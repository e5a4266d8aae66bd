// internal/services/conversation_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/arflow/pipeline-backend/internal/models"
	"github.com/arflow/pipeline-backend/internal/pipeline"
)

type ConversationService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewConversationService(db *gorm.DB, activity *ActivityService) *ConversationService {
	return &ConversationService{db: db, activity: activity}
}

// MessagePayload accepts either a {type, content} object or a bare string,
// which is how the automation workflows have historically sent messages.
type MessagePayload struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (m *MessagePayload) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		m.Content = plain
		return nil
	}

	type alias MessagePayload
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*m = MessagePayload(obj)
	return nil
}

type ConversationUpdateRequest struct {
	ConversationID     *uuid.UUID                 `json:"conversation_id,omitempty"`
	ProspectID         *uuid.UUID                 `json:"prospect_id,omitempty"`
	Message            *MessagePayload            `json:"message,omitempty"`
	QualificationScore *int                       `json:"qualification_score,omitempty"`
	Qualified          *bool                      `json:"qualified,omitempty"`
	Channel            models.ConversationChannel `json:"channel,omitempty"`
}

type ConversationUpdateResult struct {
	ConversationID     uuid.UUID `json:"conversation_id"`
	Qualified          *bool     `json:"qualified,omitempty"`
	QualificationScore *int      `json:"qualification_score,omitempty"`
	ProspectPromoted   bool      `json:"prospect_promoted"`
}

// Update applies one conversation event: find (or create, by prospect) the
// thread, append the message, update scoring, and propagate qualification to
// the owning prospect. Qualification never regresses a prospect that has
// already advanced further down the pipeline.
func (s *ConversationService) Update(req *ConversationUpdateRequest) (*ConversationUpdateResult, error) {
	conv, err := s.findOrCreate(req)
	if err != nil {
		return nil, err
	}

	var update pipeline.ConversationUpdate
	if req.Message != nil {
		update.Message = &models.Message{
			Type:    models.MessageDirection(req.Message.Type),
			Content: req.Message.Content,
		}
	}
	update.QualificationScore = req.QualificationScore
	update.Qualified = req.Qualified

	changes, err := pipeline.PlanConversationUpdate(conv, update, time.Now())
	if err != nil {
		return nil, err
	}

	columns := map[string]interface{}{"last_contact": changes.LastContact}
	if changes.Messages != nil {
		columns["messages"] = changes.Messages
	}
	if changes.QualificationScore != nil {
		columns["qualification_score"] = *changes.QualificationScore
	}
	if changes.Qualified != nil {
		columns["qualified"] = *changes.Qualified
	}

	if err := s.db.Model(&models.Conversation{}).
		Where("id = ?", conv.ID).Updates(columns).Error; err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	result := &ConversationUpdateResult{
		ConversationID:     conv.ID,
		Qualified:          req.Qualified,
		QualificationScore: req.QualificationScore,
	}

	if changes.PromoteProspect && conv.ProspectID != nil {
		promoted, err := s.advanceProspect(*conv.ProspectID, models.ProspectStatusQualified)
		if err != nil {
			return nil, err
		}
		result.ProspectPromoted = promoted

		if promoted {
			s.activity.Record(models.EntityTypeConversation, conv.ID, "prospect_qualified",
				"Prospect qualified through AI conversation",
				models.JSONB{
					"qualification_score": req.QualificationScore,
					"channel":             conv.Channel,
				})
		}
	}

	return result, nil
}

func (s *ConversationService) findOrCreate(req *ConversationUpdateRequest) (*models.Conversation, error) {
	if req.ConversationID != nil {
		var conv models.Conversation
		if err := s.db.First(&conv, "id = ?", *req.ConversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &conv, nil
	}

	if req.ProspectID == nil {
		return nil, &pipeline.ValidationError{
			Field:   "conversation_id",
			Message: "conversation_id or prospect_id is required",
		}
	}

	var conv models.Conversation
	err := s.db.First(&conv, "prospect_id = ?", *req.ProspectID).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// No thread yet for this prospect: start one, but only for a prospect
	// that actually exists.
	var prospect models.Prospect
	if err := s.db.Select("id").First(&prospect, "id = ?", *req.ProspectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	channel := req.Channel
	if channel == "" {
		channel = models.ChannelEmail
	}
	if req.QualificationScore != nil {
		if err := pipeline.ValidateScore(*req.QualificationScore); err != nil {
			return nil, err
		}
	}

	conv = models.Conversation{
		ProspectID:         req.ProspectID,
		Channel:            channel,
		Messages:           models.MessageList{},
		QualificationScore: req.QualificationScore,
		LastContact:        time.Now(),
	}
	if err := s.db.Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return &conv, nil
}

func (s *ConversationService) advanceProspect(prospectID uuid.UUID, target models.ProspectStatus) (bool, error) {
	var prospect models.Prospect
	if err := s.db.First(&prospect, "id = ?", prospectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orphaned conversation; nothing to promote.
			return false, nil
		}
		return false, fmt.Errorf("database error: %w", err)
	}

	next, changed := pipeline.Advance(prospect.Status, target)
	if !changed {
		return false, nil
	}

	if err := s.db.Model(&models.Prospect{}).
		Where("id = ?", prospectID).Update("status", next).Error; err != nil {
		return false, fmt.Errorf("failed to update prospect status: %w", err)
	}

	return true, nil
}

// --- Outreach campaign ---

type OutreachResult struct {
	ProspectsContacted int    `json:"prospects_contacted"`
	CampaignType       string `json:"campaign_type,omitempty"`
}

// StartOutreach opens a conversation for every prospect still in "new" and
// moves them to "contacted". Prospects that advanced concurrently are
// skipped.
func (s *ConversationService) StartOutreach(campaignType, timestamp string) (*OutreachResult, error) {
	var prospects []models.Prospect
	if err := s.db.Where("status = ?", models.ProspectStatusNew).Find(&prospects).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch prospects: %w", err)
	}

	result := &OutreachResult{CampaignType: campaignType}
	if len(prospects) == 0 {
		return result, nil
	}

	now := time.Now()
	var contacted []uuid.UUID
	for i := range prospects {
		p := &prospects[i]
		content := fmt.Sprintf("AI-generated outreach message for %s", p.BusinessName)
		plan, ok := pipeline.PlanOutreach(p, content, seedScore(), now)
		if !ok {
			continue
		}

		if err := s.db.Create(&plan.Conversation).Error; err != nil {
			return nil, fmt.Errorf("failed to create conversation for prospect %s: %w", p.ID, err)
		}
		contacted = append(contacted, p.ID)
	}

	if len(contacted) > 0 {
		if err := s.db.Model(&models.Prospect{}).
			Where("id IN ?", contacted).
			Update("status", models.ProspectStatusContacted).Error; err != nil {
			return nil, fmt.Errorf("failed to update prospect statuses: %w", err)
		}

		s.activity.Record(models.EntityTypeProspect, contacted[0], "outreach_campaign_started",
			fmt.Sprintf("AI outreach campaign started for %d prospects", len(contacted)),
			models.JSONB{
				"campaign_type":  campaignType,
				"prospect_count": len(contacted),
				"triggered_at":   timestamp,
			})
	}

	result.ProspectsContacted = len(contacted)
	logrus.WithField("count", len(contacted)).Info("Outreach campaign started")
	return result, nil
}

// Initial scores seed the qualification funnel in the 30-70 band until a
// real scoring event arrives.
func seedScore() int {
	return rand.Intn(41) + 30
}

// List returns conversation threads newest-activity-first with their
// prospects attached, for the conversations view.
func (s *ConversationService) List(limit int) ([]models.Conversation, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var conversations []models.Conversation
	if err := s.db.Preload("Prospect").
		Order("last_contact DESC").Limit(limit).Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}

	return conversations, nil
}
