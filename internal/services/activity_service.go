// internal/services/activity_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/arflow/pipeline-backend/internal/models"
)

// ActivityService appends audit records for every state-changing operation.
// Writes are best-effort: a failed audit insert is logged operationally and
// never fails or rolls back the mutation it describes.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record appends one audit row. Errors are swallowed after logging.
func (s *ActivityService) Record(entityType models.EntityType, entityID uuid.UUID, action, description string, metadata models.JSONB) {
	entry := &models.ActivityLog{
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		Metadata:    metadata,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"entity_type": entityType,
			"entity_id":   entityID,
			"action":      action,
		}).Error("Failed to write activity log entry")
	}
}

// Recent returns the newest activity entries for the dashboard feed.
func (s *ActivityService) Recent(limit int) ([]models.ActivityLog, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var entries []models.ActivityLog
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch activity log: %w", err)
	}

	return entries, nil
}

// RecentByAction returns the newest entries for one action tag.
func (s *ActivityService) RecentByAction(action string, limit int) ([]models.ActivityLog, error) {
	if limit < 1 || limit > 200 {
		limit = 20
	}

	var entries []models.ActivityLog
	if err := s.db.Where("action = ?", action).
		Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch activity log: %w", err)
	}

	return entries, nil
}
