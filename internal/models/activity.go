// internal/models/activity.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// BulkEntityID is the placeholder entity id recorded for batch operations
// (bulk import, bulk delete, discovery triggers) that don't target a single
// row.
var BulkEntityID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

// ActivityLog rows are write-once: nothing in the service updates or deletes
// them, and bulk-deleting prospects intentionally leaves their history
// behind.
type ActivityLog struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EntityType  EntityType `json:"entity_type" gorm:"type:varchar(20);not null;index"`
	EntityID    uuid.UUID  `json:"entity_id" gorm:"type:uuid;not null;index"`
	Action      string     `json:"action" gorm:"size:100;not null;index"`
	Description string     `json:"description" gorm:"type:text"`
	Metadata    JSONB      `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}
