// internal/models/conversation.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a conversation thread. The sequence is append-only
// and order-preserving.
type Message struct {
	Timestamp time.Time        `json:"timestamp"`
	Type      MessageDirection `json:"type"`
	Content   string           `json:"content"`
}

// MessageList is stored as a jsonb array, matching the wire format the
// automation workflows send.
type MessageList []Message

func (m MessageList) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal([]Message{})
	}
	return json.Marshal(m)
}

func (m *MessageList) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, m)
}

type Conversation struct {
	BaseModel
	ProspectID         *uuid.UUID          `json:"prospect_id" gorm:"type:uuid;index"`
	Channel            ConversationChannel `json:"channel" gorm:"type:varchar(20);not null;default:'email'"`
	Messages           MessageList         `json:"messages" gorm:"type:jsonb"`
	QualificationScore *int                `json:"qualification_score"`
	Qualified          bool                `json:"qualified" gorm:"default:false"`
	LastContact        time.Time           `json:"last_contact"`

	Prospect *Prospect `json:"prospect,omitempty" gorm:"foreignKey:ProspectID"`
}
