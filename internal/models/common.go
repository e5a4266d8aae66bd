// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type ProspectStatus string

const (
	ProspectStatusNew         ProspectStatus = "new"
	ProspectStatusContacted   ProspectStatus = "contacted"
	ProspectStatusQualified   ProspectStatus = "qualified"
	ProspectStatusApplication ProspectStatus = "application"
	ProspectStatusSubmitted   ProspectStatus = "submitted"
	ProspectStatusFunded      ProspectStatus = "funded"
	ProspectStatusDeclined    ProspectStatus = "declined"
)

type ConversationChannel string

const (
	ChannelEmail    ConversationChannel = "email"
	ChannelPhone    ConversationChannel = "phone"
	ChannelLinkedIn ConversationChannel = "linkedin"
	ChannelWebsite  ConversationChannel = "website"
	ChannelReferral ConversationChannel = "referral"
)

type ApplicationStatus string

const (
	ApplicationStatusDraft       ApplicationStatus = "draft"
	ApplicationStatusSubmitted   ApplicationStatus = "submitted"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusFunded      ApplicationStatus = "funded"
	ApplicationStatusDeclined    ApplicationStatus = "declined"
)

type EntityType string

const (
	EntityTypeProspect     EntityType = "prospect"
	EntityTypeConversation EntityType = "conversation"
	EntityTypeApplication  EntityType = "application"
)

type MessageDirection string

const (
	MessageInbound  MessageDirection = "inbound"
	MessageOutbound MessageDirection = "outbound"
)
