// internal/models/prospect.go
package models

type Prospect struct {
	BaseModel
	BusinessName     string         `json:"business_name" gorm:"size:255;not null"`
	Industry         string         `json:"industry" gorm:"size:100;not null"`
	ContactName      *string        `json:"contact_name" gorm:"size:255"`
	Email            *string        `json:"email" gorm:"size:255"`
	Phone            *string        `json:"phone" gorm:"size:50"`
	EstimatedRevenue *float64       `json:"estimated_revenue" gorm:"type:decimal(15,2)"`
	Status           ProspectStatus `json:"status" gorm:"type:varchar(20);default:'new';index"`

	// Weak references, no database constraint: deleting a prospect leaves
	// these rows in place with their prospect_id intact.
	Conversations []Conversation `json:"conversations,omitempty" gorm:"foreignKey:ProspectID"`
	Applications  []Application  `json:"applications,omitempty" gorm:"foreignKey:ProspectID"`
}
