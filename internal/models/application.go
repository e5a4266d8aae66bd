// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	BaseModel
	ProspectID        *uuid.UUID        `json:"prospect_id" gorm:"type:uuid;index"`
	ApplicationData   JSONB             `json:"application_data" gorm:"type:jsonb"`
	DocumentsUploaded bool              `json:"documents_uploaded" gorm:"default:false"`
	SubmittedToARF    bool              `json:"submitted_to_arf" gorm:"default:false;index"`
	LoanAmount        *float64          `json:"loan_amount" gorm:"type:decimal(15,2)"`
	CommissionRate    float64           `json:"commission_rate" gorm:"type:decimal(6,4);default:0.02"`
	CommissionAmount  *float64          `json:"commission_amount" gorm:"type:decimal(15,2)"`
	ARFSubmissionDate *time.Time        `json:"arf_submission_date"`
	FundingDate       *time.Time        `json:"funding_date"`
	Status            ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`

	Prospect *Prospect `json:"prospect,omitempty" gorm:"foreignKey:ProspectID"`
}
