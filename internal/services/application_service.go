// internal/services/application_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/arflow/pipeline-backend/internal/models"
	"github.com/arflow/pipeline-backend/internal/pipeline"
	"github.com/arflow/pipeline-backend/internal/utils"
)

type ApplicationService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewApplicationService(db *gorm.DB, activity *ActivityService) *ApplicationService {
	return &ApplicationService{db: db, activity: activity}
}

// --- Completion (voice application finished) ---

type ApplicationCompletedRequest struct {
	ProspectID        uuid.UUID    `json:"prospect_id" validate:"required"`
	ApplicationData   models.JSONB `json:"application_data,omitempty"`
	LoanAmount        *float64     `json:"loan_amount,omitempty"`
	CommissionRate    *float64     `json:"commission_rate,omitempty"`
	DocumentsUploaded bool         `json:"documents_uploaded,omitempty"`
	VoiceData         interface{}  `json:"voice_data,omitempty"`
}

type CompletionResult struct {
	ApplicationID    uuid.UUID `json:"application_id"`
	Created          bool      `json:"created"`
	LoanAmount       *float64  `json:"loan_amount,omitempty"`
	CommissionRate   float64   `json:"commission_rate"`
	CommissionAmount *float64  `json:"commission_amount,omitempty"`
}

// Complete upserts the prospect's open application with the finished
// application payload and advances the prospect to "application".
func (s *ApplicationService) Complete(req *ApplicationCompletedRequest) (*CompletionResult, error) {
	var prospect models.Prospect
	if err := s.db.First(&prospect, "id = ?", req.ProspectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	rate := 0.02
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
	}

	existing, err := s.findOpenApplication(req.ProspectID)
	if err != nil && !errors.Is(err, ErrNoOpenApplication) {
		return nil, err
	}

	changes, err := pipeline.PlanApplicationCompletion(existing, pipeline.CompletionInput{
		Data:              req.ApplicationData,
		LoanAmount:        req.LoanAmount,
		CommissionRate:    rate,
		DocumentsUploaded: req.DocumentsUploaded,
	})
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{
		LoanAmount:       changes.LoanAmount,
		CommissionRate:   changes.CommissionRate,
		CommissionAmount: changes.CommissionAmount,
	}

	if existing != nil {
		columns := map[string]interface{}{
			"application_data":   changes.Data,
			"loan_amount":        changes.LoanAmount,
			"commission_rate":    changes.CommissionRate,
			"commission_amount":  changes.CommissionAmount,
			"documents_uploaded": changes.DocumentsUploaded,
			"status":             changes.Status,
		}
		if err := s.db.Model(&models.Application{}).
			Where("id = ?", existing.ID).Updates(columns).Error; err != nil {
			return nil, fmt.Errorf("failed to update application: %w", err)
		}
		result.ApplicationID = existing.ID
	} else {
		pid := req.ProspectID
		app := &models.Application{
			ProspectID:        &pid,
			ApplicationData:   changes.Data,
			LoanAmount:        changes.LoanAmount,
			CommissionRate:    changes.CommissionRate,
			CommissionAmount:  changes.CommissionAmount,
			DocumentsUploaded: changes.DocumentsUploaded,
			SubmittedToARF:    false,
			Status:            changes.Status,
		}
		if err := s.db.Create(app).Error; err != nil {
			return nil, fmt.Errorf("failed to create application: %w", err)
		}
		result.ApplicationID = app.ID
		result.Created = true
	}

	if _, err := s.advanceProspect(&prospect, models.ProspectStatusApplication); err != nil {
		return nil, err
	}

	description := "Voice application completed"
	if changes.LoanAmount != nil {
		description = fmt.Sprintf("Voice application completed for $%.2f", *changes.LoanAmount)
	}
	s.activity.Record(models.EntityTypeApplication, result.ApplicationID, "application_completed",
		description,
		models.JSONB{
			"loan_amount":       changes.LoanAmount,
			"commission_amount": changes.CommissionAmount,
			"commission_rate":   changes.CommissionRate,
			"has_voice_data":    req.VoiceData != nil,
		})

	return result, nil
}

// --- ARF submission ---

type ARFSubmissionRequest struct {
	ApplicationID       *uuid.UUID `json:"application_id,omitempty"`
	ProspectID          *uuid.UUID `json:"prospect_id,omitempty"`
	SubmissionStatus    string     `json:"submission_status,omitempty"`
	ARFReferenceNumber  string     `json:"arf_reference_number,omitempty"`
	SubmissionNotes     string     `json:"submission_notes,omitempty"`
	ExpectedFundingDate string     `json:"expected_funding_date,omitempty"`
}

type ARFSubmissionResult struct {
	ApplicationID      uuid.UUID `json:"application_id"`
	ARFReferenceNumber string    `json:"arf_reference_number,omitempty"`
	SubmissionStatus   string    `json:"submission_status"`
	CommissionAmount   *float64  `json:"commission_amount,omitempty"`
	LoanAmount         *float64  `json:"loan_amount,omitempty"`
	BusinessName       string    `json:"business_name,omitempty"`
}

// SubmitToARF marks the open application as sent to the funding partner and
// advances the prospect to "submitted".
func (s *ApplicationService) SubmitToARF(req *ARFSubmissionRequest) (*ARFSubmissionResult, error) {
	app, err := s.resolveApplication(req.ApplicationID, req.ProspectID)
	if err != nil {
		return nil, err
	}

	changes, err := pipeline.PlanARFSubmission(app, pipeline.SubmissionInput{
		Status:              models.ApplicationStatus(req.SubmissionStatus),
		ReferenceNumber:     req.ARFReferenceNumber,
		Notes:               req.SubmissionNotes,
		ExpectedFundingDate: req.ExpectedFundingDate,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	columns := map[string]interface{}{
		"submitted_to_arf":    true,
		"arf_submission_date": changes.SubmissionDate,
		"status":              changes.Status,
		"application_data":    changes.Data,
	}
	if err := s.db.Model(&models.Application{}).
		Where("id = ?", app.ID).Updates(columns).Error; err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	result := &ARFSubmissionResult{
		ApplicationID:      app.ID,
		ARFReferenceNumber: req.ARFReferenceNumber,
		SubmissionStatus:   string(changes.Status),
		CommissionAmount:   app.CommissionAmount,
		LoanAmount:         app.LoanAmount,
	}

	if app.ProspectID != nil {
		var prospect models.Prospect
		if err := s.db.First(&prospect, "id = ?", *app.ProspectID).Error; err == nil {
			result.BusinessName = prospect.BusinessName
			if _, err := s.advanceProspect(&prospect, models.ProspectStatusSubmitted); err != nil {
				return nil, err
			}
		}
	}

	description := "Application submitted to ARF"
	if req.ARFReferenceNumber != "" {
		description = fmt.Sprintf("Application submitted to ARF (Ref: %s)", req.ARFReferenceNumber)
	}
	s.activity.Record(models.EntityTypeApplication, app.ID, "arf_submission",
		description,
		models.JSONB{
			"arf_reference_number":  req.ARFReferenceNumber,
			"submission_status":     string(changes.Status),
			"submission_notes":      req.SubmissionNotes,
			"expected_funding_date": req.ExpectedFundingDate,
			"commission_amount":     app.CommissionAmount,
			"loan_amount":           app.LoanAmount,
		})

	return result, nil
}

// --- ARF status update (funding decision) ---

type ARFStatusUpdateRequest struct {
	ARFReferenceNumber string     `json:"arf_reference_number,omitempty"`
	ApplicationID      *uuid.UUID `json:"application_id,omitempty"`
	Status             string     `json:"status" validate:"required"`
	FundingAmount      *float64   `json:"funding_amount,omitempty"`
	FundingDate        *time.Time `json:"funding_date,omitempty"`
	DeclineReason      string     `json:"decline_reason,omitempty"`
}

type ARFStatusUpdateResult struct {
	ApplicationID    uuid.UUID `json:"application_id"`
	Status           string    `json:"status"`
	CommissionAmount *float64  `json:"commission_amount,omitempty"`
	BusinessName     string    `json:"business_name,omitempty"`
}

// UpdateARFStatus applies a decision pushed back from the funding partner.
// Funded and declined are terminal and propagate to the owning prospect.
func (s *ApplicationService) UpdateARFStatus(req *ARFStatusUpdateRequest) (*ARFStatusUpdateResult, error) {
	app, err := s.findByIDOrReference(req.ApplicationID, req.ARFReferenceNumber)
	if err != nil {
		return nil, err
	}

	changes, err := pipeline.PlanARFStatusUpdate(models.ApplicationStatus(req.Status), req.FundingDate, time.Now())
	if err != nil {
		return nil, err
	}

	columns := map[string]interface{}{"status": changes.Status}
	if changes.FundingDate != nil {
		columns["funding_date"] = *changes.FundingDate
	}
	if err := s.db.Model(&models.Application{}).
		Where("id = ?", app.ID).Updates(columns).Error; err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	result := &ARFStatusUpdateResult{
		ApplicationID:    app.ID,
		Status:           string(changes.Status),
		CommissionAmount: app.CommissionAmount,
	}

	if changes.ProspectStatus != "" && app.ProspectID != nil {
		var prospect models.Prospect
		if err := s.db.First(&prospect, "id = ?", *app.ProspectID).Error; err == nil {
			result.BusinessName = prospect.BusinessName
			if _, err := s.advanceProspect(&prospect, changes.ProspectStatus); err != nil {
				return nil, err
			}
		}
	}

	description := fmt.Sprintf("ARF updated status to %s", changes.Status)
	if req.FundingAmount != nil {
		description = fmt.Sprintf("ARF updated status to %s for $%.2f", changes.Status, *req.FundingAmount)
	}
	s.activity.Record(models.EntityTypeApplication, app.ID, fmt.Sprintf("arf_%s", changes.Status),
		description,
		models.JSONB{
			"arf_reference_number": req.ARFReferenceNumber,
			"status":               string(changes.Status),
			"funding_amount":       req.FundingAmount,
			"funding_date":         changes.FundingDate,
			"decline_reason":       req.DeclineReason,
			"commission_amount":    app.CommissionAmount,
		})

	return result, nil
}

// --- Lookups ---

func (s *ApplicationService) findOpenApplication(prospectID uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := s.db.Where("prospect_id = ? AND submitted_to_arf = ?", prospectID, false).
		Order("created_at DESC").First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenApplication
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &app, nil
}

// resolveApplication finds the submission target: by explicit id, or the
// prospect's latest unsubmitted application.
func (s *ApplicationService) resolveApplication(applicationID, prospectID *uuid.UUID) (*models.Application, error) {
	if applicationID != nil {
		var app models.Application
		if err := s.db.First(&app, "id = ?", *applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoOpenApplication
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &app, nil
	}

	if prospectID == nil {
		return nil, ErrNoOpenApplication
	}

	return s.findOpenApplication(*prospectID)
}

func (s *ApplicationService) findByIDOrReference(applicationID *uuid.UUID, reference string) (*models.Application, error) {
	if applicationID != nil {
		var app models.Application
		if err := s.db.First(&app, "id = ?", *applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &app, nil
	}

	if reference == "" {
		return nil, ErrNotFound
	}

	var app models.Application
	err := s.db.Where("application_data->'arf_submission'->>'arf_reference_number' ILIKE ?", reference).
		Order("created_at DESC").First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &app, nil
}

func (s *ApplicationService) advanceProspect(prospect *models.Prospect, target models.ProspectStatus) (bool, error) {
	next, changed := pipeline.Advance(prospect.Status, target)
	if !changed {
		return false, nil
	}

	if err := s.db.Model(&models.Prospect{}).
		Where("id = ?", prospect.ID).Update("status", next).Error; err != nil {
		return false, fmt.Errorf("failed to update prospect status: %w", err)
	}

	prospect.Status = next
	return true, nil
}

// --- Reads and document flag ---

var applicationSortFields = []string{"created_at", "loan_amount", "commission_amount", "arf_submission_date", "funding_date"}

func (s *ApplicationService) List(status string, params utils.PaginationParams) ([]models.Application, int64, error) {
	query := s.db.Model(&models.Application{})
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query = utils.ApplySort(query, params, applicationSortFields)
	query = utils.ApplyPagination(query, params)

	var apps []models.Application
	if err := query.Preload("Prospect").Find(&apps).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch applications: %w", err)
	}

	return apps, total, nil
}

func (s *ApplicationService) Get(id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := s.db.Preload("Prospect").First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &app, nil
}

// MarkDocumentsUploaded records a stored document against the application
// and flips the documents_uploaded flag.
func (s *ApplicationService) MarkDocumentsUploaded(id uuid.UUID, document models.JSONB) error {
	app, err := s.Get(id)
	if err != nil {
		return err
	}

	data := models.JSONB{}
	for k, v := range app.ApplicationData {
		data[k] = v
	}
	documents, _ := data["documents"].([]interface{})
	data["documents"] = append(documents, map[string]interface{}(document))

	columns := map[string]interface{}{
		"documents_uploaded": true,
		"application_data":   data,
	}
	if err := s.db.Model(&models.Application{}).
		Where("id = ?", id).Updates(columns).Error; err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	s.activity.Record(models.EntityTypeApplication, id, "documents_uploaded",
		"Application documents uploaded", document)

	logrus.WithField("application_id", id).Info("Application documents uploaded")
	return nil
}
