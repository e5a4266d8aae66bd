// internal/services/prospect_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/arflow/pipeline-backend/internal/database"
	"github.com/arflow/pipeline-backend/internal/models"
	"github.com/arflow/pipeline-backend/internal/pipeline"
	"github.com/arflow/pipeline-backend/internal/utils"
)

const maxBulkImportSize = 1000

type ProspectService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewProspectService(db *gorm.DB, activity *ActivityService) *ProspectService {
	return &ProspectService{db: db, activity: activity}
}

type CreateProspectRequest struct {
	BusinessName     string   `json:"business_name" validate:"required"`
	Industry         string   `json:"industry" validate:"required"`
	ContactName      *string  `json:"contact_name,omitempty"`
	Email            *string  `json:"email,omitempty"`
	Phone            *string  `json:"phone,omitempty"`
	EstimatedRevenue *float64 `json:"estimated_revenue,omitempty" validate:"omitempty,gte=0"`
}

func (s *ProspectService) Create(req *CreateProspectRequest) (*models.Prospect, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	prospect := &models.Prospect{
		BusinessName:     strings.TrimSpace(req.BusinessName),
		Industry:         strings.TrimSpace(req.Industry),
		ContactName:      req.ContactName,
		Email:            req.Email,
		Phone:            req.Phone,
		EstimatedRevenue: req.EstimatedRevenue,
		Status:           models.ProspectStatusNew,
	}

	if err := s.db.Create(prospect).Error; err != nil {
		return nil, fmt.Errorf("failed to create prospect: %w", err)
	}

	s.activity.Record(models.EntityTypeProspect, prospect.ID, "prospect_created",
		fmt.Sprintf("Prospect %s added", prospect.BusinessName),
		models.JSONB{
			"business_name": prospect.BusinessName,
			"industry":      prospect.Industry,
		})

	return prospect, nil
}

// List returns prospects newest-first, optionally filtered by status.
// status "all" or "" means no filter.
func (s *ProspectService) List(status string) ([]models.Prospect, error) {
	query := s.db.Model(&models.Prospect{}).Order("created_at DESC")

	if status != "" && status != "all" {
		if !pipeline.IsValidStatus(models.ProspectStatus(status)) {
			return nil, &pipeline.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
		}
		query = query.Where("status = ?", status)
	}

	var prospects []models.Prospect
	if err := query.Find(&prospects).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch prospects: %w", err)
	}

	return prospects, nil
}

func (s *ProspectService) Get(id uuid.UUID) (*models.Prospect, error) {
	var prospect models.Prospect
	if err := s.db.First(&prospect, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &prospect, nil
}

// --- Bulk import ---

type ImportValidationError struct {
	Index   int         `json:"index"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Record  interface{} `json:"record"`
}

type BulkImportResult struct {
	ImportedCount     int                     `json:"imported_count"`
	TotalSubmitted    int                     `json:"total_submitted"`
	ValidationPassed  int                     `json:"validation_passed"`
	ValidationErrors  []ImportValidationError `json:"validation_errors,omitempty"`
	ImportedProspects []ProspectSummary       `json:"imported_prospects,omitempty"`
}

type ProspectSummary struct {
	ID           uuid.UUID             `json:"id"`
	BusinessName string                `json:"business_name"`
	Industry     string                `json:"industry,omitempty"`
	Status       models.ProspectStatus `json:"status,omitempty"`
}

// ValidateImportRecords checks every record of a batch and returns the
// cleaned rows ready for insert plus the full list of per-record failures.
// Pure; no database access.
func ValidateImportRecords(records []CreateProspectRequest) ([]models.Prospect, []ImportValidationError) {
	var validationErrors []ImportValidationError
	var rows []models.Prospect

	for i, rec := range records {
		recordErrors := 0

		if strings.TrimSpace(rec.BusinessName) == "" {
			validationErrors = append(validationErrors, ImportValidationError{
				Index: i, Field: "business_name",
				Message: "Business name is required and must be a non-empty string",
				Record:  rec,
			})
			recordErrors++
		}

		if strings.TrimSpace(rec.Industry) == "" {
			validationErrors = append(validationErrors, ImportValidationError{
				Index: i, Field: "industry",
				Message: "Industry is required and must be a non-empty string",
				Record:  rec,
			})
			recordErrors++
		}

		if rec.Email != nil && strings.TrimSpace(*rec.Email) != "" && !utils.IsValidEmail(*rec.Email) {
			validationErrors = append(validationErrors, ImportValidationError{
				Index: i, Field: "email",
				Message: "Invalid email format",
				Record:  rec,
			})
			recordErrors++
		}

		if rec.EstimatedRevenue != nil && *rec.EstimatedRevenue < 0 {
			validationErrors = append(validationErrors, ImportValidationError{
				Index: i, Field: "estimated_revenue",
				Message: "Estimated revenue must be a non-negative number",
				Record:  rec,
			})
			recordErrors++
		}

		if recordErrors > 0 {
			continue
		}

		row := models.Prospect{
			BusinessName:     strings.TrimSpace(rec.BusinessName),
			Industry:         strings.TrimSpace(rec.Industry),
			EstimatedRevenue: rec.EstimatedRevenue,
			Status:           models.ProspectStatusNew,
		}
		if rec.ContactName != nil && strings.TrimSpace(*rec.ContactName) != "" {
			name := strings.TrimSpace(*rec.ContactName)
			row.ContactName = &name
		}
		if rec.Email != nil && strings.TrimSpace(*rec.Email) != "" {
			email := strings.TrimSpace(*rec.Email)
			row.Email = &email
		}
		if rec.Phone != nil && strings.TrimSpace(*rec.Phone) != "" {
			phone := strings.TrimSpace(*rec.Phone)
			row.Phone = &phone
		}

		rows = append(rows, row)
	}

	return rows, validationErrors
}

// BulkImport inserts a validated batch of prospects. All-or-nothing: if any
// record fails validation, nothing is inserted and the result carries the
// full error report. The batch produces exactly one audit entry.
func (s *ProspectService) BulkImport(records []CreateProspectRequest) (*BulkImportResult, error) {
	if len(records) == 0 {
		return nil, &pipeline.ValidationError{Field: "prospects", Message: "empty prospects array provided"}
	}
	if len(records) > maxBulkImportSize {
		return nil, &pipeline.ValidationError{
			Field:   "prospects",
			Message: fmt.Sprintf("maximum %d prospects allowed per bulk import", maxBulkImportSize),
		}
	}

	rows, validationErrors := ValidateImportRecords(records)

	result := &BulkImportResult{
		TotalSubmitted:   len(records),
		ValidationPassed: len(rows),
	}

	if len(validationErrors) > 0 {
		result.ValidationErrors = validationErrors
		return result, nil
	}

	// Large batches insert in chunks; keep the whole import atomic.
	if err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	}); err != nil {
		return nil, fmt.Errorf("failed to insert prospects: %w", err)
	}

	result.ImportedCount = len(rows)
	for _, p := range rows {
		result.ImportedProspects = append(result.ImportedProspects, ProspectSummary{
			ID:           p.ID,
			BusinessName: p.BusinessName,
			Industry:     p.Industry,
			Status:       p.Status,
		})
	}

	industries := map[string]bool{}
	hasContact := 0
	revenueTotal := 0.0
	for _, p := range rows {
		industries[p.Industry] = true
		if p.Email != nil || p.Phone != nil {
			hasContact++
		}
		if p.EstimatedRevenue != nil {
			revenueTotal += *p.EstimatedRevenue
		}
	}
	industryList := make([]string, 0, len(industries))
	for industry := range industries {
		industryList = append(industryList, industry)
	}

	s.activity.Record(models.EntityTypeProspect, models.BulkEntityID, "bulk_import",
		fmt.Sprintf("Bulk imported %d prospects", len(rows)),
		models.JSONB{
			"imported_count":          len(rows),
			"industries":              industryList,
			"has_contact_info":        hasContact,
			"estimated_revenue_total": revenueTotal,
		})

	logrus.WithField("count", len(rows)).Info("Bulk import completed")
	return result, nil
}

// --- Bulk delete ---

type BulkDeleteRequest struct {
	ProspectIDs       []uuid.UUID `json:"prospect_ids,omitempty"`
	DeleteAllTestData bool        `json:"delete_all_test_data,omitempty"`
}

type BulkDeleteResult struct {
	DeletedCount     int               `json:"deleted_count"`
	DeletedProspects []ProspectSummary `json:"deleted_prospects"`
}

// BulkDelete removes prospect rows by explicit id list or by the test-data
// predicate. No cascade: conversations, applications, and activity entries
// keep their weak references. One summary audit record covers the batch.
func (s *ProspectService) BulkDelete(req *BulkDeleteRequest) (*BulkDeleteResult, error) {
	if len(req.ProspectIDs) == 0 && !req.DeleteAllTestData {
		return nil, &pipeline.ValidationError{
			Field:   "prospect_ids",
			Message: "either prospect_ids array or delete_all_test_data flag is required",
		}
	}

	var targets []models.Prospect
	if req.DeleteAllTestData {
		var all []models.Prospect
		if err := s.db.Select("id", "business_name").Find(&all).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch prospects: %w", err)
		}
		for _, p := range all {
			if pipeline.MatchesTestData(p.BusinessName) {
				targets = append(targets, p)
			}
		}
	} else {
		if err := s.db.Select("id", "business_name").
			Where("id IN ?", req.ProspectIDs).Find(&targets).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch prospects: %w", err)
		}
	}

	result := &BulkDeleteResult{DeletedProspects: []ProspectSummary{}}
	if len(targets) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(targets))
	for _, p := range targets {
		ids = append(ids, p.ID)
		result.DeletedProspects = append(result.DeletedProspects, ProspectSummary{
			ID:           p.ID,
			BusinessName: p.BusinessName,
		})
	}

	if err := s.db.Where("id IN ?", ids).Delete(&models.Prospect{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete prospects: %w", err)
	}
	result.DeletedCount = len(ids)

	deleteType := "selective_delete"
	if req.DeleteAllTestData {
		deleteType = "test_data_cleanup"
	}
	s.activity.Record(models.EntityTypeProspect, models.BulkEntityID, "bulk_delete",
		fmt.Sprintf("Bulk deleted %d prospects", result.DeletedCount),
		models.JSONB{
			"deleted_count":     result.DeletedCount,
			"deleted_prospects": result.DeletedProspects,
			"delete_type":       deleteType,
		})

	return result, nil
}

type DeletePreview struct {
	AllProspects  []models.Prospect `json:"all_prospects"`
	TestProspects []models.Prospect `json:"test_prospects"`
	TestPatterns  []string          `json:"test_patterns"`
}

// DeletePreview lists every prospect plus the subset the test-data predicate
// would remove, so the cleanup can be reviewed before running.
func (s *ProspectService) DeletePreview() (*DeletePreview, error) {
	var prospects []models.Prospect
	if err := s.db.Select("id", "business_name", "industry", "status", "created_at").
		Order("created_at DESC").Find(&prospects).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch prospects: %w", err)
	}

	preview := &DeletePreview{
		AllProspects:  prospects,
		TestProspects: []models.Prospect{},
		TestPatterns:  pipeline.TestDataPatterns,
	}
	for _, p := range prospects {
		if pipeline.MatchesTestData(p.BusinessName) {
			preview.TestProspects = append(preview.TestProspects, p)
		}
	}

	return preview, nil
}
