// internal/services/analytics_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/arflow/pipeline-backend/internal/models"
)

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

type DashboardStats struct {
	TotalProspects      int64            `json:"total_prospects"`
	ProspectsByStatus   map[string]int64 `json:"prospects_by_status"`
	ActiveConversations int64            `json:"active_conversations"`
	QualifiedProspects  int64            `json:"qualified_prospects"`
	TotalApplications   int64            `json:"total_applications"`
	SubmittedToARF      int64            `json:"submitted_to_arf"`
	FundedApplications  int64            `json:"funded_applications"`
	PipelineValue       float64          `json:"pipeline_value"`
	FundedCommission    float64          `json:"funded_commission"`
	PendingCommission   float64          `json:"pending_commission"`
	MonthlyFundedVolume float64          `json:"monthly_funded_volume"`
	ConversionRate      float64          `json:"conversion_rate"`
}

// GetDashboardStats aggregates the pipeline and commission figures for the
// dashboard. Commission splits on funding: funded applications count toward
// earned commission, submitted-but-undecided ones toward pending.
func (s *AnalyticsService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{ProspectsByStatus: map[string]int64{}}

	if err := s.db.Model(&models.Prospect{}).Count(&stats.TotalProspects).Error; err != nil {
		return nil, fmt.Errorf("failed to count prospects: %w", err)
	}

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Prospect{}).
		Select("status, COUNT(*) as count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to group prospects by status: %w", err)
	}
	for _, row := range byStatus {
		stats.ProspectsByStatus[row.Status] = row.Count
	}
	stats.QualifiedProspects = stats.ProspectsByStatus[string(models.ProspectStatusQualified)]

	if err := s.db.Model(&models.Conversation{}).Count(&stats.ActiveConversations).Error; err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}

	if err := s.db.Model(&models.Application{}).Count(&stats.TotalApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	if err := s.db.Model(&models.Application{}).
		Where("submitted_to_arf = ?", true).Count(&stats.SubmittedToARF).Error; err != nil {
		return nil, fmt.Errorf("failed to count submitted applications: %w", err)
	}

	if err := s.db.Model(&models.Application{}).
		Where("status = ?", models.ApplicationStatusFunded).
		Count(&stats.FundedApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to count funded applications: %w", err)
	}

	if err := s.db.Model(&models.Application{}).
		Where("status NOT IN ?", []models.ApplicationStatus{
			models.ApplicationStatusFunded, models.ApplicationStatusDeclined,
		}).
		Select("COALESCE(SUM(loan_amount), 0)").
		Scan(&stats.PipelineValue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum pipeline value: %w", err)
	}

	if err := s.db.Model(&models.Application{}).
		Where("status = ?", models.ApplicationStatusFunded).
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&stats.FundedCommission).Error; err != nil {
		return nil, fmt.Errorf("failed to sum funded commission: %w", err)
	}

	if err := s.db.Model(&models.Application{}).
		Where("submitted_to_arf = ? AND status NOT IN ?", true, []models.ApplicationStatus{
			models.ApplicationStatusFunded, models.ApplicationStatusDeclined,
		}).
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&stats.PendingCommission).Error; err != nil {
		return nil, fmt.Errorf("failed to sum pending commission: %w", err)
	}

	monthStart := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.Application{}).
		Where("status = ? AND funding_date >= ?", models.ApplicationStatusFunded, monthStart).
		Select("COALESCE(SUM(loan_amount), 0)").
		Scan(&stats.MonthlyFundedVolume).Error; err != nil {
		return nil, fmt.Errorf("failed to sum monthly funded volume: %w", err)
	}

	if stats.TotalProspects > 0 {
		stats.ConversionRate = float64(stats.FundedApplications) / float64(stats.TotalProspects) * 100
	}

	return stats, nil
}
