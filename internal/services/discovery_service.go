// internal/services/discovery_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arflow/pipeline-backend/internal/models"
)

// DiscoveryService hands prospect discovery requests off to the external
// automation workflow. The backend only records and forwards; the workflow
// does the actual sourcing and reports back through the import endpoint.
type DiscoveryService struct {
	activity  *ActivityService
	forwarder *ForwarderService
}

func NewDiscoveryService(activity *ActivityService, forwarder *ForwarderService) *DiscoveryService {
	return &DiscoveryService{activity: activity, forwarder: forwarder}
}

type DiscoveryTriggerRequest struct {
	Industries           []string `json:"industries" validate:"required,min=1"`
	Locations            []string `json:"locations" validate:"required,min=1"`
	ProspectsPerIndustry int      `json:"prospects_per_industry" validate:"required,gte=1"`
	TotalProspects       int      `json:"total_prospects,omitempty"`
	EstimatedValue       float64  `json:"estimated_value,omitempty"`
	TriggerSource        string   `json:"trigger_source,omitempty"`
	Timestamp            string   `json:"timestamp,omitempty"`
}

type DiscoveryTriggerResult struct {
	WorkflowID       string `json:"workflow_id"`
	Status           string `json:"status"`
	WebhookTriggered bool   `json:"webhook_triggered"`
	IndustryCount    int    `json:"industry_count"`
	LocationCount    int    `json:"location_count"`
}

// Trigger records the discovery request and forwards it to the automation
// workflow. A delivery failure is audited but does not fail the request;
// the caller still gets a workflow id to correlate the eventual import.
func (s *DiscoveryService) Trigger(ctx context.Context, req *DiscoveryTriggerRequest) (*DiscoveryTriggerResult, error) {
	workflowID := fmt.Sprintf("discovery_%d", time.Now().UnixMilli())

	result := &DiscoveryTriggerResult{
		WorkflowID:    workflowID,
		IndustryCount: len(req.Industries),
		LocationCount: len(req.Locations),
	}

	s.activity.Record(models.EntityTypeProspect, models.BulkEntityID, "discovery_triggered",
		fmt.Sprintf("Prospect discovery triggered for %d industries across %d locations",
			len(req.Industries), len(req.Locations)),
		models.JSONB{
			"workflow_id":            workflowID,
			"industries":             req.Industries,
			"locations":              req.Locations,
			"prospects_per_industry": req.ProspectsPerIndustry,
			"total_prospects":        req.TotalProspects,
			"estimated_value":        req.EstimatedValue,
			"trigger_source":         req.TriggerSource,
		})

	if !s.forwarder.Enabled() {
		result.Status = "disabled"
		logrus.WithField("workflow_id", workflowID).
			Warn("Discovery recorded but no automation webhook is configured")
		return result, nil
	}

	payload := map[string]interface{}{
		"workflow_id":            workflowID,
		"industries":             req.Industries,
		"locations":              req.Locations,
		"prospects_per_industry": req.ProspectsPerIndustry,
		"trigger_source":         req.TriggerSource,
		"timestamp":              req.Timestamp,
	}

	if err := s.forwarder.Forward(ctx, payload); err != nil {
		result.Status = "queued"
		logrus.WithError(err).WithField("workflow_id", workflowID).
			Error("Failed to forward discovery request to automation webhook")
		s.activity.Record(models.EntityTypeProspect, models.BulkEntityID, "discovery_forward_failed",
			"Discovery request could not be delivered to the automation webhook",
			models.JSONB{
				"workflow_id": workflowID,
				"error":       err.Error(),
			})
		return result, nil
	}

	result.Status = "forwarded"
	result.WebhookTriggered = true
	return result, nil
}

// History returns recent discovery triggers from the audit trail.
func (s *DiscoveryService) History() ([]models.ActivityLog, error) {
	return s.activity.RecentByAction("discovery_triggered", 20)
}
