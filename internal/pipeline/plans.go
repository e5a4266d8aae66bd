// internal/pipeline/plans.go
//
// Pure event planning: each Plan* function maps an entity snapshot plus an
// incoming event onto the complete set of field changes it legally produces,
// or a rejection. Nothing here touches the database; the services layer
// persists the resulting change-sets.
package pipeline

import (
	"fmt"
	"time"

	"github.com/arflow/pipeline-backend/internal/models"
)

// ValidationError marks a rejection the caller should surface as a 400-class
// failure rather than a server fault.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CommissionAmount derives the stored commission for a loan. Nil when the
// loan amount is not yet known.
func CommissionAmount(loanAmount *float64, rate float64) *float64 {
	if loanAmount == nil {
		return nil
	}
	amount := *loanAmount * rate
	return &amount
}

// ValidateScore rejects out-of-range qualification scores outright instead
// of clamping them.
func ValidateScore(score int) error {
	if score < 0 || score > 100 {
		return &ValidationError{
			Field:   "qualification_score",
			Message: fmt.Sprintf("must be between 0 and 100, got %d", score),
		}
	}
	return nil
}

func validateLoanTerms(loanAmount *float64, rate float64) error {
	if loanAmount != nil && *loanAmount < 0 {
		return &ValidationError{Field: "loan_amount", Message: "must be non-negative"}
	}
	if rate <= 0 || rate > 1 {
		return &ValidationError{Field: "commission_rate", Message: "must be a fraction in (0, 1]"}
	}
	return nil
}

// --- Outreach start ---

type OutreachPlan struct {
	Conversation   models.Conversation
	ProspectStatus models.ProspectStatus
}

// PlanOutreach prepares the first contact for one prospect: a new email
// conversation with a single outbound message and a seeded score. Prospects
// past "new" are skipped (ok=false), not failed.
func PlanOutreach(p *models.Prospect, content string, seedScore int, now time.Time) (*OutreachPlan, bool) {
	if p.Status != models.ProspectStatusNew {
		return nil, false
	}

	pid := p.ID
	score := seedScore
	return &OutreachPlan{
		Conversation: models.Conversation{
			ProspectID: &pid,
			Channel:    models.ChannelEmail,
			Messages: models.MessageList{{
				Timestamp: now,
				Type:      models.MessageOutbound,
				Content:   content,
			}},
			QualificationScore: &score,
			Qualified:          false,
			LastContact:        now,
		},
		ProspectStatus: models.ProspectStatusContacted,
	}, true
}

// --- Conversation update ---

type ConversationUpdate struct {
	Message            *models.Message
	QualificationScore *int
	Qualified          *bool
}

type ConversationChanges struct {
	Messages           models.MessageList
	QualificationScore *int
	Qualified          *bool
	LastContact        time.Time
	// PromoteProspect is set when qualified flipped true and the owning
	// prospect should advance to "qualified" (forward-only; the service
	// applies Advance against the live row).
	PromoteProspect bool
}

func PlanConversationUpdate(conv *models.Conversation, upd ConversationUpdate, now time.Time) (*ConversationChanges, error) {
	if upd.QualificationScore != nil {
		if err := ValidateScore(*upd.QualificationScore); err != nil {
			return nil, err
		}
	}

	changes := &ConversationChanges{
		QualificationScore: upd.QualificationScore,
		Qualified:          upd.Qualified,
		LastContact:        now,
	}

	if upd.Message != nil {
		msg := *upd.Message
		if msg.Timestamp.IsZero() {
			msg.Timestamp = now
		}
		if msg.Type == "" {
			msg.Type = models.MessageInbound
		}
		// Append to the end of the existing sequence; never reorder or
		// deduplicate.
		changes.Messages = append(append(models.MessageList{}, conv.Messages...), msg)
	}

	if upd.Qualified != nil && *upd.Qualified && !conv.Qualified {
		changes.PromoteProspect = true
	}

	return changes, nil
}

// --- Application completion ---

type CompletionInput struct {
	Data              models.JSONB
	LoanAmount        *float64
	CommissionRate    float64
	DocumentsUploaded bool
}

type ApplicationChanges struct {
	Data              models.JSONB
	LoanAmount        *float64
	CommissionRate    float64
	CommissionAmount  *float64
	DocumentsUploaded bool
	Status            models.ApplicationStatus
}

// PlanApplicationCompletion computes the upsert for a prospect's open
// application. existing may be nil (create). Incoming application_data is
// merged key-by-key over what is already stored, never replaced wholesale.
func PlanApplicationCompletion(existing *models.Application, in CompletionInput) (*ApplicationChanges, error) {
	if err := validateLoanTerms(in.LoanAmount, in.CommissionRate); err != nil {
		return nil, err
	}

	data := models.JSONB{}
	if existing != nil {
		for k, v := range existing.ApplicationData {
			data[k] = v
		}
	}
	for k, v := range in.Data {
		data[k] = v
	}

	return &ApplicationChanges{
		Data:              data,
		LoanAmount:        in.LoanAmount,
		CommissionRate:    in.CommissionRate,
		CommissionAmount:  CommissionAmount(in.LoanAmount, in.CommissionRate),
		DocumentsUploaded: in.DocumentsUploaded,
		Status:            models.ApplicationStatusDraft,
	}, nil
}

// --- ARF submission ---

type SubmissionInput struct {
	Status              models.ApplicationStatus
	ReferenceNumber     string
	Notes               string
	ExpectedFundingDate string
}

type SubmissionChanges struct {
	Data           models.JSONB
	Status         models.ApplicationStatus
	SubmissionDate time.Time
}

// PlanARFSubmission marks an open application as sent to the funding
// partner. Submission metadata nests under "arf_submission"; an earlier
// submission entry, if one somehow exists, is pushed into
// "arf_submission_history" so repeats stay distinguishable.
func PlanARFSubmission(app *models.Application, in SubmissionInput, now time.Time) (*SubmissionChanges, error) {
	if app.SubmittedToARF {
		return nil, &ValidationError{Field: "application_id", Message: "application already submitted to ARF"}
	}

	status := in.Status
	if status == "" {
		status = models.ApplicationStatusSubmitted
	}

	data := models.JSONB{}
	for k, v := range app.ApplicationData {
		data[k] = v
	}

	if prior, ok := data["arf_submission"]; ok {
		history, _ := data["arf_submission_history"].([]interface{})
		data["arf_submission_history"] = append(history, prior)
	}

	data["arf_submission"] = map[string]interface{}{
		"arf_reference_number":  in.ReferenceNumber,
		"submission_notes":      in.Notes,
		"expected_funding_date": in.ExpectedFundingDate,
		"submitted_at":          now.UTC().Format(time.RFC3339),
	}

	return &SubmissionChanges{
		Data:           data,
		Status:         status,
		SubmissionDate: now,
	}, nil
}

// --- ARF status update ---

type StatusUpdateChanges struct {
	Status      models.ApplicationStatus
	FundingDate *time.Time
	// ProspectStatus is non-empty when the decision propagates to the
	// owning prospect (funded and declined only).
	ProspectStatus models.ProspectStatus
}

var arfUpdateStatuses = map[models.ApplicationStatus]bool{
	models.ApplicationStatusUnderReview: true,
	models.ApplicationStatusApproved:    true,
	models.ApplicationStatusFunded:      true,
	models.ApplicationStatusDeclined:    true,
}

func PlanARFStatusUpdate(status models.ApplicationStatus, fundingDate *time.Time, now time.Time) (*StatusUpdateChanges, error) {
	if !arfUpdateStatuses[status] {
		return nil, &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("must be one of under_review, approved, funded, declined; got %q", status),
		}
	}

	changes := &StatusUpdateChanges{Status: status}

	switch status {
	case models.ApplicationStatusFunded:
		if fundingDate != nil {
			changes.FundingDate = fundingDate
		} else {
			changes.FundingDate = &now
		}
		changes.ProspectStatus = models.ProspectStatusFunded
	case models.ApplicationStatusDeclined:
		changes.ProspectStatus = models.ProspectStatusDeclined
	}

	return changes, nil
}
