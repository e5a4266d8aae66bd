// internal/pipeline/plans_test.go
package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arflow/pipeline-backend/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func TestCommissionAmount(t *testing.T) {
	got := CommissionAmount(floatPtr(150000), 0.02)
	require.NotNil(t, got)
	assert.InDelta(t, 3000.0, *got, 0.001)

	got = CommissionAmount(floatPtr(150000), 0.035)
	require.NotNil(t, got)
	assert.InDelta(t, 5250.0, *got, 0.001)

	assert.Nil(t, CommissionAmount(nil, 0.02))
}

func TestValidateScoreRejectsOutOfRange(t *testing.T) {
	assert.NoError(t, ValidateScore(0))
	assert.NoError(t, ValidateScore(50))
	assert.NoError(t, ValidateScore(100))

	for _, score := range []int{-1, 101, 500} {
		err := ValidateScore(score)
		require.Error(t, err)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "qualification_score", vErr.Field)
	}
}

func TestPlanOutreach(t *testing.T) {
	now := time.Now()
	p := &models.Prospect{
		BaseModel:    models.BaseModel{ID: uuid.New()},
		BusinessName: "Acme Freight",
		Status:       models.ProspectStatusNew,
	}

	plan, ok := PlanOutreach(p, "hello", 45, now)
	require.True(t, ok)
	assert.Equal(t, models.ProspectStatusContacted, plan.ProspectStatus)
	assert.Equal(t, models.ChannelEmail, plan.Conversation.Channel)
	require.Len(t, plan.Conversation.Messages, 1)
	assert.Equal(t, models.MessageOutbound, plan.Conversation.Messages[0].Type)
	assert.Equal(t, "hello", plan.Conversation.Messages[0].Content)
	require.NotNil(t, plan.Conversation.QualificationScore)
	assert.Equal(t, 45, *plan.Conversation.QualificationScore)
	require.NotNil(t, plan.Conversation.ProspectID)
	assert.Equal(t, p.ID, *plan.Conversation.ProspectID)
}

func TestPlanOutreachSkipsAdvancedProspects(t *testing.T) {
	for _, status := range []models.ProspectStatus{
		models.ProspectStatusContacted,
		models.ProspectStatusQualified,
		models.ProspectStatusFunded,
	} {
		p := &models.Prospect{Status: status}
		_, ok := PlanOutreach(p, "hello", 45, time.Now())
		assert.False(t, ok, "status %s should be skipped", status)
	}
}

func TestPlanConversationUpdateAppendsMessages(t *testing.T) {
	now := time.Now()
	conv := &models.Conversation{
		Messages: models.MessageList{
			{Timestamp: now.Add(-2 * time.Hour), Type: models.MessageOutbound, Content: "first"},
			{Timestamp: now.Add(-1 * time.Hour), Type: models.MessageInbound, Content: "second"},
		},
	}

	changes, err := PlanConversationUpdate(conv, ConversationUpdate{
		Message: &models.Message{Content: "third"},
	}, now)
	require.NoError(t, err)

	// Existing order preserved, new message appended last.
	require.Len(t, changes.Messages, 3)
	assert.Equal(t, "first", changes.Messages[0].Content)
	assert.Equal(t, "second", changes.Messages[1].Content)
	assert.Equal(t, "third", changes.Messages[2].Content)

	// Defaults fill in for a bare message.
	assert.Equal(t, models.MessageInbound, changes.Messages[2].Type)
	assert.Equal(t, now, changes.Messages[2].Timestamp)

	// The stored slice was not mutated.
	assert.Len(t, conv.Messages, 2)
}

func TestPlanConversationUpdatePromotesOnQualifiedFlip(t *testing.T) {
	conv := &models.Conversation{Qualified: false}

	changes, err := PlanConversationUpdate(conv, ConversationUpdate{
		Qualified:          boolPtr(true),
		QualificationScore: intPtr(85),
	}, time.Now())
	require.NoError(t, err)
	assert.True(t, changes.PromoteProspect)
}

func TestPlanConversationUpdateNoPromotionWhenAlreadyQualified(t *testing.T) {
	conv := &models.Conversation{Qualified: true}

	changes, err := PlanConversationUpdate(conv, ConversationUpdate{
		Qualified: boolPtr(true),
	}, time.Now())
	require.NoError(t, err)
	assert.False(t, changes.PromoteProspect)
}

func TestPlanConversationUpdateRejectsBadScore(t *testing.T) {
	conv := &models.Conversation{}
	_, err := PlanConversationUpdate(conv, ConversationUpdate{
		QualificationScore: intPtr(150),
	}, time.Now())
	assert.Error(t, err)
}

func TestPlanApplicationCompletionMergesData(t *testing.T) {
	existing := &models.Application{
		ApplicationData: models.JSONB{
			"business_type": "LLC",
			"years":         float64(5),
		},
	}

	changes, err := PlanApplicationCompletion(existing, CompletionInput{
		Data: models.JSONB{
			"years":   float64(6),
			"revenue": float64(900000),
		},
		LoanAmount:     floatPtr(250000),
		CommissionRate: 0.02,
	})
	require.NoError(t, err)

	// Merged key-by-key: untouched keys survive, incoming keys win.
	assert.Equal(t, "LLC", changes.Data["business_type"])
	assert.Equal(t, float64(6), changes.Data["years"])
	assert.Equal(t, float64(900000), changes.Data["revenue"])

	require.NotNil(t, changes.CommissionAmount)
	assert.InDelta(t, 5000.0, *changes.CommissionAmount, 0.001)
	assert.Equal(t, models.ApplicationStatusDraft, changes.Status)
}

func TestPlanApplicationCompletionRejectsBadTerms(t *testing.T) {
	_, err := PlanApplicationCompletion(nil, CompletionInput{
		LoanAmount:     floatPtr(-100),
		CommissionRate: 0.02,
	})
	assert.Error(t, err)

	_, err = PlanApplicationCompletion(nil, CompletionInput{
		LoanAmount:     floatPtr(100000),
		CommissionRate: 1.5,
	})
	assert.Error(t, err)

	_, err = PlanApplicationCompletion(nil, CompletionInput{
		LoanAmount:     floatPtr(100000),
		CommissionRate: 0,
	})
	assert.Error(t, err)
}

func TestPlanARFSubmission(t *testing.T) {
	now := time.Now()
	app := &models.Application{
		ApplicationData: models.JSONB{"business_type": "LLC"},
	}

	changes, err := PlanARFSubmission(app, SubmissionInput{
		ReferenceNumber: "ARF-2024-0117",
		Notes:           "complete package",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusSubmitted, changes.Status)
	assert.Equal(t, now, changes.SubmissionDate)
	assert.Equal(t, "LLC", changes.Data["business_type"])

	sub, ok := changes.Data["arf_submission"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ARF-2024-0117", sub["arf_reference_number"])
	assert.Equal(t, "complete package", sub["submission_notes"])
}

func TestPlanARFSubmissionRejectsResubmission(t *testing.T) {
	app := &models.Application{SubmittedToARF: true}
	_, err := PlanARFSubmission(app, SubmissionInput{}, time.Now())
	require.Error(t, err)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestPlanARFSubmissionKeepsHistoryOfPriorEntry(t *testing.T) {
	app := &models.Application{
		ApplicationData: models.JSONB{
			"arf_submission": map[string]interface{}{"arf_reference_number": "OLD-1"},
		},
	}

	changes, err := PlanARFSubmission(app, SubmissionInput{ReferenceNumber: "NEW-2"}, time.Now())
	require.NoError(t, err)

	history, ok := changes.Data["arf_submission_history"].([]interface{})
	require.True(t, ok)
	require.Len(t, history, 1)

	sub := changes.Data["arf_submission"].(map[string]interface{})
	assert.Equal(t, "NEW-2", sub["arf_reference_number"])
}

func TestPlanARFStatusUpdateFunded(t *testing.T) {
	now := time.Now()

	changes, err := PlanARFStatusUpdate(models.ApplicationStatusFunded, nil, now)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusFunded, changes.Status)
	require.NotNil(t, changes.FundingDate)
	assert.Equal(t, now, *changes.FundingDate)
	assert.Equal(t, models.ProspectStatusFunded, changes.ProspectStatus)

	explicit := now.Add(-24 * time.Hour)
	changes, err = PlanARFStatusUpdate(models.ApplicationStatusFunded, &explicit, now)
	require.NoError(t, err)
	assert.Equal(t, explicit, *changes.FundingDate)
}

func TestPlanARFStatusUpdateDeclined(t *testing.T) {
	changes, err := PlanARFStatusUpdate(models.ApplicationStatusDeclined, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.ProspectStatusDeclined, changes.ProspectStatus)
	assert.Nil(t, changes.FundingDate)
}

func TestPlanARFStatusUpdateIntermediateDoesNotTouchProspect(t *testing.T) {
	for _, status := range []models.ApplicationStatus{
		models.ApplicationStatusUnderReview,
		models.ApplicationStatusApproved,
	} {
		changes, err := PlanARFStatusUpdate(status, nil, time.Now())
		require.NoError(t, err)
		assert.Empty(t, changes.ProspectStatus)
		assert.Nil(t, changes.FundingDate)
	}
}

func TestPlanARFStatusUpdateRejectsUnknownStatus(t *testing.T) {
	for _, status := range []models.ApplicationStatus{"draft", "submitted", "pending", ""} {
		_, err := PlanARFStatusUpdate(status, nil, time.Now())
		assert.Error(t, err, "status %q should be rejected", status)
	}
}
