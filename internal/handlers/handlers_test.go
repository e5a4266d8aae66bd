// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// Validation short-circuits before any service call, so these suites run the
// handlers against nil services and never need a database.
type ValidationTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *ValidationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	prospectHandler := NewProspectHandler(nil)
	conversationHandler := NewConversationHandler(nil)
	applicationHandler := NewApplicationHandler(nil, nil)
	discoveryHandler := NewDiscoveryHandler(nil)

	s.router.POST("/prospects", prospectHandler.CreateProspect)
	s.router.GET("/prospects/:id", prospectHandler.GetProspect)
	s.router.POST("/prospects/bulk-import", prospectHandler.BulkImport)
	s.router.POST("/webhooks/conversation-update", conversationHandler.ConversationUpdate)
	s.router.POST("/webhooks/arf-submission", applicationHandler.ARFSubmission)
	s.router.PUT("/webhooks/arf-submission", applicationHandler.ARFStatusUpdate)
	s.router.POST("/webhooks/application-completed", applicationHandler.ApplicationCompleted)
	s.router.POST("/applications/:id/documents", applicationHandler.UploadDocument)
	s.router.POST("/discovery/trigger", discoveryHandler.Trigger)
}

func (s *ValidationTestSuite) postJSON(method, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ValidationTestSuite) assertErrorEnvelope(w *httptest.ResponseRecorder) {
	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(s.T(), response["success"].(bool))
	assert.NotNil(s.T(), response["error"])
}

func (s *ValidationTestSuite) TestCreateProspectRequiresBusinessName() {
	w := s.postJSON("POST", "/prospects", map[string]interface{}{
		"industry": "trucking",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func (s *ValidationTestSuite) TestCreateProspectRejectsMalformedBody() {
	req, _ := http.NewRequest("POST", "/prospects", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *ValidationTestSuite) TestBulkImportRejectsEmptyBatch() {
	w := s.postJSON("POST", "/prospects/bulk-import", map[string]interface{}{
		"prospects": []interface{}{},
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func (s *ValidationTestSuite) TestBulkImportReportsPerRecordFailures() {
	// One invalid record fails the whole batch before anything is inserted.
	w := s.postJSON("POST", "/prospects/bulk-import", map[string]interface{}{
		"prospects": []map[string]interface{}{
			{"business_name": "Good Co", "industry": "retail"},
			{"business_name": "", "industry": "trucking"},
		},
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func (s *ValidationTestSuite) TestGetProspectRejectsBadID() {
	req, _ := http.NewRequest("GET", "/prospects/not-a-uuid", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *ValidationTestSuite) TestConversationUpdateRequiresAnID() {
	w := s.postJSON("POST", "/webhooks/conversation-update", map[string]interface{}{
		"message": "hello",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func (s *ValidationTestSuite) TestARFSubmissionRequiresAnID() {
	w := s.postJSON("POST", "/webhooks/arf-submission", map[string]interface{}{
		"arf_reference_number": "ARF-1",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func (s *ValidationTestSuite) TestARFStatusUpdateRequiresStatus() {
	w := s.postJSON("PUT", "/webhooks/arf-submission", map[string]interface{}{
		"arf_reference_number": "ARF-1",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func (s *ValidationTestSuite) TestARFStatusUpdateRequiresATarget() {
	w := s.postJSON("PUT", "/webhooks/arf-submission", map[string]interface{}{
		"status": "funded",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func (s *ValidationTestSuite) TestApplicationCompletedRequiresProspectID() {
	w := s.postJSON("POST", "/webhooks/application-completed", map[string]interface{}{
		"loan_amount": 100000,
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func (s *ValidationTestSuite) TestUploadDocumentRejectsBadID() {
	w := s.postJSON("POST", "/applications/nope/documents", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *ValidationTestSuite) TestDiscoveryTriggerRequiresIndustries() {
	w := s.postJSON("POST", "/discovery/trigger", map[string]interface{}{
		"locations":              []string{"Austin, TX"},
		"prospects_per_industry": 10,
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func (s *ValidationTestSuite) TestDiscoveryTriggerRequiresPositiveCount() {
	w := s.postJSON("POST", "/discovery/trigger", map[string]interface{}{
		"industries":             []string{"trucking"},
		"locations":              []string{"Austin, TX"},
		"prospects_per_industry": 0,
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.assertErrorEnvelope(w)
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}
