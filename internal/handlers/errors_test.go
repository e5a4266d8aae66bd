// internal/handlers/errors_test.go
package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/arflow/pipeline-backend/internal/pipeline"
	"github.com/arflow/pipeline-backend/internal/services"
)

func serveError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	handleServiceError(c, err)
	return w
}

func TestServiceErrorMapping(t *testing.T) {
	// A conversation event naming a prospect that doesn't exist is a
	// caller mistake, not a server fault.
	w := serveError(services.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serveError(services.ErrNoOpenApplication)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serveError(&pipeline.ValidationError{Field: "status", Message: "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serveError(errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServiceErrorMappingUnwrapsValidationErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), &pipeline.ValidationError{
		Field:   "qualification_score",
		Message: "must be between 0 and 100",
	})
	w := serveError(wrapped)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
