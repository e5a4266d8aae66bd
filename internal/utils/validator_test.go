// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"owner@acmefreight.com",
		"first.last@sub.example.co",
		"x@y.io",
	}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), "%q should be valid", email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@missinglocal.com",
		"missing-domain@",
		"spaces in@example.com",
		"no-tld@example",
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), "%q should be invalid", email)
	}
}

func TestGetValidationErrors(t *testing.T) {
	type form struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
		Score int    `json:"score" validate:"gte=0,lte=100"`
	}

	errs := GetValidationErrors(ValidateStruct(&form{Score: 150}))
	assert.Len(t, errs, 3)

	errs = GetValidationErrors(ValidateStruct(&form{
		Name:  "ok",
		Email: "owner@example.com",
		Score: 80,
	}))
	assert.Empty(t, errs)
}
