// internal/services/prospect_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arflow/pipeline-backend/internal/models"
)

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func TestValidateImportRecordsAcceptsCleanBatch(t *testing.T) {
	records := []CreateProspectRequest{
		{
			BusinessName:     "  Riverside Plumbing  ",
			Industry:         "construction",
			ContactName:      strPtr("Dana Ortiz"),
			Email:            strPtr("dana@riverside.com"),
			EstimatedRevenue: f64Ptr(750000),
		},
		{
			BusinessName: "Atlas Manufacturing",
			Industry:     "manufacturing",
		},
	}

	rows, errs := ValidateImportRecords(records)
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	assert.Equal(t, "Riverside Plumbing", rows[0].BusinessName)
	assert.Equal(t, models.ProspectStatusNew, rows[0].Status)
	require.NotNil(t, rows[0].Email)
	assert.Equal(t, "dana@riverside.com", *rows[0].Email)

	assert.Nil(t, rows[1].Email)
	assert.Equal(t, models.ProspectStatusNew, rows[1].Status)
}

func TestValidateImportRecordsReportsMissingBusinessName(t *testing.T) {
	records := []CreateProspectRequest{
		{BusinessName: "   ", Industry: "trucking"},
	}

	rows, errs := ValidateImportRecords(records)
	assert.Empty(t, rows)
	require.Len(t, errs, 1)
	assert.Equal(t, 0, errs[0].Index)
	assert.Equal(t, "business_name", errs[0].Field)
}

func TestValidateImportRecordsReportsEveryFailure(t *testing.T) {
	records := []CreateProspectRequest{
		{BusinessName: "Good Co", Industry: "retail"},
		{
			BusinessName:     "",
			Industry:         "",
			Email:            strPtr("not-an-email"),
			EstimatedRevenue: f64Ptr(-5),
		},
	}

	rows, errs := ValidateImportRecords(records)

	// The clean record still validates; the bad one reports each field.
	require.Len(t, rows, 1)
	assert.Equal(t, "Good Co", rows[0].BusinessName)

	require.Len(t, errs, 4)
	for _, e := range errs {
		assert.Equal(t, 1, e.Index)
	}
}

func TestValidateImportRecordsSkipsBlankOptionalFields(t *testing.T) {
	records := []CreateProspectRequest{
		{
			BusinessName: "Harbor Cafe",
			Industry:     "restaurants",
			Email:        strPtr("   "),
			Phone:        strPtr(""),
		},
	}

	rows, errs := ValidateImportRecords(records)
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Email)
	assert.Nil(t, rows[0].Phone)
}
