// internal/pipeline/transitions_test.go
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arflow/pipeline-backend/internal/models"
)

func TestAdvanceMovesForward(t *testing.T) {
	next, changed := Advance(models.ProspectStatusNew, models.ProspectStatusContacted)
	assert.True(t, changed)
	assert.Equal(t, models.ProspectStatusContacted, next)

	next, changed = Advance(models.ProspectStatusContacted, models.ProspectStatusApplication)
	assert.True(t, changed)
	assert.Equal(t, models.ProspectStatusApplication, next)
}

func TestAdvanceNeverRegresses(t *testing.T) {
	// A prospect that already reached "application" must not fall back to
	// "qualified" when a late conversation event arrives.
	next, changed := Advance(models.ProspectStatusApplication, models.ProspectStatusQualified)
	assert.False(t, changed)
	assert.Equal(t, models.ProspectStatusApplication, next)

	next, changed = Advance(models.ProspectStatusSubmitted, models.ProspectStatusContacted)
	assert.False(t, changed)
	assert.Equal(t, models.ProspectStatusSubmitted, next)
}

func TestAdvanceSameStatusIsNoop(t *testing.T) {
	next, changed := Advance(models.ProspectStatusQualified, models.ProspectStatusQualified)
	assert.False(t, changed)
	assert.Equal(t, models.ProspectStatusQualified, next)
}

func TestTerminalStatusesAreFrozen(t *testing.T) {
	for _, terminal := range []models.ProspectStatus{
		models.ProspectStatusFunded,
		models.ProspectStatusDeclined,
	} {
		next, changed := Advance(terminal, models.ProspectStatusSubmitted)
		assert.False(t, changed, "terminal status %s must not change", terminal)
		assert.Equal(t, terminal, next)

		// Not even to the other terminal status.
		other := models.ProspectStatusFunded
		if terminal == models.ProspectStatusFunded {
			other = models.ProspectStatusDeclined
		}
		next, changed = Advance(terminal, other)
		assert.False(t, changed)
		assert.Equal(t, terminal, next)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.ProspectStatusFunded))
	assert.True(t, IsTerminal(models.ProspectStatusDeclined))
	assert.False(t, IsTerminal(models.ProspectStatusNew))
	assert.False(t, IsTerminal(models.ProspectStatusSubmitted))
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []models.ProspectStatus{
		models.ProspectStatusNew,
		models.ProspectStatusContacted,
		models.ProspectStatusQualified,
		models.ProspectStatusApplication,
		models.ProspectStatusSubmitted,
		models.ProspectStatusFunded,
		models.ProspectStatusDeclined,
	} {
		assert.True(t, IsValidStatus(s))
	}
	assert.False(t, IsValidStatus(models.ProspectStatus("archived")))
	assert.False(t, IsValidStatus(models.ProspectStatus("")))
}

func TestAdvanceTreatsUnknownStoredStatusAsNew(t *testing.T) {
	// A corrupted or legacy row should still be able to move forward.
	next, changed := Advance(models.ProspectStatus("legacy"), models.ProspectStatusContacted)
	assert.True(t, changed)
	assert.Equal(t, models.ProspectStatusContacted, next)
}
