// internal/pipeline/transitions.go
package pipeline

import (
	"github.com/arflow/pipeline-backend/internal/models"
)

// Prospect statuses are ordered; events may only move a prospect forward.
// Funded and declined are terminal.
var statusRank = map[models.ProspectStatus]int{
	models.ProspectStatusNew:         0,
	models.ProspectStatusContacted:   1,
	models.ProspectStatusQualified:   2,
	models.ProspectStatusApplication: 3,
	models.ProspectStatusSubmitted:   4,
	models.ProspectStatusFunded:      5,
	models.ProspectStatusDeclined:    5,
}

func IsValidStatus(s models.ProspectStatus) bool {
	_, ok := statusRank[s]
	return ok
}

func IsTerminal(s models.ProspectStatus) bool {
	return s == models.ProspectStatusFunded || s == models.ProspectStatusDeclined
}

// Advance returns the status a prospect should carry after an event that
// targets the given status. The transition is applied only when it moves the
// prospect strictly forward in the ordering and the current status is not
// terminal; otherwise the current status is kept and false is returned.
func Advance(current, target models.ProspectStatus) (models.ProspectStatus, bool) {
	if IsTerminal(current) {
		return current, false
	}

	currentRank, ok := statusRank[current]
	if !ok {
		// Unknown stored status: treat as new so the row can recover.
		currentRank = 0
	}

	targetRank, ok := statusRank[target]
	if !ok {
		return current, false
	}

	if targetRank <= currentRank {
		return current, false
	}

	return target, true
}
