// internal/pipeline/cleanup_test.go
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesTestData(t *testing.T) {
	matches := []string{
		"TechStart Solutions",
		"techstart solutions LLC",
		"Metro Restaurant Group",
		"My Test Company",
		"SAMPLE business",
		"Demo Account",
		"Example Corp",
	}
	for _, name := range matches {
		assert.True(t, MatchesTestData(name), "%q should match", name)
	}

	assert.False(t, MatchesTestData("Riverside Plumbing"))
	assert.False(t, MatchesTestData("Atlas Manufacturing"))
	assert.False(t, MatchesTestData(""))
}

func TestMatchesTestDataIsSubstringBased(t *testing.T) {
	// Substring semantics are intentional; "Contest" contains "test".
	assert.True(t, MatchesTestData("Contest Winners Inc"))
}
