// internal/pipeline/cleanup.go
package pipeline

import "strings"

// TestDataPatterns are the business-name substrings the admin cleanup
// recognizes as seeded demo data. Matching is case-insensitive.
var TestDataPatterns = []string{
	"TechStart Solutions",
	"Metro Restaurant Group",
	"BuildRight Construction",
	"QuickShip Logistics",
	"GreenEnergy Corp",
	"RetailMax Stores",
	"MedEquip Supply",
	"AutoParts Plus",
	"Test",
	"Sample",
	"Demo",
	"Example",
}

func MatchesTestData(businessName string) bool {
	lower := strings.ToLower(businessName)
	for _, pattern := range TestDataPatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
