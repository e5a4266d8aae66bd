// internal/models/prospect_test.go
package models

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProspectChildReferencesAreWeak(t *testing.T) {
	// Bulk-deleting prospects must orphan conversations and applications,
	// leaving their prospect_id intact. A constraint tag here would make
	// migration emit a real foreign key that nulls or blocks instead.
	typ := reflect.TypeOf(Prospect{})
	for _, name := range []string{"Conversations", "Applications"} {
		field, ok := typ.FieldByName(name)
		require.True(t, ok, "field %s missing", name)

		tag := field.Tag.Get("gorm")
		assert.Contains(t, tag, "foreignKey:ProspectID")
		assert.False(t, strings.Contains(tag, "constraint"),
			"%s must not declare a database constraint, got %q", name, tag)
	}
}
