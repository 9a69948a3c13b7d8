package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Local foreign-key parents must be declared before their children, or
// provisioning would add a constraint against a table that does not exist
// yet. This is the one structural rule the descriptor has to keep.
func TestLocalParentsPrecedeChildren(t *testing.T) {
	position := make(map[string]int, len(TrackedTables))
	for i, tbl := range TrackedTables {
		position[tbl.Name] = i
	}

	for i, tbl := range TrackedTables {
		for _, fk := range tbl.LocalFKs {
			parentPos, ok := position[fk.ParentTable]
			require.True(t, ok, "table %s has local FK to untracked table %s", tbl.Name, fk.ParentTable)
			assert.Less(t, parentPos, i,
				"parent %s must be declared before child %s", fk.ParentTable, tbl.Name)
		}
	}
}

func TestTrackedTableNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, tbl := range TrackedTables {
		assert.False(t, seen[tbl.Name], "duplicate tracked table %s", tbl.Name)
		seen[tbl.Name] = true
	}
}

// Shared parents live outside the worker schema and must be schema-qualified
// so the clone keeps pointing at the canonical location.
func TestSharedParentsAreQualified(t *testing.T) {
	for _, tbl := range TrackedTables {
		for _, fk := range tbl.SharedFKs {
			assert.True(t, strings.Contains(fk.ParentTable, "."),
				"shared FK parent %s on %s should be schema-qualified", fk.ParentTable, tbl.Name)
			assert.False(t, strings.HasPrefix(fk.ParentTable, CanonicalSchema+"."),
				"shared FK parent %s on %s would be cloned away; track it or share it, not both",
				fk.ParentTable, tbl.Name)
		}
	}
}

func TestNamesMatchesDeclaredOrder(t *testing.T) {
	names := Names()
	require.Len(t, names, len(TrackedTables))
	for i, tbl := range TrackedTables {
		assert.Equal(t, tbl.Name, names[i])
	}
}
