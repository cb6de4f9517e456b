package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	p, ok := Normalize("view_inventory")
	require.True(t, ok)
	assert.Equal(t, PermViewInventory, p)

	p, ok = Normalize("  View_Inventory ")
	require.True(t, ok)
	assert.Equal(t, PermViewInventory, p)

	_, ok = Normalize("launch_missiles")
	assert.False(t, ok)

	_, ok = Normalize("")
	assert.False(t, ok)
}

func TestNormalizeSet(t *testing.T) {
	valid, invalid := NormalizeSet([]string{
		"edit_inventory",
		"EDIT_INVENTORY",
		"view_projects",
		"bogus",
		"edit_inventory",
	})

	assert.Equal(t, []Permission{PermEditInventory, PermViewProjects}, valid)
	assert.Equal(t, []string{"bogus"}, invalid)
}

func TestNormalizeSetEmpty(t *testing.T) {
	valid, invalid := NormalizeSet(nil)
	assert.Empty(t, valid)
	assert.Empty(t, invalid)
}

func TestCatalogCoversAllPermissions(t *testing.T) {
	for _, p := range AllPermissions {
		got, ok := Normalize(string(p))
		require.True(t, ok, "catalog entry %q must normalize", p)
		assert.Equal(t, p, got)
	}
	assert.Len(t, AllPermissions, 15)
}

func TestStrings(t *testing.T) {
	out := Strings([]Permission{PermManageUsers, PermAssignPermissions})
	assert.Equal(t, []string{"manage_users", "assign_permissions"}, out)
	assert.NotNil(t, Strings(nil))
}
