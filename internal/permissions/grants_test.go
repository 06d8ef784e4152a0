package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pharmagdd/catalog/internal/models"
)

func TestUnrestrictedAllowsAnyCode(t *testing.T) {
	grants := Unrestricted()

	for _, code := range []string{"products.update", "products.price.update", "users.delete", "not.even.registered"} {
		require.True(t, grants.Allows(code), code)
	}
}

func TestRestrictedAllowsOnlyMembers(t *testing.T) {
	grants := Restricted("products.read", "products.update")

	require.True(t, grants.Allows("products.update"))
	require.False(t, grants.Allows("products.price.update"))
	require.False(t, grants.Allows("users.read"))
}

func TestForRoleMapsBooleanToVariants(t *testing.T) {
	unrestricted := ForRole(&models.Role{Code: "super_admin", AllPermissions: true})
	require.True(t, unrestricted.IsUnrestricted())
	// The explicit set is irrelevant once unrestricted.
	require.True(t, unrestricted.Allows("roles.update"))

	restricted := ForRole(&models.Role{
		Code: "catalog",
		Permissions: []models.Permission{
			{Code: "products.read"},
			{Code: "products.update"},
		},
	})
	require.False(t, restricted.IsUnrestricted())
	require.True(t, restricted.Allows("products.read"))
	require.False(t, restricted.Allows("products.price.update"))
}

func TestForRoleNilRoleGrantsNothing(t *testing.T) {
	grants := ForRole(nil)

	require.False(t, grants.IsUnrestricted())
	require.Empty(t, grants.Codes())
	require.False(t, grants.Allows("products.read"))
}

func TestGrantsCodesSorted(t *testing.T) {
	grants := Restricted("users.read", "products.read", "admins.read")
	require.Equal(t, []string{"admins.read", "products.read", "users.read"}, grants.Codes())
}
