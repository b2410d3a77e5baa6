package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminHoldsEveryGrantedPermission(t *testing.T) {
	require.NoError(t, AssertAdminSuperset())

	for _, role := range []Role{RoleUser, RoleAgent} {
		for _, perm := range AllPermissions() {
			if HasPermission(role, perm) {
				assert.True(t, HasPermission(RoleAdmin, perm),
					"%s holds %s but ADMIN does not", role, perm)
			}
		}
	}
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleUser, PermReadCatalog))
	assert.True(t, HasPermission(RoleUser, PermCreateRecord))
	assert.False(t, HasPermission(RoleUser, PermManageUsers))
	assert.False(t, HasPermission(RoleUser, PermApproveRecord))

	assert.True(t, HasPermission(RoleAgent, PermManageSessions))
	assert.False(t, HasPermission(RoleAgent, PermCreateRecord))
	assert.False(t, HasPermission(RoleAgent, PermManageUsers))

	assert.True(t, HasPermission(RoleAdmin, PermManageUsers))
	assert.True(t, HasPermission(RoleAdmin, PermManageSystem))
}

func TestHasPermissionUnknownRole(t *testing.T) {
	assert.False(t, HasPermission(Role("SUPERUSER"), PermReadProfile))
}

func TestHasAnyPermission(t *testing.T) {
	assert.True(t, HasAnyPermission(RoleUser, PermManageUsers, PermReadProfile))
	assert.False(t, HasAnyPermission(RoleUser, PermManageUsers, PermManageSystem))
	assert.False(t, HasAnyPermission(RoleUser))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("AGENT")
	require.NoError(t, err)
	assert.Equal(t, RoleAgent, role)

	_, err = ParseRole("agent")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}
