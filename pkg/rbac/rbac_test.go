package rbac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleUser, PermissionManageSteps))
	assert.True(t, HasPermission(RoleCLI, PermissionLogHistory))
	assert.True(t, HasPermission(RoleCLI, PermissionReadBoard))
	assert.False(t, HasPermission(RoleCLI, PermissionDeleteTask))
	assert.False(t, HasPermission(RoleCLI, PermissionIssueCLI))
	assert.False(t, HasPermission("ghost", PermissionReadBoard))
}

func TestCheckPermission(t *testing.T) {
	assert.NoError(t, CheckPermission(RoleUser, PermissionDeleteTask))

	err := CheckPermission(RoleCLI, PermissionManageTeams)
	var denied *PermissionDeniedError
	assert.True(t, errors.As(err, &denied))
	assert.Equal(t, PermissionManageTeams, denied.Permission)
}
