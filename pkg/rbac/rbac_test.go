package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPermissions(t *testing.T) {
	tests := []struct {
		role string
		want []string
	}{
		{RoleAdmin, []string{
			PermissionCreateProject,
			PermissionEditProject,
			PermissionDeleteProject,
			PermissionViewAllTasks,
			PermissionManageUsers,
			PermissionViewReports,
		}},
		{RoleDesigner, []string{
			PermissionCreateProject,
			PermissionEditProject,
			PermissionViewAllTasks,
		}},
		{RoleProjectManager, []string{
			PermissionCreateProject,
			PermissionEditProject,
			PermissionViewAllTasks,
			PermissionViewReports,
		}},
		{RoleSalesRep, []string{
			PermissionViewAllTasks,
			PermissionViewReports,
		}},
		{RoleEmployee, []string{
			PermissionViewAllTasks,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultPermissions(tt.role))
		})
	}
}

func TestDefaultPermissionsUnknownRoleGetsEmployeeBaseline(t *testing.T) {
	assert.Equal(t, DefaultPermissions(RoleEmployee), DefaultPermissions("intern"))
}

func TestDefaultPermissionsReturnsCopy(t *testing.T) {
	perms := DefaultPermissions(RoleEmployee)
	require.NotEmpty(t, perms)
	perms[0] = "mutated"

	assert.Equal(t, PermissionViewAllTasks, DefaultPermissions(RoleEmployee)[0])
}

func TestHasPermissionAdminBypassesList(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, nil, PermissionDeleteProject))
}

func TestHasPermission(t *testing.T) {
	perms := DefaultPermissions(RoleDesigner)

	assert.True(t, HasPermission(RoleDesigner, perms, PermissionEditProject))
	assert.False(t, HasPermission(RoleDesigner, perms, PermissionManageUsers))
}

func TestCheckPermission(t *testing.T) {
	err := CheckPermission(7, RoleEmployee, DefaultPermissions(RoleEmployee), PermissionManageUsers)
	require.Error(t, err)

	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, 7, denied.UserID)
	assert.Equal(t, PermissionManageUsers, denied.Permission)

	assert.NoError(t, CheckPermission(7, RoleEmployee, DefaultPermissions(RoleEmployee), PermissionViewAllTasks))
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleDesigner, RoleProjectManager, RoleSalesRep, RoleEmployee} {
		assert.True(t, IsValidRole(role), role)
	}
	assert.False(t, IsValidRole("superuser"))
	assert.False(t, IsValidRole(""))
}

func TestIsValidDepartment(t *testing.T) {
	assert.True(t, IsValidDepartment("Project Management"))
	assert.False(t, IsValidDepartment("Engineering"))
}
