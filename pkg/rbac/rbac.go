package rbac

// Roles known to the system.
const (
	RoleAdmin          = "admin"
	RoleDesigner       = "designer"
	RoleProjectManager = "project_manager"
	RoleSalesRep       = "sales_representative"
	RoleEmployee       = "employee"
)

// Permission vocabulary.
const (
	PermissionCreateProject = "create_project"
	PermissionEditProject   = "edit_project"
	PermissionDeleteProject = "delete_project"
	PermissionViewAllTasks  = "view_all_tasks"
	PermissionManageUsers   = "manage_users"
	PermissionViewReports   = "view_reports"
)

// rolePermissions maps each role to the permission set it implies.
// Permissions are always derived from this table, never granted ad hoc.
var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermissionCreateProject,
		PermissionEditProject,
		PermissionDeleteProject,
		PermissionViewAllTasks,
		PermissionManageUsers,
		PermissionViewReports,
	},
	RoleDesigner: {
		PermissionCreateProject,
		PermissionEditProject,
		PermissionViewAllTasks,
	},
	RoleProjectManager: {
		PermissionCreateProject,
		PermissionEditProject,
		PermissionViewAllTasks,
		PermissionViewReports,
	},
	RoleSalesRep: {
		PermissionViewAllTasks,
		PermissionViewReports,
	},
	RoleEmployee: {
		PermissionViewAllTasks,
	},
}

// Departments accepted on user records.
var Departments = []string{"Design", "Project Management", "Sales", "Administration", "Other"}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// IsValidDepartment reports whether department is one of the known departments.
func IsValidDepartment(department string) bool {
	for _, d := range Departments {
		if d == department {
			return true
		}
	}
	return false
}

// DefaultPermissions returns a copy of the permission set implied by role.
// Unknown roles get the employee baseline.
func DefaultPermissions(role string) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		perms = rolePermissions[RoleEmployee]
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission checks a permission against a resolved identity.
// Admins pass every check regardless of the permission list.
func HasPermission(role string, permissions []string, permission string) bool {
	if role == RoleAdmin {
		return true
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// PermissionDeniedError is returned when a permission check fails.
type PermissionDeniedError struct {
	UserID     int
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

// CheckPermission returns an error instead of a boolean, for use in middleware.
func CheckPermission(userID int, role string, permissions []string, permission string) error {
	if !HasPermission(role, permissions, permission) {
		return &PermissionDeniedError{
			UserID:     userID,
			Permission: permission,
		}
	}
	return nil
}
