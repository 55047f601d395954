package rbac

// Permissions
const (
	PermissionReadBoard     = "board:read"
	PermissionWriteTask     = "task:write"
	PermissionDeleteTask    = "task:delete"
	PermissionLogHistory    = "history:write"
	PermissionManageSteps   = "step:manage"
	PermissionManageTypes   = "type:manage"
	PermissionManageTeams   = "team:manage"
	PermissionManageProject = "project:manage"
	PermissionIssueCLI      = "cli:issue"
)

// Roles
const (
	// RoleUser is a browser session authenticated with a JWT.
	RoleUser = "user"
	// RoleCLI is the companion command-line client authenticated with an X-CLI-Token.
	RoleCLI = "cli"
)

var rolePermissions = map[string][]string{
	RoleUser: {
		PermissionReadBoard,
		PermissionWriteTask,
		PermissionDeleteTask,
		PermissionLogHistory,
		PermissionManageSteps,
		PermissionManageTypes,
		PermissionManageTeams,
		PermissionManageProject,
		PermissionIssueCLI,
	},
	RoleCLI: {
		PermissionReadBoard,
		PermissionWriteTask,
		PermissionLogHistory,
	},
}

// HasPermission reports whether role grants perm.
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission is HasPermission returning a *PermissionDeniedError.
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError is returned when a role lacks a permission.
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
