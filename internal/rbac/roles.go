package rbac

// Role names carried in operator tokens. They are part of the token
// contract; renaming one invalidates issued tokens.
const (
	RoleOwner      = "owner"
	RoleManager    = "manager"
	RoleViewer     = "viewer"
	RoleSuperAdmin = "super_admin"
)

var knownRoles = map[string]struct{}{
	RoleOwner:      {},
	RoleManager:    {},
	RoleViewer:     {},
	RoleSuperAdmin: {},
}

// Editors may change routing.
var Editors = []string{RoleOwner, RoleManager}

// Readers may view routing.
var Readers = []string{RoleOwner, RoleManager, RoleViewer}

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsKnown(role string) bool {
	_, ok := knownRoles[role]
	return ok
}
