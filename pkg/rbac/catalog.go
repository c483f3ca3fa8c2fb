package rbac

var defaultPermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionSystemAdmin,
		PermissionManageUsers,
		PermissionWriteRecord,
		PermissionManageAccess,
	},
	RoleOptometrist:     {PermissionWriteRecord},
	RoleOphthalmologist: {PermissionWriteRecord, PermissionManageAccess},
	RoleStaff:           {PermissionManageUsers},
	RolePatient:         {},
}

// DefaultPermissions returns the role's default permission set. Unknown roles have none.
func DefaultPermissions(role Role) []Permission {
	perms := defaultPermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleGrants reports whether permission is in the role's default set
func RoleGrants(role Role, permission Permission) bool {
	return containsPermission(defaultPermissions[role], permission)
}

func containsPermission(perms []Permission, p Permission) bool {
	for _, q := range perms {
		if q == p {
			return true
		}
	}
	return false
}
