package rbac

import (
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/ledger"
)

// Role is the role assigned to a user
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleOptometrist     Role = "optometrist"
	RoleOphthalmologist Role = "ophthalmologist"
	RoleStaff           Role = "staff"
	RolePatient         Role = "patient"
)

// Roles returns every role
func Roles() []Role {
	return []Role{RoleAdmin, RoleOptometrist, RoleOphthalmologist, RoleStaff, RolePatient}
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := defaultPermissions[r]
	return ok
}

// ParseRole parses a role name
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Permission is an atomic capability
type Permission string

const (
	PermissionManageUsers  Permission = "manage_users"
	PermissionWriteRecord  Permission = "write_record"
	PermissionManageAccess Permission = "manage_access"
	PermissionSystemAdmin  Permission = "system_admin"
)

// Permissions returns every permission
func Permissions() []Permission {
	return []Permission{
		PermissionManageUsers,
		PermissionWriteRecord,
		PermissionManageAccess,
		PermissionSystemAdmin,
	}
}

// Valid reports whether p is a known permission
func (p Permission) Valid() bool {
	switch p {
	case PermissionManageUsers, PermissionWriteRecord, PermissionManageAccess, PermissionSystemAdmin:
		return true
	}
	return false
}

// ParsePermission parses a permission name
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission %q", s)
	}
	return p, nil
}

// RoleAssignment is a user's current role
type RoleAssignment struct {
	Role          Role             `json:"role"`
	EffectiveFrom ledger.Timestamp `json:"effective_from"`
}

// Overrides are the per-user permission markers layered over role defaults
type Overrides struct {
	Granted []Permission `json:"granted,omitempty"`
	Revoked []Permission `json:"revoked,omitempty"`
}

// Delegation lets Delegatee act on Delegator's resources with Role's default
// permissions until ExpiresAt
type Delegation struct {
	Delegator ledger.Address   `json:"delegator"`
	Delegatee ledger.Address   `json:"delegatee"`
	Role      Role             `json:"role"`
	ExpiresAt ledger.Timestamp `json:"expires_at"`
}

// Active reports whether the delegation is live at now
func (d Delegation) Active(now ledger.Timestamp) bool {
	return now < d.ExpiresAt
}
