package records

import (
	"context"
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
)

// RegisterUser stores a user profile and assigns its role
func (s *Service) RegisterUser(ctx context.Context, caller, user ledger.Address, role rbac.Role, name string) error {
	return s.mutate(ctx, "register_user", audit.EventTypeUserRegistered, caller, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeUser, string(user))
		c.meta("role", string(role))

		if user == "" {
			return fmt.Errorf("%w: empty user address", ErrInvalidInput)
		}
		if !role.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
		}
		if err := c.requireRoleAuthority(caller, role); err != nil {
			return err
		}

		now := c.tx.Now()
		profile := User{
			Address:      user,
			Role:         role,
			Name:         name,
			RegisteredAt: now,
			Active:       true,
		}
		if err := c.tx.Set(userKey(user), profile); err != nil {
			return err
		}
		return c.rbac.AssignRole(user, role, now)
	})
}

// GetUser returns a registered user
func (s *Service) GetUser(ctx context.Context, user ledger.Address) (*User, error) {
	var profile User
	err := s.view(ctx, "get_user", func(c *call) error {
		ok, err := c.tx.Get(userKey(user), &profile)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrUserNotFound, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// AssignRole sets user's role. Existing overrides and delegations are kept.
func (s *Service) AssignRole(ctx context.Context, caller, user ledger.Address, role rbac.Role) error {
	return s.mutate(ctx, "assign_role", audit.EventTypeRoleAssigned, caller, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeUser, string(user))
		c.meta("role", string(role))

		if !role.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
		}
		if err := c.requireRoleAuthority(caller, role); err != nil {
			return err
		}

		if err := c.rbac.AssignRole(user, role, c.tx.Now()); err != nil {
			return err
		}

		var profile User
		ok, err := c.tx.Get(userKey(user), &profile)
		if err != nil || !ok {
			return err
		}
		profile.Role = role
		return c.tx.Set(userKey(user), profile)
	})
}

// GetRole returns user's current role assignment
func (s *Service) GetRole(ctx context.Context, user ledger.Address) (*rbac.RoleAssignment, error) {
	var ra *rbac.RoleAssignment
	err := s.view(ctx, "get_role", func(c *call) error {
		var err error
		ra, err = c.rbac.GetRole(user)
		return mapRBACError(err)
	})
	return ra, err
}

// GrantCustomPermission adds an explicit grant on top of user's role defaults
func (s *Service) GrantCustomPermission(ctx context.Context, caller, user ledger.Address, permission rbac.Permission) error {
	return s.changeOverride(ctx, "grant_permission", audit.EventTypePermissionGranted, caller, user, permission,
		func(c *call) error { return c.rbac.GrantCustomPermission(user, permission) })
}

// RevokeCustomPermission adds an explicit revoke, which masks the role default and any grant
func (s *Service) RevokeCustomPermission(ctx context.Context, caller, user ledger.Address, permission rbac.Permission) error {
	return s.changeOverride(ctx, "revoke_permission", audit.EventTypePermissionRevoked, caller, user, permission,
		func(c *call) error { return c.rbac.RevokeCustomPermission(user, permission) })
}

// ClearCustomPermission drops any grant or revoke of permission so the role default applies
func (s *Service) ClearCustomPermission(ctx context.Context, caller, user ledger.Address, permission rbac.Permission) error {
	return s.changeOverride(ctx, "clear_permission", audit.EventTypePermissionCleared, caller, user, permission,
		func(c *call) error { return c.rbac.ClearCustomPermission(user, permission) })
}

// requireRoleAuthority checks that caller may manage users and holds every
// permission role carries. System admins may hand out any role.
func (c *call) requireRoleAuthority(caller ledger.Address, role rbac.Role) error {
	if err := c.requirePermission(caller, rbac.PermissionManageUsers); err != nil {
		return err
	}
	sysAdmin, err := c.rbac.HasPermission(caller, rbac.PermissionSystemAdmin)
	if err != nil || sysAdmin {
		return err
	}
	ok, err := holdsRole(c.rbac, caller, role)
	if err := authorize(ok, err); err != nil {
		return fmt.Errorf("%w: %s does not hold role %s", err, caller, role)
	}
	return nil
}

// changeOverride applies a grant, revoke or clear of permission. The caller
// needs manage_users and must hold permission itself unless it is a system admin.
func (s *Service) changeOverride(ctx context.Context, op string, eventType audit.EventType, caller, user ledger.Address, permission rbac.Permission, apply func(c *call) error) error {
	return s.mutate(ctx, op, eventType, caller, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeUser, string(user))
		c.meta("permission", string(permission))

		if !permission.Valid() {
			return fmt.Errorf("%w: unknown permission %q", ErrInvalidInput, permission)
		}
		if err := c.requirePermission(caller, rbac.PermissionManageUsers); err != nil {
			return err
		}
		sysAdmin, err := c.rbac.HasPermission(caller, rbac.PermissionSystemAdmin)
		if err != nil {
			return err
		}
		if !sysAdmin {
			if err := c.requirePermission(caller, permission); err != nil {
				return err
			}
		}
		return mapRBACError(apply(c))
	})
}

// DelegateRole lets delegatee act with role's default permissions on the
// delegator's resources until expiresAt. The delegator must itself hold every
// permission the role carries.
func (s *Service) DelegateRole(ctx context.Context, delegator, delegatee ledger.Address, role rbac.Role, expiresAt ledger.Timestamp) error {
	return s.mutate(ctx, "delegate_role", audit.EventTypeRoleDelegated, delegator, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeUser, string(delegatee))
		c.meta("role", string(role))
		c.meta("expires_at", uint64(expiresAt))

		if !role.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
		}
		if delegatee == "" || delegatee == delegator {
			return fmt.Errorf("%w: delegatee must be another user", ErrInvalidInput)
		}
		if expiresAt <= c.tx.Now() {
			return fmt.Errorf("%w: delegation already expired", ErrInvalidInput)
		}

		ok, err := holdsRole(c.rbac, delegator, role)
		if err := authorize(ok, err); err != nil {
			return fmt.Errorf("%w: %s does not hold role %s", err, delegator, role)
		}
		return c.rbac.DelegateRole(delegator, delegatee, role, expiresAt)
	})
}

// GetDelegations lists the delegations made to user, expired ones included
func (s *Service) GetDelegations(ctx context.Context, user ledger.Address) ([]rbac.Delegation, error) {
	var delegations []rbac.Delegation
	err := s.view(ctx, "get_delegations", func(c *call) error {
		var err error
		delegations, err = c.rbac.GetDelegations(user)
		return err
	})
	return delegations, err
}

// CheckPermission resolves permission for user
func (s *Service) CheckPermission(ctx context.Context, user ledger.Address, permission rbac.Permission) (bool, error) {
	if !permission.Valid() {
		return false, fmt.Errorf("%w: unknown permission %q", ErrInvalidInput, permission)
	}
	var ok bool
	err := s.view(ctx, "check_permission", func(c *call) error {
		var err error
		ok, err = c.rbac.HasPermission(user, permission)
		return err
	})
	return ok, err
}

// GetPermissions returns user's effective permissions
func (s *Service) GetPermissions(ctx context.Context, user ledger.Address) ([]rbac.Permission, error) {
	var perms []rbac.Permission
	err := s.view(ctx, "get_permissions", func(c *call) error {
		var err error
		perms, err = c.rbac.EffectivePermissions(user)
		return err
	})
	return perms, err
}
