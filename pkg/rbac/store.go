package rbac

import (
	"errors"
	"fmt"
	"sort"

	"github.com/platinummonkey/visionrecords/pkg/ledger"
)

// ErrUserNotFound is returned when a user has no role assignment
var ErrUserNotFound = errors.New("user has no role assignment")

// Store reads and writes RBAC state inside one ledger invocation
type Store struct {
	tx *ledger.Tx
}

// NewStore creates a store bound to tx
func NewStore(tx *ledger.Tx) *Store {
	return &Store{tx: tx}
}

func roleKey(user ledger.Address) ledger.Key {
	return ledger.NewKey(ledger.KindRole, string(user))
}

func overridesKey(user ledger.Address) ledger.Key {
	return ledger.NewKey(ledger.KindPermissions, string(user))
}

func delegationsKey(delegatee ledger.Address) ledger.Key {
	return ledger.NewKey(ledger.KindDelegations, string(delegatee))
}

// AssignRole sets the user's role. Existing overrides and delegations are kept.
func (s *Store) AssignRole(user ledger.Address, role Role, effectiveFrom ledger.Timestamp) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	return s.tx.Set(roleKey(user), RoleAssignment{Role: role, EffectiveFrom: effectiveFrom})
}

// GetRole returns the user's role assignment
func (s *Store) GetRole(user ledger.Address) (*RoleAssignment, error) {
	var ra RoleAssignment
	ok, err := s.tx.Get(roleKey(user), &ra)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return &ra, nil
}

func (s *Store) requireUser(user ledger.Address) error {
	ok, err := s.tx.Has(roleKey(user))
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// GetOverrides returns the user's permission overrides
func (s *Store) GetOverrides(user ledger.Address) (*Overrides, error) {
	var o Overrides
	if _, err := s.tx.Get(overridesKey(user), &o); err != nil {
		return nil, fmt.Errorf("failed to get overrides: %w", err)
	}
	return &o, nil
}

func (s *Store) putOverrides(user ledger.Address, o *Overrides) error {
	if len(o.Granted) == 0 && len(o.Revoked) == 0 {
		return s.tx.Delete(overridesKey(user))
	}
	sortPermissions(o.Granted)
	sortPermissions(o.Revoked)
	return s.tx.Set(overridesKey(user), o)
}

// GrantCustomPermission marks permission as explicitly granted. An existing
// revoke of the same permission stays in force.
func (s *Store) GrantCustomPermission(user ledger.Address, permission Permission) error {
	if err := s.requireUser(user); err != nil {
		return err
	}
	o, err := s.GetOverrides(user)
	if err != nil {
		return err
	}
	o.Granted = addPermission(o.Granted, permission)
	return s.putOverrides(user, o)
}

// RevokeCustomPermission marks permission as explicitly revoked, masking both
// the role default and any grant
func (s *Store) RevokeCustomPermission(user ledger.Address, permission Permission) error {
	if err := s.requireUser(user); err != nil {
		return err
	}
	o, err := s.GetOverrides(user)
	if err != nil {
		return err
	}
	o.Revoked = addPermission(o.Revoked, permission)
	o.Granted = removePermission(o.Granted, permission)
	return s.putOverrides(user, o)
}

// ClearCustomPermission removes both markers for permission
func (s *Store) ClearCustomPermission(user ledger.Address, permission Permission) error {
	if err := s.requireUser(user); err != nil {
		return err
	}
	o, err := s.GetOverrides(user)
	if err != nil {
		return err
	}
	o.Granted = removePermission(o.Granted, permission)
	o.Revoked = removePermission(o.Revoked, permission)
	return s.putOverrides(user, o)
}

// HasPermission resolves permission for user: revoke, then grant, then role default.
// A user without a role assignment has no permissions.
func (s *Store) HasPermission(user ledger.Address, permission Permission) (bool, error) {
	ra, err := s.GetRole(user)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	o, err := s.GetOverrides(user)
	if err != nil {
		return false, err
	}

	switch {
	case containsPermission(o.Revoked, permission):
		return false, nil
	case containsPermission(o.Granted, permission):
		return true, nil
	default:
		return RoleGrants(ra.Role, permission), nil
	}
}

// EffectivePermissions lists every permission HasPermission would allow
func (s *Store) EffectivePermissions(user ledger.Address) ([]Permission, error) {
	var out []Permission
	for _, p := range Permissions() {
		ok, err := s.HasPermission(user, p)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// DelegateRole records that delegator lets delegatee act with role until expiresAt.
// A previous delegation between the same pair is replaced. The delegator's right
// to hand out role is not checked here.
func (s *Store) DelegateRole(delegator, delegatee ledger.Address, role Role, expiresAt ledger.Timestamp) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	delegations, err := s.GetDelegations(delegatee)
	if err != nil {
		return err
	}

	kept := delegations[:0]
	for _, d := range delegations {
		if d.Delegator != delegator {
			kept = append(kept, d)
		}
	}
	kept = append(kept, Delegation{
		Delegator: delegator,
		Delegatee: delegatee,
		Role:      role,
		ExpiresAt: expiresAt,
	})

	return s.tx.Set(delegationsKey(delegatee), kept)
}

// GetDelegations returns every delegation to delegatee, expired ones included
func (s *Store) GetDelegations(delegatee ledger.Address) ([]Delegation, error) {
	var delegations []Delegation
	if _, err := s.tx.Get(delegationsKey(delegatee), &delegations); err != nil {
		return nil, fmt.Errorf("failed to get delegations: %w", err)
	}
	return delegations, nil
}

// HasDelegatedPermission reports whether owner has a live delegation to actor
// whose role grants permission by default
func (s *Store) HasDelegatedPermission(owner, actor ledger.Address, permission Permission) (bool, error) {
	delegations, err := s.GetDelegations(actor)
	if err != nil {
		return false, err
	}

	now := s.tx.Now()
	for _, d := range delegations {
		if d.Delegator == owner && d.Active(now) && RoleGrants(d.Role, permission) {
			return true, nil
		}
	}
	return false, nil
}

func addPermission(perms []Permission, p Permission) []Permission {
	if containsPermission(perms, p) {
		return perms
	}
	return append(perms, p)
}

func removePermission(perms []Permission, p Permission) []Permission {
	out := perms[:0]
	for _, q := range perms {
		if q != p {
			out = append(out, q)
		}
	}
	return out
}

func sortPermissions(perms []Permission) {
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
}
