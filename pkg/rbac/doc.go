// Package rbac resolves what a user may do.
//
// # Permission Catalog
//
// Every Role maps to a fixed default set of Permissions through a single table
// (DefaultPermissions). The table is total: every role has an entry, possibly empty.
//
//	Admin            system_admin, manage_users, write_record, manage_access
//	Optometrist      write_record
//	Ophthalmologist  write_record, manage_access
//	Staff            manage_users
//	Patient          (none)
//
// # Overrides
//
// Per-user overrides sit on top of the role defaults. Resolution is ordered:
//
//  1. explicit revoke: denied
//  2. explicit grant: allowed
//  3. role default
//
// A revoke therefore wins over both the default and a grant of the same permission.
// ClearCustomPermission drops both markers and lets the default apply again.
//
// # Delegations
//
// A delegation lets a delegatee act on the delegator's resources with the default
// permissions of the delegated role until it expires. Delegations are stored per
// delegatee; one delegator holds at most one live delegation to a given delegatee.
//
// Delegating a role requires holding every default permission of that role, and
// delegated rights cover only what the role's defaults carry. A patient holds no
// defaults and so cannot delegate manage_access at all until an admin custom-grants
// it. Delegating Ophthalmologist, the role that carries manage_access, needs both
// manage_access and write_record granted to the patient first.
//
// The same rule bounds user management: assigning or registering a role needs
// that role's defaults, and changing a custom permission needs the permission
// itself, so Staff cannot raise anyone above Staff. System admins are exempt.
//
// # Usage
//
//	err := l.Invoke(ctx, "delegate_role", func(tx *ledger.Tx) error {
//		store := rbac.NewStore(tx)
//		return store.DelegateRole(owner, assistant, rbac.RoleOptometrist, tx.Now()+3600)
//	})
package rbac
