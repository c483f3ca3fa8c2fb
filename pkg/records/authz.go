package records

import (
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
)

// canWriteRecord decides whether caller may write records owned by provider
func canWriteRecord(store *rbac.Store, caller, provider ledger.Address) (bool, error) {
	return tieredDecision(store, caller, provider, rbac.PermissionWriteRecord)
}

// canManageAccess decides whether caller may change patient's access grants
func canManageAccess(store *rbac.Store, caller, patient ledger.Address) (bool, error) {
	if caller == patient {
		return true, nil
	}
	return tieredDecision(store, caller, patient, rbac.PermissionManageAccess)
}

// tieredDecision checks self authority, then authority delegated by the owner,
// then system_admin
func tieredDecision(store *rbac.Store, caller, owner ledger.Address, permission rbac.Permission) (bool, error) {
	var (
		ok  bool
		err error
	)
	if caller == owner {
		ok, err = store.HasPermission(caller, permission)
	} else {
		ok, err = store.HasDelegatedPermission(owner, caller, permission)
	}
	if err != nil || ok {
		return ok, err
	}
	return store.HasPermission(caller, rbac.PermissionSystemAdmin)
}

// holdsRole decides whether user holds every default permission of role. It
// gates delegating, assigning and registering users with a role, so nobody
// hands out more than they have.
func holdsRole(store *rbac.Store, user ledger.Address, role rbac.Role) (bool, error) {
	for _, p := range rbac.DefaultPermissions(role) {
		ok, err := store.HasPermission(user, p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
