package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

const (
	admin     ledger.Address = "GADMIN"
	doctor    ledger.Address = "GDOCTOR"
	assistant ledger.Address = "GASSIST"
	patient   ledger.Address = "GPATIENT"
	stranger  ledger.Address = "GSTRANGER"
)

func setupLedger(t *testing.T) (*ledger.Ledger, *ledger.ManualClock) {
	t.Helper()
	clock := ledger.NewManualClock(1000)
	return ledger.New(storage.NewMemory(), ledger.WithClock(clock)), clock
}

// invoke runs fn against a Store in a committing invocation
func invoke(t *testing.T, l *ledger.Ledger, fn func(s *Store) error) error {
	t.Helper()
	return l.Invoke(context.Background(), "test", func(tx *ledger.Tx) error {
		return fn(NewStore(tx))
	})
}

func mustInvoke(t *testing.T, l *ledger.Ledger, fn func(s *Store) error) {
	t.Helper()
	require.NoError(t, invoke(t, l, fn))
}

func hasPermission(t *testing.T, l *ledger.Ledger, user ledger.Address, p Permission) bool {
	t.Helper()
	var ok bool
	require.NoError(t, l.View(context.Background(), "has_permission", func(tx *ledger.Tx) error {
		var err error
		ok, err = NewStore(tx).HasPermission(user, p)
		return err
	}))
	return ok
}

func hasDelegated(t *testing.T, l *ledger.Ledger, owner, actor ledger.Address, p Permission) bool {
	t.Helper()
	var ok bool
	require.NoError(t, l.View(context.Background(), "has_delegated", func(tx *ledger.Tx) error {
		var err error
		ok, err = NewStore(tx).HasDelegatedPermission(owner, actor, p)
		return err
	}))
	return ok
}
