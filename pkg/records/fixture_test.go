package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

const (
	admin     ledger.Address = "GADMIN"
	provider  ledger.Address = "GPROVIDER"
	surgeon   ledger.Address = "GSURGEON"
	patient   ledger.Address = "GPATIENT"
	assistant ledger.Address = "GASSISTANT"
	stranger  ledger.Address = "GSTRANGER"
)

type fixture struct {
	svc     *Service
	clock   *ledger.ManualClock
	backend *storage.Memory
	audit   *audit.MemoryLogger
	metrics *observability.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:   ledger.NewManualClock(100),
		backend: storage.NewMemory(),
		audit:   audit.NewMemoryLogger(),
		metrics: observability.NewMetrics(nil),
	}
	l := ledger.New(f.backend, ledger.WithClock(f.clock))
	f.svc = NewService(l, WithAuditLogger(f.audit), WithMetrics(f.metrics))
	return f
}

// newInitializedFixture returns an initialized instance with a provider, a
// surgeon and a patient registered at t=100
func newInitializedFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Initialize(ctx, admin))
	require.NoError(t, f.svc.RegisterUser(ctx, admin, provider, rbac.RoleOptometrist, "Dr. Provider"))
	require.NoError(t, f.svc.RegisterUser(ctx, admin, surgeon, rbac.RoleOphthalmologist, "Dr. Surgeon"))
	require.NoError(t, f.svc.RegisterUser(ctx, admin, patient, rbac.RolePatient, "Pat"))
	f.audit.Reset()
	return f
}

func (f *fixture) addRecord(t *testing.T, hash string) uint64 {
	t.Helper()
	id, err := f.svc.AddRecord(context.Background(), provider, patient, provider, RecordTypeExamination, hash)
	require.NoError(t, err)
	return id
}
