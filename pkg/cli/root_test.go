package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/auth"
	"github.com/platinummonkey/visionrecords/pkg/config"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/records"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

const testSecret = "cli-test-secret-0123456789"

func testEnv(t *testing.T) (*Env, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.Secret = testSecret
	cfg.Storage.Type = storage.TypeLevelDB
	cfg.Storage.LevelDBPath = filepath.Join(t.TempDir(), "ledger")
	cfg.Storage.CacheEnabled = false
	cfg.Audit.File.BasePath = filepath.Join(t.TempDir(), "audit")

	out := &bytes.Buffer{}
	return &Env{Config: cfg, Out: out}, out
}

// seed writes one patient with two records (the first updated once) to the
// env's LevelDB directory
func seed(t *testing.T, env *Env) {
	t.Helper()
	ctx := context.Background()

	backend, err := storage.NewLevelDB(env.Config.Storage.LevelDBPath)
	require.NoError(t, err)
	defer backend.Close()

	svc := records.NewService(ledger.New(backend, ledger.WithClock(ledger.NewManualClock(100))))
	require.NoError(t, svc.Initialize(ctx, "GADMIN"))
	require.NoError(t, svc.RegisterUser(ctx, "GADMIN", "GPROVIDER", rbac.RoleOptometrist, "Dr. Provider"))
	require.NoError(t, svc.RegisterUser(ctx, "GADMIN", "GPATIENT", rbac.RolePatient, "Pat"))

	id, err := svc.AddRecord(ctx, "GPROVIDER", "GPATIENT", "GPROVIDER", records.RecordTypeExamination, "QmFirst")
	require.NoError(t, err)
	_, err = svc.UpdateRecord(ctx, "GPROVIDER", id, "QmSecond")
	require.NoError(t, err)
	_, err = svc.AddRecord(ctx, "GPROVIDER", "GPATIENT", "GPROVIDER", records.RecordTypePrescription, "QmRx")
	require.NoError(t, err)
}

func TestNewRootCommand(t *testing.T) {
	env, _ := testEnv(t)
	root := NewRootCommand(env)

	assert.Equal(t, "vision-cli", root.Name)
	assert.NotNil(t, root.Flags)

	for _, name := range []string{"token", "inspect", "patient", "audit"} {
		assert.Contains(t, root.Subcommands, name)
	}
	assert.Len(t, root.Subcommands, 4)
}

func TestCommandUsage(t *testing.T) {
	env, _ := testEnv(t)
	root := NewRootCommand(env)

	var buf bytes.Buffer
	require.NoError(t, root.usage(&buf))

	output := buf.String()
	assert.Contains(t, output, "Usage: vision-cli <command> [args]")
	assert.Less(t, strings.Index(output, "inspect"), strings.Index(output, "token"))
}

func TestExecuteUnknownCommand(t *testing.T) {
	env, _ := testEnv(t)
	err := NewRootCommand(env).Execute([]string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command: nope")
}

func TestTokenCommand(t *testing.T) {
	env, out := testEnv(t)
	root := NewRootCommand(env)

	require.NoError(t, root.Execute([]string{"token", "-address", "GPROVIDER", "-ttl", "10m"}))

	authn, err := auth.NewAuthenticator(testSecret, env.Config.Auth.Issuer)
	require.NoError(t, err)
	addr, err := authn.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, ledger.Address("GPROVIDER"), addr)
}

func TestTokenCommandValidation(t *testing.T) {
	t.Run("missing address", func(t *testing.T) {
		env, _ := testEnv(t)
		err := NewRootCommand(env).Execute([]string{"token"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "address is required")
	})

	t.Run("negative ttl", func(t *testing.T) {
		env, _ := testEnv(t)
		err := NewRootCommand(env).Execute([]string{"token", "-address", "GP", "-ttl", "-1m"})
		require.Error(t, err)
	})

	t.Run("weak secret", func(t *testing.T) {
		env, _ := testEnv(t)
		env.Config.Auth.Secret = "short"
		err := NewRootCommand(env).Execute([]string{"token", "-address", "GP"})
		require.Error(t, err)
	})

	t.Run("default ttl", func(t *testing.T) {
		env, out := testEnv(t)
		env.Config.Auth.TokenTTL = time.Minute
		require.NoError(t, NewRootCommand(env).Execute([]string{"token", "-address", "GP"}))
		assert.NotEmpty(t, strings.TrimSpace(out.String()))
	})
}

func TestInspectCommand(t *testing.T) {
	env, out := testEnv(t)
	seed(t, env)

	require.NoError(t, NewRootCommand(env).Execute([]string{"inspect", "-record", "1"}))

	var report RecordReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.NotNil(t, report.Record)
	assert.Equal(t, uint64(1), report.Record.ID)
	assert.Equal(t, "QmSecond", report.Record.DataHash)
	assert.Equal(t, uint32(2), report.LatestVersion)
	require.Len(t, report.History, 2)
	assert.Equal(t, "QmFirst", report.History[0].DataHash)
	assert.Equal(t, "QmSecond", report.History[1].DataHash)
}

func TestInspectCommandErrors(t *testing.T) {
	t.Run("record required", func(t *testing.T) {
		env, _ := testEnv(t)
		err := NewRootCommand(env).Execute([]string{"inspect"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record is required")
	})

	t.Run("record not found", func(t *testing.T) {
		env, _ := testEnv(t)
		seed(t, env)
		err := NewRootCommand(env).Execute([]string{"inspect", "-record", "99"})
		require.ErrorIs(t, err, records.ErrRecordNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		env, _ := testEnv(t)
		env.Open = func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
			return nil, assert.AnError
		}
		err := NewRootCommand(env).Execute([]string{"inspect", "-record", "1"})
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to open storage")
	})
}

func TestPatientCommand(t *testing.T) {
	env, out := testEnv(t)
	seed(t, env)

	require.NoError(t, NewRootCommand(env).Execute([]string{"patient", "-address", "GPATIENT"}))

	var report PatientReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, ledger.Address("GPATIENT"), report.Patient)
	assert.Equal(t, []uint64{1, 2}, report.Records)
}

func TestPatientCommandUnknownPatient(t *testing.T) {
	env, out := testEnv(t)
	env.Config.Storage.Type = storage.TypeMemory

	require.NoError(t, NewRootCommand(env).Execute([]string{"patient", "-address", "GNOBODY"}))

	var report PatientReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Empty(t, report.Records)
	assert.NotNil(t, report.Records)
}

func TestAuditCommand(t *testing.T) {
	env, out := testEnv(t)
	ctx := context.Background()

	logger, err := audit.NewFileLogger(env.Config.Audit.File)
	require.NoError(t, err)
	for _, actor := range []string{"GADMIN", "GPROVIDER", "GPATIENT"} {
		event := audit.NewEvent(ctx, audit.EventTypeRecordAdded, audit.EventStatusSuccess)
		event.Actor = actor
		require.NoError(t, logger.Log(ctx, event))
	}
	require.NoError(t, logger.Close())

	require.NoError(t, NewRootCommand(env).Execute([]string{"audit", "-count", "2"}))

	var events []audit.AuditEvent
	require.NoError(t, json.Unmarshal(out.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "GADMIN", events[0].Actor)
	assert.Equal(t, "GPROVIDER", events[1].Actor)
}

func TestAuditCommandEmptyLog(t *testing.T) {
	env, out := testEnv(t)

	require.NoError(t, NewRootCommand(env).Execute([]string{"audit"}))
	assert.Equal(t, "[]", strings.TrimSpace(out.String()))

	err := NewRootCommand(env).Execute([]string{"audit", "-count", "-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count must not be negative")
}
