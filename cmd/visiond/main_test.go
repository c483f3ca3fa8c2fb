package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/records"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

func newTestService(t *testing.T) *records.Service {
	t.Helper()
	ctx := context.Background()
	svc := records.NewService(ledger.New(storage.NewMemory()))
	require.NoError(t, svc.Initialize(ctx, "GADMIN"))
	require.NoError(t, svc.RegisterUser(ctx, "GADMIN", "GPROVIDER", rbac.RoleOptometrist, "Dr. Provider"))
	return svc
}

func TestNewGaugeRefresherDisabled(t *testing.T) {
	svc := newTestService(t)
	logger := observability.NopLogger()

	c, err := newGaugeRefresher("", svc, observability.NewMetrics(nil), logger)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = newGaugeRefresher("@every 1m", svc, nil, logger)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewGaugeRefresherInvalidSpec(t *testing.T) {
	_, err := newGaugeRefresher("not a schedule", newTestService(t), observability.NewMetrics(nil), observability.NopLogger())
	require.Error(t, err)
}

func TestNewGaugeRefresherSchedules(t *testing.T) {
	c, err := newGaugeRefresher("@every 1m", newTestService(t), observability.NewMetrics(nil), observability.NopLogger())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)
}

func TestRefreshGauges(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	metrics := observability.NewMetrics(nil)

	for _, hash := range []string{"QmA", "QmB", "QmC"} {
		_, err := svc.AddRecord(ctx, "GPROVIDER", "GPATIENT", "GPROVIDER", records.RecordTypeExamination, hash)
		require.NoError(t, err)
	}

	refreshGauges(svc, metrics, observability.NopLogger())
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.RecordsTotal))
}

// failingBackend fails every read
type failingBackend struct {
	*storage.Memory
}

func (failingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestRefreshGaugesBackendFailure(t *testing.T) {
	svc := records.NewService(ledger.New(failingBackend{storage.NewMemory()}))

	metrics := observability.NewMetrics(nil)
	metrics.SetRecordsTotal(7)

	var buf bytes.Buffer
	refreshGauges(svc, metrics, observability.NewLogger(observability.DebugLevel, &buf))

	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.RecordsTotal))
	assert.Contains(t, buf.String(), "Failed to refresh record gauge")
}

func TestLogAuditor(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)

	event := audit.NewEvent(context.Background(), audit.EventTypeRecordAdded, audit.EventStatusSuccess)
	event.Actor = "GPROVIDER"
	event.ResourceID = "1"

	a := &logAuditor{log: log}
	require.NoError(t, a.Log(context.Background(), event))
	require.NoError(t, a.Close())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "audit event", entry["msg"])
	assert.Equal(t, "GPROVIDER", entry["actor"])
	assert.Equal(t, event.ID, entry["audit_id"])
}
