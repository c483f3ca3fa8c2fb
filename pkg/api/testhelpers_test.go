package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/visionrecords/pkg/auth"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/records"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

const (
	admin    ledger.Address = "GADMIN"
	provider ledger.Address = "GPROVIDER"
	patient  ledger.Address = "GPATIENT"
	stranger ledger.Address = "GSTRANGER"
)

type testEnv struct {
	server  *Server
	svc     *records.Service
	clock   *ledger.ManualClock
	authn   *auth.Authenticator
	metrics *observability.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := ledger.NewManualClock(100)
	svc := records.NewService(ledger.New(storage.NewMemory(), ledger.WithClock(clock)))

	authn, err := auth.NewAuthenticator("test-secret-0123456789abcdef", "visionrecords")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	metrics := observability.NewMetrics(nil)

	return &testEnv{
		server:  NewServer(svc, authn, logger, metrics),
		svc:     svc,
		clock:   clock,
		authn:   authn,
		metrics: metrics,
	}
}

// newSeededEnv initializes the instance and registers a provider and a patient
func newSeededEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	env.do(t, admin, "POST", "/api/v1/initialize", nil).requireStatus(t, http.StatusCreated)
	env.do(t, admin, "POST", "/api/v1/users", RegisterUserRequest{Address: string(provider), Role: "optometrist", Name: "Dr"}).
		requireStatus(t, http.StatusCreated)
	env.do(t, admin, "POST", "/api/v1/users", RegisterUserRequest{Address: string(patient), Role: "patient", Name: "Pat"}).
		requireStatus(t, http.StatusCreated)
	return env
}

type response struct {
	*httptest.ResponseRecorder
}

func (r response) requireStatus(t *testing.T, status int) response {
	t.Helper()
	require.Equal(t, status, r.Code, r.Body.String())
	return r
}

func (r response) decode(t *testing.T, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), dest), r.Body.String())
}

// do sends a request as caller; an empty caller sends no token
func (e *testEnv) do(t *testing.T, caller ledger.Address, method, path string, body interface{}) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		token, err := e.authn.Sign(caller, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return response{w}
}
