package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/visionrecords/pkg/auth"
	"github.com/platinummonkey/visionrecords/pkg/httputil"
	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/records"
)

// maxBodyBytes bounds request bodies; every request here is a small JSON document
const maxBodyBytes = 1 << 20

// Server represents the API server
type Server struct {
	router  *mux.Router
	svc     *records.Service
	authn   *auth.Authenticator
	logger  *logrus.Logger
	metrics *observability.Metrics
	limiter *httputil.RateLimiter
}

// NewServer creates a new API server. metrics may be nil.
func NewServer(svc *records.Service, authn *auth.Authenticator, logger *logrus.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		svc:     svc,
		authn:   authn,
		logger:  logger,
		metrics: metrics,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(s.logger),
		httputil.LoggingMiddleware(s.logger, s.metrics),
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(maxBodyBytes),
	)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// Instance routes
	v1.Handle("/initialize", s.authenticated(s.initialize)).Methods("POST")
	v1.HandleFunc("/admin", s.getAdmin).Methods("GET")
	v1.HandleFunc("/status", s.getStatus).Methods("GET")
	v1.Handle("/pause", s.authenticated(s.pause)).Methods("POST")
	v1.Handle("/unpause", s.authenticated(s.unpause)).Methods("POST")

	// User and RBAC routes
	v1.Handle("/users", s.authenticated(s.registerUser)).Methods("POST")
	v1.HandleFunc("/users/{address}", s.getUser).Methods("GET")
	v1.Handle("/users/{address}/role", s.authenticated(s.assignRole)).Methods("PUT")
	v1.HandleFunc("/users/{address}/permissions", s.getPermissions).Methods("GET")
	v1.Handle("/users/{address}/permissions", s.authenticated(s.grantPermission)).Methods("POST")
	v1.HandleFunc("/users/{address}/permissions/{permission}", s.checkPermission).Methods("GET")
	v1.Handle("/users/{address}/permissions/{permission}", s.authenticated(s.revokePermission)).Methods("DELETE")
	v1.Handle("/users/{address}/overrides/{permission}", s.authenticated(s.clearPermission)).Methods("DELETE")
	v1.HandleFunc("/users/{address}/delegations", s.getDelegations).Methods("GET")
	v1.Handle("/delegations", s.authenticated(s.delegateRole)).Methods("POST")

	// Record routes
	v1.Handle("/records", s.authenticated(s.addRecord)).Methods("POST")
	v1.HandleFunc("/records/{id}", s.getRecord).Methods("GET")
	v1.Handle("/records/{id}", s.authenticated(s.updateRecord)).Methods("PUT")
	v1.Handle("/records/{id}/rollback", s.authenticated(s.rollbackRecord)).Methods("POST")
	v1.HandleFunc("/records/{id}/history", s.getRecordHistory).Methods("GET")
	v1.HandleFunc("/records/{id}/versions/latest", s.getLatestVersion).Methods("GET")
	v1.HandleFunc("/records/{id}/versions/{version}", s.getRecordVersion).Methods("GET")
	v1.HandleFunc("/records/{id}/compare", s.compareVersions).Methods("GET")
	v1.HandleFunc("/patients/{address}/records", s.getPatientRecords).Methods("GET")

	// Access sharing routes
	v1.Handle("/access", s.authenticated(s.grantAccess)).Methods("POST")
	v1.HandleFunc("/access/{patient}/{grantee}", s.checkAccess).Methods("GET")
	v1.Handle("/access/{grantee}", s.authenticated(s.revokeAccess)).Methods("DELETE")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// UseRateLimiter limits requests per client address before routing
func (s *Server) UseRateLimiter(limiter *httputil.RateLimiter) {
	s.limiter = limiter
}

// Handler returns the server wrapped in OpenTelemetry HTTP instrumentation
// and, when configured, the rate limiter
func (s *Server) Handler() http.Handler {
	var h http.Handler = s
	if s.limiter != nil {
		h = httputil.RateLimitMiddleware(s.limiter)(h)
	}
	return otelhttp.NewHandler(h, "visionrecords.api")
}
