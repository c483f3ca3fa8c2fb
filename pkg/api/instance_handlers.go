package api

import (
	"net/http"

	"github.com/platinummonkey/visionrecords/pkg/httputil"
)

// initialize handles POST /api/v1/initialize; the caller becomes admin
func (s *Server) initialize(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	if err := s.svc.Initialize(r.Context(), caller); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.WithField("admin", caller).Info("instance initialized")
	httputil.WriteCreated(w, AdminResponse{Admin: caller})
}

// getAdmin handles GET /api/v1/admin
func (s *Server) getAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := s.svc.GetAdmin(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, AdminResponse{Admin: admin})
}

// getStatus handles GET /api/v1/status
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Status(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, status)
}

// pause handles POST /api/v1/pause
func (s *Server) pause(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Pause(r.Context(), callerFrom(r.Context())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.WithField("caller", callerFrom(r.Context())).Warn("instance paused")
	httputil.WriteNoContent(w)
}

// unpause handles POST /api/v1/unpause
func (s *Server) unpause(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Unpause(r.Context(), callerFrom(r.Context())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.WithField("caller", callerFrom(r.Context())).Info("instance unpaused")
	httputil.WriteNoContent(w)
}
