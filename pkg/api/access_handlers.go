package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/visionrecords/pkg/access"
	"github.com/platinummonkey/visionrecords/pkg/httputil"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
)

// grantAccess handles POST /api/v1/access
func (s *Server) grantAccess(w http.ResponseWriter, r *http.Request) {
	var req GrantAccessRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}
	level, err := access.ParseLevel(req.Level)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	grant, err := s.svc.GrantAccess(r.Context(), callerFrom(r.Context()),
		ledger.Address(req.Patient), ledger.Address(req.Grantee), level, req.DurationSeconds)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteCreated(w, grant)
}

// checkAccess handles GET /api/v1/access/{patient}/{grantee}. With ?raw=true the
// stored grant is returned as is, expired or not.
func (s *Server) checkAccess(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patient, grantee := ledger.Address(vars["patient"]), ledger.Address(vars["grantee"])

	raw, err := httputil.ParseQueryBool(r, "raw", false)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if raw {
		grant, err := s.svc.GetAccessGrant(r.Context(), patient, grantee)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if grant == nil {
			httputil.WriteErrorMessage(w, http.StatusNotFound, "no access grant")
			return
		}
		httputil.WriteSuccess(w, grant)
		return
	}

	level, err := s.svc.CheckAccess(r.Context(), patient, grantee)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, AccessCheckResponse{Patient: patient, Grantee: grantee, Level: level})
}

// revokeAccess handles DELETE /api/v1/access/{grantee}; the caller is the patient
func (s *Server) revokeAccess(w http.ResponseWriter, r *http.Request) {
	grantee, ok := httputil.ParsePathStringOrError(w, r, "grantee")
	if !ok {
		return
	}

	if err := s.svc.RevokeAccess(r.Context(), callerFrom(r.Context()), ledger.Address(grantee)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}
