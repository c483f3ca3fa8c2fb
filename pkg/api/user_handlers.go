package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/visionrecords/pkg/httputil"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
)

// registerUser handles POST /api/v1/users
func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	user := ledger.Address(req.Address)
	if err := s.svc.RegisterUser(r.Context(), callerFrom(r.Context()), user, rbac.Role(req.Role), req.Name); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	profile, err := s.svc.GetUser(r.Context(), user)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteCreated(w, profile)
}

// getUser handles GET /api/v1/users/{address}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	address, ok := httputil.ParsePathStringOrError(w, r, "address")
	if !ok {
		return
	}

	profile, err := s.svc.GetUser(r.Context(), ledger.Address(address))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, profile)
}

// assignRole handles PUT /api/v1/users/{address}/role
func (s *Server) assignRole(w http.ResponseWriter, r *http.Request) {
	address, ok := httputil.ParsePathStringOrError(w, r, "address")
	if !ok {
		return
	}
	var req AssignRoleRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := s.svc.AssignRole(r.Context(), callerFrom(r.Context()), ledger.Address(address), rbac.Role(req.Role)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}

// getPermissions handles GET /api/v1/users/{address}/permissions
func (s *Server) getPermissions(w http.ResponseWriter, r *http.Request) {
	address, ok := httputil.ParsePathStringOrError(w, r, "address")
	if !ok {
		return
	}

	perms, err := s.svc.GetPermissions(r.Context(), ledger.Address(address))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if perms == nil {
		perms = []rbac.Permission{}
	}
	httputil.WriteSuccess(w, PermissionsResponse{User: ledger.Address(address), Permissions: perms})
}

// grantPermission handles POST /api/v1/users/{address}/permissions
func (s *Server) grantPermission(w http.ResponseWriter, r *http.Request) {
	address, ok := httputil.ParsePathStringOrError(w, r, "address")
	if !ok {
		return
	}
	var req PermissionRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	err := s.svc.GrantCustomPermission(r.Context(), callerFrom(r.Context()), ledger.Address(address), rbac.Permission(req.Permission))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}

// revokePermission handles DELETE /api/v1/users/{address}/permissions/{permission}
func (s *Server) revokePermission(w http.ResponseWriter, r *http.Request) {
	s.changeOverride(w, r, s.svc.RevokeCustomPermission)
}

// clearPermission handles DELETE /api/v1/users/{address}/overrides/{permission}
func (s *Server) clearPermission(w http.ResponseWriter, r *http.Request) {
	s.changeOverride(w, r, s.svc.ClearCustomPermission)
}

type overrideFunc func(ctx context.Context, caller, user ledger.Address, permission rbac.Permission) error

func (s *Server) changeOverride(w http.ResponseWriter, r *http.Request, apply overrideFunc) {
	vars := mux.Vars(r)
	user, permission := ledger.Address(vars["address"]), rbac.Permission(vars["permission"])

	if err := apply(r.Context(), callerFrom(r.Context()), user, permission); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}

// checkPermission handles GET /api/v1/users/{address}/permissions/{permission}
func (s *Server) checkPermission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	user, permission := ledger.Address(vars["address"]), rbac.Permission(vars["permission"])

	granted, err := s.svc.CheckPermission(r.Context(), user, permission)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, PermissionCheckResponse{User: user, Permission: permission, Granted: granted})
}

// getDelegations handles GET /api/v1/users/{address}/delegations
func (s *Server) getDelegations(w http.ResponseWriter, r *http.Request) {
	address, ok := httputil.ParsePathStringOrError(w, r, "address")
	if !ok {
		return
	}

	delegations, err := s.svc.GetDelegations(r.Context(), ledger.Address(address))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if delegations == nil {
		delegations = []rbac.Delegation{}
	}
	httputil.WriteSuccess(w, delegations)
}

// delegateRole handles POST /api/v1/delegations; the caller is the delegator
func (s *Server) delegateRole(w http.ResponseWriter, r *http.Request) {
	var req DelegateRoleRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	caller := callerFrom(r.Context())
	delegation := rbac.Delegation{
		Delegator: caller,
		Delegatee: ledger.Address(req.Delegatee),
		Role:      rbac.Role(req.Role),
		ExpiresAt: ledger.Timestamp(req.ExpiresAt),
	}
	if err := s.svc.DelegateRole(r.Context(), caller, delegation.Delegatee, delegation.Role, delegation.ExpiresAt); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteCreated(w, delegation)
}
