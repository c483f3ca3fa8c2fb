package api

import (
	"context"
	"net/http"

	"github.com/platinummonkey/visionrecords/pkg/auth"
	"github.com/platinummonkey/visionrecords/pkg/httputil"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/observability"
)

// authenticated resolves the bearer token to a caller address before running h
func (s *Server) authenticated(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			httputil.WriteUnauthorized(w, err.Error())
			return
		}

		caller, err := s.authn.Verify(token)
		if err != nil {
			s.logger.WithField("request_id", observability.GetRequestID(r.Context())).
				WithError(err).Debug("token rejected")
			httputil.WriteUnauthorized(w, auth.ErrInvalidToken.Error())
			return
		}

		ctx := observability.WithCaller(r.Context(), string(caller))
		h(w, r.WithContext(ctx))
	})
}

// callerFrom returns the authenticated caller of the request
func callerFrom(ctx context.Context) ledger.Address {
	return ledger.Address(observability.GetCaller(ctx))
}
