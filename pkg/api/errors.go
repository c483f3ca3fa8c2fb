package api

import (
	"net/http"

	"github.com/platinummonkey/visionrecords/pkg/httputil"
	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/records"
)

// statusFor maps a domain error code to an HTTP status
func statusFor(code records.ErrorCode) int {
	switch code {
	case records.CodeInvalidInput:
		return http.StatusBadRequest
	case records.CodeUnauthorized, records.CodeAccessDenied:
		return http.StatusForbidden
	case records.CodeUserNotFound, records.CodeRecordNotFound, records.CodeVersionNotFound:
		return http.StatusNotFound
	case records.CodeNotInitialized, records.CodeAlreadyInitialized:
		return http.StatusConflict
	case records.CodePaused:
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its domain code, logging anything that is
// not a domain error
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := records.Code(err)
	status := statusFor(code)

	if status == http.StatusInternalServerError {
		s.logger.WithField("request_id", observability.GetRequestID(r.Context())).
			WithError(err).Error("entry point failed")
		httputil.WriteErrorMessage(w, status, "internal server error")
		return
	}
	httputil.WriteCodedError(w, status, uint32(code), err)
}
