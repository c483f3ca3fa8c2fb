// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteCodedError(w, http.StatusForbidden, 3, err)
//	httputil.WriteNoContent(w)
//
// # Request Parsing
//
// Bodies are decoded strictly and validated with `validate` struct tags:
//
//	var req AddRecordRequest
//	if !httputil.DecodeAndValidate(w, r, &req) {
//		return // Error response already written
//	}
//
// Path and query parameters:
//
//	id, ok := httputil.ParsePathUint64OrError(w, r, "id")
//	from, err := httputil.ParseQueryUint32(r, "from")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.RecoveryMiddleware(logger),
//		httputil.LoggingMiddleware(logger, metrics),
//		httputil.MaxBytesMiddleware(1<<20),
//	)
package httputil
