// Package api exposes the vision records entry points over HTTP/JSON.
//
// Routes live under /api/v1 and are served by a gorilla/mux router. Reads are
// public. Mutating routes require an `Authorization: Bearer <token>` header;
// the token subject is the caller address the entry point runs as.
//
//	server := api.NewServer(svc, authenticator, logger, metrics)
//	http.ListenAndServe(":8080", server.Handler())
//
// Domain errors map to HTTP statuses:
//
//	InvalidInput                               400
//	Unauthorized, AccessDenied                 403
//	UserNotFound, RecordNotFound, VersionNotFound 404
//	NotInitialized, AlreadyInitialized         409
//	Paused                                     423
//
// Error bodies carry the numeric error code next to the message.
package api
