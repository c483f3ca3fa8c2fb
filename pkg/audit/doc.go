// Package audit records what happened on the vision records ledger.
//
// Every committed entry point emits one AuditEvent: the actor, the affected
// resource, the ledger timestamp and operation-specific metadata (record id,
// version number, access level, expiry). Rejected calls are emitted with
// status "denied" or "failure" so that refused attempts are visible too.
//
// Sinks implement Logger:
//
//   - FileLogger appends newline-delimited JSON with size-based rotation
//   - MemoryLogger keeps events in memory, for tests and tooling
//   - MultiLogger fans out to several sinks
//
// Usage:
//
//	logger, err := audit.NewFileLogger(audit.FileLoggerConfig{BasePath: "/var/log/visionrecords/audit"})
//	svc := records.NewService(l, records.WithAuditLogger(logger))
package audit
