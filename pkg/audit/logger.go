package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/visionrecords/pkg/observability"
)

// Logger is the interface for audit logging
type Logger interface {
	// Log logs an audit event
	Log(ctx context.Context, event *AuditEvent) error

	// Close closes the logger and flushes any buffered logs
	Close() error
}

// NewEvent creates an event stamped with a fresh id, wall time and the
// request id carried by ctx
func NewEvent(ctx context.Context, eventType EventType, status EventStatus) *AuditEvent {
	return &AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		RequestID: observability.GetRequestID(ctx),
		Metadata:  make(map[string]interface{}),
	}
}

// NoOpLogger discards every event
type NoOpLogger struct{}

// Log does nothing
func (NoOpLogger) Log(ctx context.Context, event *AuditEvent) error {
	return nil
}

// Close does nothing
func (NoOpLogger) Close() error {
	return nil
}
