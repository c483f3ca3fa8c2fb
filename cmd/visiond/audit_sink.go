package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/visionrecords/pkg/audit"
)

// logAuditor mirrors audit events to the process log at debug level
type logAuditor struct {
	log *logrus.Logger
}

func (a *logAuditor) Log(ctx context.Context, event *audit.AuditEvent) error {
	a.log.WithFields(logrus.Fields{
		"audit_id":      event.ID,
		"event_type":    event.EventType,
		"status":        event.Status,
		"actor":         event.Actor,
		"resource_type": event.ResourceType,
		"resource_id":   event.ResourceID,
		"request_id":    event.RequestID,
		"ledger_time":   event.LedgerTime,
	}).Debug("audit event")
	return nil
}

func (a *logAuditor) Close() error {
	return nil
}
