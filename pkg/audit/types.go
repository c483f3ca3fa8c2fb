package audit

import (
	"encoding/json"
	"time"
)

// EventType represents the category of audit event
type EventType string

const (
	// Instance lifecycle
	EventTypeInitialized EventType = "instance.initialized"
	EventTypePaused      EventType = "instance.paused"
	EventTypeUnpaused    EventType = "instance.unpaused"

	// User and RBAC events
	EventTypeUserRegistered    EventType = "user.registered"
	EventTypeRoleAssigned      EventType = "rbac.role_assigned"
	EventTypePermissionGranted EventType = "rbac.permission_granted"
	EventTypePermissionRevoked EventType = "rbac.permission_revoked"
	EventTypePermissionCleared EventType = "rbac.permission_cleared"
	EventTypeRoleDelegated     EventType = "rbac.role_delegated"

	// Record events
	EventTypeRecordAdded      EventType = "record.added"
	EventTypeRecordUpdated    EventType = "record.updated"
	EventTypeRecordRolledBack EventType = "record.rolled_back"

	// Access sharing events
	EventTypeAccessGranted EventType = "access.granted"
	EventTypeAccessRevoked EventType = "access.revoked"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// ResourceType represents the type of resource being acted on
type ResourceType string

const (
	ResourceTypeInstance ResourceType = "instance"
	ResourceTypeUser     ResourceType = "user"
	ResourceTypeRecord   ResourceType = "record"
	ResourceTypeAccess   ResourceType = "access_grant"
)

// AuditEvent represents a single audit log entry
type AuditEvent struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	LedgerTime uint64      `json:"ledger_time"`
	EventType  EventType   `json:"event_type"`
	Status     EventStatus `json:"status"`

	// Actor is the authenticated caller address
	Actor string `json:"actor,omitempty"`

	ResourceType ResourceType `json:"resource_type,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`

	RequestID string `json:"request_id,omitempty"`

	Message      string                 `json:"message,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// ToJSON converts the audit event to JSON
func (e *AuditEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an audit event from JSON
func FromJSON(data []byte) (*AuditEvent, error) {
	var event AuditEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
