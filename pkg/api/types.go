package api

import (
	"github.com/platinummonkey/visionrecords/pkg/access"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
)

// RegisterUserRequest is the body of POST /api/v1/users
type RegisterUserRequest struct {
	Address string `json:"address" validate:"required,max=128"`
	Role    string `json:"role" validate:"required"`
	Name    string `json:"name" validate:"max=256"`
}

// AssignRoleRequest is the body of PUT /api/v1/users/{address}/role
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// PermissionRequest is the body of POST /api/v1/users/{address}/permissions
type PermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
}

// DelegateRoleRequest is the body of POST /api/v1/delegations
type DelegateRoleRequest struct {
	Delegatee string `json:"delegatee" validate:"required,max=128"`
	Role      string `json:"role" validate:"required"`
	ExpiresAt uint64 `json:"expires_at" validate:"required"`
}

// AddRecordRequest is the body of POST /api/v1/records
type AddRecordRequest struct {
	Patient    string `json:"patient" validate:"required,max=128"`
	Provider   string `json:"provider" validate:"required,max=128"`
	RecordType string `json:"record_type" validate:"required"`
	DataHash   string `json:"data_hash" validate:"required,max=256"`
}

// UpdateRecordRequest is the body of PUT /api/v1/records/{id}
type UpdateRecordRequest struct {
	DataHash string `json:"data_hash" validate:"required,max=256"`
}

// RollbackRequest is the body of POST /api/v1/records/{id}/rollback
type RollbackRequest struct {
	Version uint32 `json:"version" validate:"required"`
}

// GrantAccessRequest is the body of POST /api/v1/access
type GrantAccessRequest struct {
	Patient         string `json:"patient" validate:"required,max=128"`
	Grantee         string `json:"grantee" validate:"required,max=128"`
	Level           string `json:"level" validate:"required,oneof=none read write full"`
	DurationSeconds uint64 `json:"duration_seconds"`
}

// AdminResponse reports the instance administrator
type AdminResponse struct {
	Admin ledger.Address `json:"admin"`
}

// RecordIDResponse reports a created record
type RecordIDResponse struct {
	ID uint64 `json:"id"`
}

// VersionResponse reports a version number
type VersionResponse struct {
	RecordID uint64 `json:"record_id"`
	Version  uint32 `json:"version"`
}

// PatientRecordsResponse lists a patient's record ids
type PatientRecordsResponse struct {
	Patient   ledger.Address `json:"patient"`
	RecordIDs []uint64       `json:"record_ids"`
}

// PermissionCheckResponse reports a resolved permission
type PermissionCheckResponse struct {
	User       ledger.Address  `json:"user"`
	Permission rbac.Permission `json:"permission"`
	Granted    bool            `json:"granted"`
}

// PermissionsResponse lists a user's effective permissions
type PermissionsResponse struct {
	User        ledger.Address    `json:"user"`
	Permissions []rbac.Permission `json:"permissions"`
}

// AccessCheckResponse reports a live access level
type AccessCheckResponse struct {
	Patient ledger.Address `json:"patient"`
	Grantee ledger.Address `json:"grantee"`
	Level   access.Level   `json:"level"`
}
