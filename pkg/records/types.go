package records

import (
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
)

// ContractVersion is the version reported by Version
const ContractVersion uint32 = 1

// RecordType classifies a vision record
type RecordType string

const (
	RecordTypeExamination  RecordType = "examination"
	RecordTypePrescription RecordType = "prescription"
	RecordTypeDiagnosis    RecordType = "diagnosis"
	RecordTypeTreatment    RecordType = "treatment"
	RecordTypeSurgery      RecordType = "surgery"
	RecordTypeLabResult    RecordType = "lab_result"
)

// RecordTypes returns every record type
func RecordTypes() []RecordType {
	return []RecordType{
		RecordTypeExamination,
		RecordTypePrescription,
		RecordTypeDiagnosis,
		RecordTypeTreatment,
		RecordTypeSurgery,
		RecordTypeLabResult,
	}
}

// Valid reports whether t is a known record type
func (t RecordType) Valid() bool {
	for _, rt := range RecordTypes() {
		if rt == t {
			return true
		}
	}
	return false
}

// ParseRecordType parses a record type name. Unknown names are ErrInvalidInput.
func ParseRecordType(s string) (RecordType, error) {
	t := RecordType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown record type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// User is a registered participant
type User struct {
	Address      ledger.Address   `json:"address"`
	Role         rbac.Role        `json:"role"`
	Name         string           `json:"name"`
	RegisteredAt ledger.Timestamp `json:"registered_at"`
	Active       bool             `json:"active"`
}

// VisionRecord is a record's live state. The content itself is held off-ledger;
// only its hash is stored.
type VisionRecord struct {
	ID         uint64           `json:"id"`
	Patient    ledger.Address   `json:"patient"`
	Provider   ledger.Address   `json:"provider"`
	RecordType RecordType       `json:"record_type"`
	DataHash   string           `json:"data_hash"`
	CreatedAt  ledger.Timestamp `json:"created_at"`
	UpdatedAt  ledger.Timestamp `json:"updated_at"`
}

// Status summarizes the instance
type Status struct {
	Initialized bool   `json:"initialized"`
	Paused      bool   `json:"paused"`
	Version     uint32 `json:"version"`
	RecordCount uint64 `json:"record_count"`
}
