package records

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/rbac"
	"github.com/platinummonkey/visionrecords/pkg/versioning"
)

// AddRecord creates a record for patient written by provider and returns its id.
// The record starts at version 1.
func (s *Service) AddRecord(ctx context.Context, caller, patient, provider ledger.Address, recordType RecordType, dataHash string) (uint64, error) {
	var id uint64
	err := s.mutate(ctx, "add_record", audit.EventTypeRecordAdded, caller, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeRecord, "")
		c.meta("patient", string(patient))
		c.meta("provider", string(provider))
		c.meta("record_type", string(recordType))

		if dataHash == "" {
			return fmt.Errorf("%w: empty data hash", ErrInvalidInput)
		}
		if !recordType.Valid() {
			return fmt.Errorf("%w: unknown record type %q", ErrInvalidInput, recordType)
		}
		if patient == "" || provider == "" {
			return fmt.Errorf("%w: patient and provider are required", ErrInvalidInput)
		}

		ok, err := canWriteRecord(c.rbac, caller, provider)
		if err := authorize(ok, err); err != nil {
			return fmt.Errorf("%w: %s may not write records for %s", err, caller, provider)
		}

		var count uint64
		if _, err := c.tx.Get(recordCounterKey, &count); err != nil {
			return err
		}
		if count == math.MaxUint64 {
			return fmt.Errorf("%w: record id overflow", ErrInvalidInput)
		}
		id = count + 1

		now := c.tx.Now()
		record := VisionRecord{
			ID:         id,
			Patient:    patient,
			Provider:   provider,
			RecordType: recordType,
			DataHash:   dataHash,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := c.tx.Set(recordKey(id), record); err != nil {
			return err
		}
		if err := c.tx.Set(recordCounterKey, id); err != nil {
			return err
		}

		var index []uint64
		if _, err := c.tx.Get(patientIndexKey(patient), &index); err != nil {
			return err
		}
		if err := c.tx.Set(patientIndexKey(patient), append(index, id)); err != nil {
			return err
		}

		if _, err := c.versions.Append(id, dataHash, caller, now); err != nil {
			return mapVersionError(err)
		}
		c.resource(audit.ResourceTypeRecord, strconv.FormatUint(id, 10))
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordVersionAppended("create")
	s.metrics.SetRecordsTotal(id)
	return id, nil
}

// UpdateRecord replaces the record's content hash and returns the new version number
func (s *Service) UpdateRecord(ctx context.Context, caller ledger.Address, recordID uint64, dataHash string) (uint32, error) {
	var version uint32
	err := s.mutate(ctx, "update_record", audit.EventTypeRecordUpdated, caller, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeRecord, strconv.FormatUint(recordID, 10))

		if dataHash == "" {
			return fmt.Errorf("%w: empty data hash", ErrInvalidInput)
		}

		record, err := c.getRecord(recordID)
		if err != nil {
			return err
		}

		ok, err := canWriteRecord(c.rbac, caller, record.Provider)
		if err := authorize(ok, err); err != nil {
			return fmt.Errorf("%w: %s may not write records for %s", err, caller, record.Provider)
		}

		version, err = c.setContent(record, dataHash, caller)
		if err != nil {
			return err
		}
		c.meta("version", version)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordVersionAppended("update")
	return version, nil
}

// RollbackRecord appends a new version carrying targetVersion's hash and makes it
// the live content. Only system admins may roll back.
func (s *Service) RollbackRecord(ctx context.Context, caller ledger.Address, recordID uint64, targetVersion uint32) (uint32, error) {
	var version uint32
	err := s.mutate(ctx, "rollback_record", audit.EventTypeRecordRolledBack, caller, guardActive, func(c *call) error {
		c.resource(audit.ResourceTypeRecord, strconv.FormatUint(recordID, 10))
		c.meta("target_version", targetVersion)

		if err := c.requirePermission(caller, rbac.PermissionSystemAdmin); err != nil {
			return err
		}

		record, err := c.getRecord(recordID)
		if err != nil {
			return err
		}

		target, err := c.versions.Version(recordID, targetVersion)
		if err != nil {
			return err
		}
		if target == nil {
			return fmt.Errorf("%w: record %d has no version %d", ErrVersionNotFound, recordID, targetVersion)
		}

		version, err = c.setContent(record, target.DataHash, caller)
		if err != nil {
			return err
		}
		c.meta("version", version)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordVersionAppended("rollback")
	return version, nil
}

// setContent appends a version and updates the live record in the same invocation
func (c *call) setContent(record *VisionRecord, dataHash string, by ledger.Address) (uint32, error) {
	now := c.tx.Now()
	entry, err := c.versions.Append(record.ID, dataHash, by, now)
	if err != nil {
		return 0, mapVersionError(err)
	}

	record.DataHash = dataHash
	record.UpdatedAt = now
	if err := c.tx.Set(recordKey(record.ID), record); err != nil {
		return 0, err
	}
	return entry.Version, nil
}

func (c *call) getRecord(id uint64) (*VisionRecord, error) {
	var record VisionRecord
	ok, err := c.tx.Get(recordKey(id), &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	return &record, nil
}

func mapVersionError(err error) error {
	if errors.Is(err, versioning.ErrVersionOverflow) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return err
}

// GetRecord returns a record's live state
func (s *Service) GetRecord(ctx context.Context, recordID uint64) (*VisionRecord, error) {
	var record *VisionRecord
	err := s.view(ctx, "get_record", func(c *call) error {
		var err error
		record, err = c.getRecord(recordID)
		return err
	})
	return record, err
}

// GetPatientRecords returns the ids of patient's records in creation order
func (s *Service) GetPatientRecords(ctx context.Context, patient ledger.Address) ([]uint64, error) {
	ids := []uint64{}
	err := s.view(ctx, "get_patient_records", func(c *call) error {
		_, err := c.tx.Get(patientIndexKey(patient), &ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetRecordHistory returns every version of a record in order
func (s *Service) GetRecordHistory(ctx context.Context, recordID uint64) ([]versioning.RecordVersion, error) {
	var history []versioning.RecordVersion
	err := s.view(ctx, "get_record_history", func(c *call) error {
		if _, err := c.getRecord(recordID); err != nil {
			return err
		}
		var err error
		history, err = c.versions.History(recordID)
		return err
	})
	return history, err
}

// GetRecordVersion returns one version of a record
func (s *Service) GetRecordVersion(ctx context.Context, recordID uint64, version uint32) (*versioning.RecordVersion, error) {
	var entry *versioning.RecordVersion
	err := s.view(ctx, "get_record_version", func(c *call) error {
		if _, err := c.getRecord(recordID); err != nil {
			return err
		}
		var err error
		entry, err = c.versions.Version(recordID, version)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("%w: record %d has no version %d", ErrVersionNotFound, recordID, version)
		}
		return nil
	})
	return entry, err
}

// GetLatestRecordVersion returns the newest version number of a record
func (s *Service) GetLatestRecordVersion(ctx context.Context, recordID uint64) (uint32, error) {
	var latest uint32
	err := s.view(ctx, "get_latest_record_version", func(c *call) error {
		if _, err := c.getRecord(recordID); err != nil {
			return err
		}
		v, ok, err := c.versions.Latest(recordID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: record %d has no history", ErrVersionNotFound, recordID)
		}
		latest = v
		return nil
	})
	return latest, err
}

// CompareRecordVersions compares two versions of a record
func (s *Service) CompareRecordVersions(ctx context.Context, recordID uint64, from, to uint32) (*versioning.RecordComparison, error) {
	var cmp *versioning.RecordComparison
	err := s.view(ctx, "compare_record_versions", func(c *call) error {
		if _, err := c.getRecord(recordID); err != nil {
			return err
		}
		var err error
		cmp, err = c.versions.Compare(recordID, from, to)
		if err != nil {
			return err
		}
		if cmp == nil {
			return fmt.Errorf("%w: record %d versions %d and %d", ErrVersionNotFound, recordID, from, to)
		}
		return nil
	})
	return cmp, err
}
