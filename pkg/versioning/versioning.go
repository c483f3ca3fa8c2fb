// Package versioning keeps the append-only version history of each record.
//
// Version numbers are 1-based and contiguous. Nothing is ever removed or
// renumbered; a rollback is recorded as a new version carrying an older hash.
package versioning

import (
	"errors"
	"fmt"
	"math"

	"github.com/platinummonkey/visionrecords/pkg/ledger"
)

// ErrVersionOverflow is returned when a history already holds the maximum number of versions
var ErrVersionOverflow = errors.New("record version number overflow")

// RecordVersion is one immutable history entry
type RecordVersion struct {
	RecordID   uint64           `json:"record_id"`
	Version    uint32           `json:"version"`
	DataHash   string           `json:"data_hash"`
	ModifiedBy ledger.Address   `json:"modified_by"`
	ModifiedAt ledger.Timestamp `json:"modified_at"`
}

// RecordComparison describes two versions of the same record
type RecordComparison struct {
	RecordID       uint64           `json:"record_id"`
	FromVersion    uint32           `json:"from_version"`
	ToVersion      uint32           `json:"to_version"`
	FromDataHash   string           `json:"from_data_hash"`
	ToDataHash     string           `json:"to_data_hash"`
	FromModifiedAt ledger.Timestamp `json:"from_modified_at"`
	ToModifiedAt   ledger.Timestamp `json:"to_modified_at"`
	Changed        bool             `json:"changed"`
}

// Log reads and appends history inside one ledger invocation
type Log struct {
	tx *ledger.Tx

	// maxVersions caps the history length; tests lower it to reach the overflow path
	maxVersions uint64
}

// NewLog creates a log bound to tx
func NewLog(tx *ledger.Tx) *Log {
	return &Log{tx: tx, maxVersions: math.MaxUint32}
}

func historyKey(recordID uint64) ledger.Key {
	return ledger.NewKey(ledger.KindRecordHistory, ledger.Uint(recordID))
}

// History returns the record's versions in order, empty if there are none
func (l *Log) History(recordID uint64) ([]RecordVersion, error) {
	var history []RecordVersion
	if _, err := l.tx.Get(historyKey(recordID), &history); err != nil {
		return nil, fmt.Errorf("failed to get history for record %d: %w", recordID, err)
	}
	if history == nil {
		history = []RecordVersion{}
	}
	return history, nil
}

// Append adds the next version for the record and returns it
func (l *Log) Append(recordID uint64, dataHash string, modifiedBy ledger.Address, modifiedAt ledger.Timestamp) (*RecordVersion, error) {
	history, err := l.History(recordID)
	if err != nil {
		return nil, err
	}

	if uint64(len(history)) >= l.maxVersions {
		return nil, ErrVersionOverflow
	}

	entry := RecordVersion{
		RecordID:   recordID,
		Version:    uint32(len(history) + 1),
		DataHash:   dataHash,
		ModifiedBy: modifiedBy,
		ModifiedAt: modifiedAt,
	}
	history = append(history, entry)

	if err := l.tx.Set(historyKey(recordID), history); err != nil {
		return nil, fmt.Errorf("failed to append version: %w", err)
	}
	return &entry, nil
}

// Latest returns the newest version number, false if the history is empty
func (l *Log) Latest(recordID uint64) (uint32, bool, error) {
	history, err := l.History(recordID)
	if err != nil {
		return 0, false, err
	}
	if len(history) == 0 {
		return 0, false, nil
	}
	return uint32(len(history)), true, nil
}

// Version returns one entry, nil if version is out of range
func (l *Log) Version(recordID uint64, version uint32) (*RecordVersion, error) {
	history, err := l.History(recordID)
	if err != nil {
		return nil, err
	}
	return findVersion(history, version), nil
}

// Compare returns a comparison of two versions, nil if either is missing
func (l *Log) Compare(recordID uint64, from, to uint32) (*RecordComparison, error) {
	history, err := l.History(recordID)
	if err != nil {
		return nil, err
	}

	a := findVersion(history, from)
	b := findVersion(history, to)
	if a == nil || b == nil {
		return nil, nil
	}

	return &RecordComparison{
		RecordID:       recordID,
		FromVersion:    from,
		ToVersion:      to,
		FromDataHash:   a.DataHash,
		ToDataHash:     b.DataHash,
		FromModifiedAt: a.ModifiedAt,
		ToModifiedAt:   b.ModifiedAt,
		Changed:        a.DataHash != b.DataHash,
	}, nil
}

func findVersion(history []RecordVersion, version uint32) *RecordVersion {
	for i := range history {
		if history[i].Version == version {
			v := history[i]
			return &v
		}
	}
	return nil
}
