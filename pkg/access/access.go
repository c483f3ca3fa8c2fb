// Package access is the patient-controlled access grant registry.
//
// A patient shares their records with a grantee at an AccessLevel until an
// expiry time. There is at most one grant per (patient, grantee) pair and a new
// grant overwrites the old one. Expiry is lazy: an expired grant stays in
// storage but reads as LevelNone.
package access

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/ledger"
)

// ErrExpiryOverflow is returned when now + duration does not fit a timestamp
var ErrExpiryOverflow = errors.New("grant expiry overflows timestamp")

// Level is an ordered access level
type Level uint8

const (
	LevelNone Level = iota
	LevelRead
	LevelWrite
	LevelFull
)

var levelNames = [...]string{"none", "read", "write", "full"}

// String returns the level name
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

// Valid reports whether l is a known level
func (l Level) Valid() bool {
	return l <= LevelFull
}

// Includes reports whether l grants at least the capabilities of other
func (l Level) Includes(other Level) bool {
	return l >= other
}

// ParseLevel parses a level name
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelNone, fmt.Errorf("unknown access level %q", s)
}

// MarshalJSON encodes the level by name
func (l Level) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("unknown access level %d", uint8(l))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level name
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Grant is a stored sharing decision
type Grant struct {
	Patient   ledger.Address   `json:"patient"`
	Grantee   ledger.Address   `json:"grantee"`
	Level     Level            `json:"level"`
	GrantedAt ledger.Timestamp `json:"granted_at"`
	ExpiresAt ledger.Timestamp `json:"expires_at"`
}

// Live reports whether the grant is in force at now
func (g Grant) Live(now ledger.Timestamp) bool {
	return now < g.ExpiresAt
}

// Registry reads and writes grants inside one ledger invocation
type Registry struct {
	tx *ledger.Tx
}

// NewRegistry creates a registry bound to tx
func NewRegistry(tx *ledger.Tx) *Registry {
	return &Registry{tx: tx}
}

func grantKey(patient, grantee ledger.Address) ledger.Key {
	return ledger.NewKey(ledger.KindAccess, string(patient), string(grantee))
}

// GrantAccess stores a grant expiring durationSeconds from now, replacing any
// previous grant for the pair. Authorization is the caller's job.
func (r *Registry) GrantAccess(patient, grantee ledger.Address, level Level, durationSeconds uint64) (*Grant, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("unknown access level %d", uint8(level))
	}

	now := r.tx.Now()
	expiresAt, ok := now.Add(durationSeconds)
	if !ok {
		return nil, ErrExpiryOverflow
	}

	g := &Grant{
		Patient:   patient,
		Grantee:   grantee,
		Level:     level,
		GrantedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := r.tx.Set(grantKey(patient, grantee), g); err != nil {
		return nil, fmt.Errorf("failed to store grant: %w", err)
	}
	return g, nil
}

// GetGrant returns the stored grant, expired or not, or nil if none exists
func (r *Registry) GetGrant(patient, grantee ledger.Address) (*Grant, error) {
	var g Grant
	ok, err := r.tx.Get(grantKey(patient, grantee), &g)
	if err != nil {
		return nil, fmt.Errorf("failed to get grant: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &g, nil
}

// CheckAccess returns the live access level, LevelNone when there is no grant or it expired
func (r *Registry) CheckAccess(patient, grantee ledger.Address) (Level, error) {
	g, err := r.GetGrant(patient, grantee)
	if err != nil {
		return LevelNone, err
	}
	if g == nil || !g.Live(r.tx.Now()) {
		return LevelNone, nil
	}
	return g.Level, nil
}

// RevokeAccess deletes the grant for the pair. Revoking a missing grant is a no-op.
func (r *Registry) RevokeAccess(patient, grantee ledger.Address) error {
	return r.tx.Delete(grantKey(patient, grantee))
}
