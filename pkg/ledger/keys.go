package ledger

import (
	"net/url"
	"strconv"
	"strings"
)

// Kind tags the entity type of a key
type Kind string

const (
	KindInstance      Kind = "INST"
	KindUser          Kind = "USER"
	KindRole          Kind = "ROLE"
	KindPermissions   Kind = "PERM"
	KindDelegations   Kind = "DELEG"
	KindAccess        Kind = "ACCESS"
	KindRecord        Kind = "RECORD"
	KindPatientIndex  Kind = "PAT_REC"
	KindRecordHistory Kind = "REC_HIST"
	KindCounter       Kind = "CTR"
)

// Key is a composite storage key: an entity kind followed by identifying fields
type Key struct {
	kind  Kind
	parts []string
}

// NewKey builds a key of the given kind
func NewKey(kind Kind, parts ...string) Key {
	return Key{kind: kind, parts: append([]string(nil), parts...)}
}

// Kind returns the key's entity kind
func (k Key) Kind() Kind {
	return k.kind
}

// String encodes the key. Each field is path-escaped, so a field containing the
// separator cannot collide with a key that has more fields.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.kind))
	for _, p := range k.parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// Uint formats an integer key field
func Uint(n uint64) string {
	return strconv.FormatUint(n, 10)
}
