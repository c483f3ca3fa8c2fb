// Package records exposes the vision records entry points.
//
// A Service runs each entry point as one ledger invocation. Mutating calls
// first check that the instance is initialized and not paused, then ask the
// authorization decision whether the caller may act, and only then touch
// record storage and the version history. A rejected call changes nothing,
// counters included.
//
// Authorization for writes is tiered:
//
//  1. the provider acting on their own records needs write_record
//  2. anyone else needs a live delegation from the provider whose role carries write_record
//  3. system_admin may always write
//
// Access grant management follows the same tiers with manage_access, except
// that a patient always controls their own grants. Only the patient can revoke
// a grant, and only a system admin can roll a record back.
//
// Errors are sentinels; Code maps them to stable numeric codes.
package records
