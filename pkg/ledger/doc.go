// Package ledger is the execution host for the vision records engine.
//
// Every entry point runs as an invocation: a function over a Tx that sees a
// consistent snapshot of the key-value state, buffers its writes, and commits
// them to the storage backend in a single batch only when it returns nil.
// Invocations are serialized, so read-increment-write sequences on counters
// need no further locking.
//
//	err := l.Invoke(ctx, "add_record", func(tx *ledger.Tx) error {
//		var n uint64
//		if _, err := tx.Get(ledger.NewKey(ledger.KindCounter, "record"), &n); err != nil {
//			return err
//		}
//		return tx.Set(ledger.NewKey(ledger.KindCounter, "record"), n+1)
//	})
//
// Keys are tagged with an entity Kind so that each entity type lives in its
// own namespace.
package ledger
