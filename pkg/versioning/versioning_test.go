package versioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

const (
	provider ledger.Address = "GPROVIDER"
	admin    ledger.Address = "GADMIN"
)

func setup(t *testing.T) *ledger.Ledger {
	t.Helper()
	return ledger.New(storage.NewMemory(), ledger.WithClock(ledger.NewManualClock(100)))
}

func withLog(t *testing.T, l *ledger.Ledger, fn func(log *Log) error) {
	t.Helper()
	require.NoError(t, l.Invoke(context.Background(), "test", func(tx *ledger.Tx) error {
		return fn(NewLog(tx))
	}))
}

func appendVersion(t *testing.T, l *ledger.Ledger, recordID uint64, hash string, by ledger.Address, at ledger.Timestamp) *RecordVersion {
	t.Helper()
	var v *RecordVersion
	withLog(t, l, func(log *Log) error {
		var err error
		v, err = log.Append(recordID, hash, by, at)
		return err
	})
	return v
}

func TestAppend_NumbersFromOne(t *testing.T) {
	l := setup(t)

	v1 := appendVersion(t, l, 1, "H1", provider, 100)
	v2 := appendVersion(t, l, 1, "H2", provider, 200)

	assert.Equal(t, uint32(1), v1.Version)
	assert.Equal(t, uint32(2), v2.Version)
	assert.Equal(t, ledger.Timestamp(200), v2.ModifiedAt)
	assert.Equal(t, provider, v2.ModifiedBy)
}

func TestHistory_LatestMatchesLength(t *testing.T) {
	l := setup(t)
	for i, h := range []string{"a", "b", "c", "b", "a"} {
		appendVersion(t, l, 3, h, provider, ledger.Timestamp(100*(i+1)))
	}

	withLog(t, l, func(log *Log) error {
		history, err := log.History(3)
		require.NoError(t, err)
		require.Len(t, history, 5)
		for i, v := range history {
			assert.Equal(t, uint32(i+1), v.Version)
		}

		latest, ok, err := log.Latest(3)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint32(len(history)), latest)
		return nil
	})
}

func TestHistory_IndependentPerRecord(t *testing.T) {
	l := setup(t)
	appendVersion(t, l, 1, "H1", provider, 100)
	v := appendVersion(t, l, 2, "X1", provider, 100)
	assert.Equal(t, uint32(1), v.Version)
}

func TestHistory_Empty(t *testing.T) {
	l := setup(t)
	withLog(t, l, func(log *Log) error {
		history, err := log.History(42)
		require.NoError(t, err)
		assert.NotNil(t, history)
		assert.Empty(t, history)

		_, ok, err := log.Latest(42)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
}

func TestVersion_Lookup(t *testing.T) {
	l := setup(t)
	appendVersion(t, l, 1, "H1", provider, 100)
	appendVersion(t, l, 1, "H2", provider, 200)

	withLog(t, l, func(log *Log) error {
		v, err := log.Version(1, 2)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, "H2", v.DataHash)

		for _, missing := range []uint32{0, 3, 99} {
			v, err = log.Version(1, missing)
			require.NoError(t, err)
			assert.Nil(t, v, "version %d", missing)
		}
		return nil
	})
}

func TestCompare(t *testing.T) {
	l := setup(t)
	appendVersion(t, l, 1, "H1", provider, 100)
	appendVersion(t, l, 1, "H2", provider, 200)
	appendVersion(t, l, 1, "H1", admin, 300)

	withLog(t, l, func(log *Log) error {
		c, err := log.Compare(1, 1, 2)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.True(t, c.Changed)
		assert.Equal(t, "H1", c.FromDataHash)
		assert.Equal(t, "H2", c.ToDataHash)
		assert.Equal(t, ledger.Timestamp(100), c.FromModifiedAt)
		assert.Equal(t, ledger.Timestamp(200), c.ToModifiedAt)

		c, err = log.Compare(1, 1, 3)
		require.NoError(t, err)
		assert.False(t, c.Changed, "rollback restores the same hash")

		c, err = log.Compare(1, 1, 4)
		require.NoError(t, err)
		assert.Nil(t, c)
		return nil
	})
}

func TestReadsDoNotMutate(t *testing.T) {
	backend := storage.NewMemory()
	l := ledger.New(backend)
	appendVersion(t, l, 1, "H1", provider, 100)
	before, err := backend.Get(context.Background(), "REC_HIST/1")
	require.NoError(t, err)

	require.NoError(t, l.View(context.Background(), "reads", func(tx *ledger.Tx) error {
		log := NewLog(tx)
		if _, err := log.Version(1, 1); err != nil {
			return err
		}
		_, err := log.Compare(1, 1, 1)
		return err
	}))

	after, err := backend.Get(context.Background(), "REC_HIST/1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAppend_Overflow(t *testing.T) {
	l := setup(t)

	err := l.Invoke(context.Background(), "test", func(tx *ledger.Tx) error {
		log := NewLog(tx)
		log.maxVersions = 2
		if _, err := log.Append(1, "a", provider, 1); err != nil {
			return err
		}
		if _, err := log.Append(1, "b", provider, 2); err != nil {
			return err
		}
		_, err := log.Append(1, "c", provider, 3)
		return err
	})
	assert.ErrorIs(t, err, ErrVersionOverflow)

	// the failed invocation left nothing behind
	withLog(t, l, func(log *Log) error {
		history, err := log.History(1)
		require.NoError(t, err)
		assert.Empty(t, history)
		return nil
	})
}
