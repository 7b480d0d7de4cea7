package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverlayReadsThroughToBase(t *testing.T) {
	base := NewMemDB()
	require.NoError(t, base.Put([]byte("key"), []byte("base")))

	overlay := NewOverlay(base)
	value, err := overlay.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("base"), value)
}

func TestOverlayStagesWritesUntilCommit(t *testing.T) {
	base := NewMemDB()
	overlay := NewOverlay(base)

	require.NoError(t, overlay.Put([]byte("key"), []byte("staged")))
	value, err := overlay.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("staged"), value)

	_, err = base.Get([]byte("key"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, overlay.Commit())
	value, err = base.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("staged"), value)
}

func TestOverlayStagedDeleteShadowsBase(t *testing.T) {
	base := NewMemDB()
	require.NoError(t, base.Put([]byte("key"), []byte("base")))

	overlay := NewOverlay(base)
	require.NoError(t, overlay.Delete([]byte("key")))
	_, err := overlay.Get([]byte("key"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	// Base is untouched until commit.
	value, err := base.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("base"), value)

	require.NoError(t, overlay.Commit())
	_, err = base.Get([]byte("key"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestOverlayPutAfterDelete(t *testing.T) {
	base := NewMemDB()
	require.NoError(t, base.Put([]byte("key"), []byte("base")))

	overlay := NewOverlay(base)
	require.NoError(t, overlay.Delete([]byte("key")))
	require.NoError(t, overlay.Put([]byte("key"), []byte("rewritten")))

	value, err := overlay.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("rewritten"), value)

	require.NoError(t, overlay.Commit())
	value, err = base.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("rewritten"), value)
}

// trackingDB counts the operations the overlay performs against its base.
type trackingDB struct {
	*MemDB
	puts    int
	deletes int
	batches int
}

func (d *trackingDB) Put(key, value []byte) error {
	d.puts++
	return d.MemDB.Put(key, value)
}

func (d *trackingDB) Delete(key []byte) error {
	d.deletes++
	return d.MemDB.Delete(key)
}

func (d *trackingDB) WriteBatch(batch Batch) error {
	d.batches++
	return d.MemDB.WriteBatch(batch)
}

func TestOverlayCommitIsOneBatch(t *testing.T) {
	base := &trackingDB{MemDB: NewMemDB()}
	require.NoError(t, base.Put([]byte("gone"), []byte("x")))
	base.puts = 0

	overlay := NewOverlay(base)
	require.NoError(t, overlay.Put([]byte("a"), []byte("1")))
	require.NoError(t, overlay.Put([]byte("ab"), []byte("2")))
	require.NoError(t, overlay.Delete([]byte("gone")))
	require.NoError(t, overlay.Commit())

	// The base must receive the whole unit of work as a single batch; key-by-key
	// application would let a concurrent reader see "ab" while "a" is missing.
	require.Zero(t, base.puts)
	require.Zero(t, base.deletes)
	require.Equal(t, 1, base.batches)

	for _, key := range []string{"a", "ab"} {
		value, err := base.Get([]byte(key))
		require.NoError(t, err)
		require.NotEmpty(t, value)
	}
	_, err := base.Get([]byte("gone"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestOverlayCommitEmptyTouchesNothing(t *testing.T) {
	base := &trackingDB{MemDB: NewMemDB()}
	overlay := NewOverlay(base)
	require.NoError(t, overlay.Commit())
	require.Zero(t, base.batches)
}

func TestOverlayWriteBatchStages(t *testing.T) {
	base := NewMemDB()
	require.NoError(t, base.Put([]byte("stale"), []byte("old")))

	overlay := NewOverlay(base)
	require.NoError(t, overlay.WriteBatch(Batch{
		Writes:  map[string][]byte{"fresh": []byte("new")},
		Deletes: map[string]struct{}{"stale": {}},
	}))

	// Staged, not applied.
	value, err := base.Get([]byte("stale"))
	require.NoError(t, err)
	require.Equal(t, []byte("old"), value)

	require.NoError(t, overlay.Commit())
	_, err = base.Get([]byte("stale"))
	require.ErrorIs(t, err, ErrKeyNotFound)
	value, err = base.Get([]byte("fresh"))
	require.NoError(t, err)
	require.Equal(t, []byte("new"), value)
}

func TestOverlayResetsAfterCommit(t *testing.T) {
	base := NewMemDB()
	overlay := NewOverlay(base)

	require.NoError(t, overlay.Put([]byte("first"), []byte("1")))
	require.NoError(t, overlay.Commit())

	require.NoError(t, base.Delete([]byte("first")))
	// A committed overlay holds no stale staged state.
	_, err := overlay.Get([]byte("first"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}
