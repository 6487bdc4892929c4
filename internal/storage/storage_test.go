package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runSlotStoreContract exercises the behaviour every backend must share.
func runSlotStoreContract(t *testing.T, store SlotStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("load missing slot", func(t *testing.T) {
		data, err := store.Load(ctx, "cart-storage:missing")
		assert.ErrorIs(t, err, ErrSlotNotFound)
		assert.Nil(t, data)
	})

	t.Run("save then load", func(t *testing.T) {
		payload := []byte(`[{"id":"a","quantity":2}]`)
		require.NoError(t, store.Save(ctx, "cart-storage:s1", payload))

		got, err := store.Load(ctx, "cart-storage:s1")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("save overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "cart-storage:s2", []byte("first")))
		require.NoError(t, store.Save(ctx, "cart-storage:s2", []byte("second")))

		got, err := store.Load(ctx, "cart-storage:s2")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("slots are independent", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "cart-storage:s3", []byte("three")))
		require.NoError(t, store.Save(ctx, "cart-storage:s4", []byte("four")))

		got, err := store.Load(ctx, "cart-storage:s3")
		require.NoError(t, err)
		assert.Equal(t, []byte("three"), got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "cart-storage:s5", []byte("x")))
		require.NoError(t, store.Delete(ctx, "cart-storage:s5"))

		_, err := store.Load(ctx, "cart-storage:s5")
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("delete missing slot", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "cart-storage:never-saved"))
	})
}

func TestMemoryStore(t *testing.T) {
	runSlotStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	payload := []byte("abc")
	require.NoError(t, store.Save(ctx, "k", payload))
	payload[0] = 'z'

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Load(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	runSlotStoreContract(t, store)
}

func TestSQLiteStore_ReopenKeepsSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carts.db")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "cart-storage:s1", []byte("persisted")))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "cart-storage:s1")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}

func TestBoltStore(t *testing.T) {
	store, err := OpenBolt(filepath.Join(t.TempDir(), "carts.bolt"))
	require.NoError(t, err)
	defer store.Close()

	runSlotStoreContract(t, store)
}

func TestOpenBolt_RequiresPath(t *testing.T) {
	_, err := OpenBolt("  ")
	assert.ErrorContains(t, err, "storage path is required")
}
