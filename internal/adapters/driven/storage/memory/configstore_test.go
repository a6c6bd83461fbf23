package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("xero.client_id", "abc"))
	require.NoError(t, store.Set("xero.max_retries", int64(5)))
	require.NoError(t, store.Set("sync.verify_after_sync", true))

	assert.Equal(t, "abc", store.GetString("xero.client_id"))
	assert.Equal(t, 5, store.GetInt("xero.max_retries"))
	assert.True(t, store.GetBool("sync.verify_after_sync"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_WrongTypes(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("key", 42))

	assert.Empty(t, store.GetString("key"))
	assert.False(t, store.GetBool("key"))

	require.NoError(t, store.Set("float", 3.9))
	assert.Equal(t, 3, store.GetInt("float"))
}

func TestConfigStore_UnsetAndKeys(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("b", 1))
	require.NoError(t, store.Set("a", 2))

	assert.Equal(t, []string{"a", "b"}, store.Keys())

	require.NoError(t, store.Unset("a"))
	require.NoError(t, store.Unset("never-set"))
	assert.Equal(t, []string{"b"}, store.Keys())
}

func TestConfigStore_NoOpPersistence(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("key", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("key")
		}()
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}
