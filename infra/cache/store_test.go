package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/amirasaad/fxwidget/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeContract(t *testing.T, store cache.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "rates", []byte(`{"USD":1,"EUR":0.9}`)))
	got, err := store.Get(ctx, "rates")
	require.NoError(t, err)
	assert.JSONEq(t, `{"USD":1,"EUR":0.9}`, string(got))

	// last writer wins
	require.NoError(t, store.Set(ctx, "rates", []byte(`{"USD":1}`)))
	got, err = store.Get(ctx, "rates")
	require.NoError(t, err)
	assert.JSONEq(t, `{"USD":1}`, string(got))

	require.NoError(t, store.Delete(ctx, "rates"))
	_, err = store.Get(ctx, "rates")
	require.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, store.Delete(ctx, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte(`{"a":1}`)
	require.NoError(t, store.Set(ctx, "k", value))
	value[2] = 'b'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestFileStore(t *testing.T) {
	storeContract(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json")))
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, NewFileStore(path).Set(ctx, "prefs", []byte(`{"from":"USD"}`)))

	got, err := NewFileStore(path).Get(ctx, "prefs")
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"USD"}`, string(got))
}

func TestFileStore_RejectsInvalidJSON(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	err := store.Set(context.Background(), "k", []byte("not json"))
	require.Error(t, err)
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	store := NewFileStore(path)

	_, err := store.Get(ctx, "rates")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrCacheMiss)

	// a write replaces the corrupt document
	require.NoError(t, store.Set(ctx, "rates", []byte(`{"USD":1}`)))
	got, err := store.Get(ctx, "rates")
	require.NoError(t, err)
	assert.JSONEq(t, `{"USD":1}`, string(got))
}

func TestFileStore_UnreadableFileIsKept(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	// a directory in place of the file makes every read fail
	require.NoError(t, os.MkdirAll(filepath.Join(path, "keep"), 0o755))
	store := NewFileStore(path)

	err := store.Set(ctx, "rates", []byte(`{"USD":1}`))
	require.ErrorContains(t, err, "failed to read store file")

	info, statErr := os.Stat(filepath.Join(path, "keep"))
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("FXWIDGET_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FXWIDGET_TEST_REDIS_URL not set")
	}
	store, err := NewRedisStore(url, "fxwidget-test:", nil)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	require.NoError(t, store.Ping(context.Background(), 3))

	storeContract(t, store)
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore("http://not-redis", "", nil)
	require.Error(t, err)
}
