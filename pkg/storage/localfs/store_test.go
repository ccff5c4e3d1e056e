package localfs

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkeep/parkeep/pkg/storage"
)

func setupStore(t *testing.T) storage.Store {
	fs := afero.NewMemMapFs()
	bs := New(fs, "test root")

	require.NoError(t, bs.Put(context.Background(), "manifest.json", strings.NewReader("{}"), storage.OverWrite))
	require.NoError(t, bs.Put(context.Background(), "data/one.tar", strings.NewReader("this is the content"), storage.OverWrite))
	return bs
}

func TestHas(t *testing.T) {
	bs := setupStore(t)

	has, err := bs.Has(context.Background(), "data/one.tar")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(context.Background(), "data/absent.tar")
	require.NoError(t, err)
	require.False(t, has)

	// directories are not objects
	has, err = bs.Has(context.Background(), "data")
	require.NoError(t, err)
	require.False(t, has)
}

func TestGet(t *testing.T) {
	bs := setupStore(t)

	rdr, err := bs.Get(context.Background(), "data/one.tar")
	require.NoError(t, err)
	b, err := io.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "this is the content", string(b))

	_, err = bs.Get(context.Background(), "data/absent.tar")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPutOverwriteIsAtomicReplace(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Put(context.Background(), "manifest.json", strings.NewReader(`{"a":1}`), storage.OverWrite))
	rdr, err := bs.Get(context.Background(), "manifest.json")
	require.NoError(t, err)
	b, _ := io.ReadAll(rdr)
	assert.Equal(t, `{"a":1}`, string(b))

	// no temp files left behind
	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	for _, k := range keys {
		assert.NotContains(t, k, ".tmp-")
	}
}

func TestPutExclusive(t *testing.T) {
	bs := setupStore(t)

	err := bs.Put(context.Background(), "lock", bytes.NewReader([]byte("pid 1")), storage.IfNotPresent)
	require.NoError(t, err)

	err = bs.Put(context.Background(), "lock", bytes.NewReader([]byte("pid 2")), storage.IfNotPresent)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrExists)

	// the original content survives a failed exclusive put
	rdr, err := bs.Get(context.Background(), "lock")
	require.NoError(t, err)
	b, _ := io.ReadAll(rdr)
	assert.Equal(t, "pid 1", string(b))
}

func TestDelete(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Delete(context.Background(), "data/one.tar"))
	has, err := bs.Has(context.Background(), "data/one.tar")
	require.NoError(t, err)
	assert.False(t, has)

	// deleting an absent key is not an error
	require.NoError(t, bs.Delete(context.Background(), "data/one.tar"))
}

func TestKeys(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Put(context.Background(), "data/sub/two.tar", strings.NewReader("x"), storage.OverWrite))
	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	assert.Contains(t, keys, "manifest.json")
	assert.Contains(t, keys, "data/one.tar")
	assert.Contains(t, keys, "data/sub/two.tar")
}

func TestEnsureDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	bs := New(fs, "test root")

	require.NoError(t, bs.EnsureDir(context.Background(), "data"))
	fi, err := fs.Stat("data")
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}
