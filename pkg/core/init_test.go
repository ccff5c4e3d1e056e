package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkeep/parkeep/pkg/status"
)

func TestInitRoots(t *testing.T) {
	paths, roots := initTestSet(t, 3, "photos")

	require.Len(t, roots, 3)
	expected := []string{"photos_1", "photos_2", "photos_3"}
	for i, r := range roots {
		assert.Equal(t, expected[i], r.Label())
		assert.Equal(t, "photos", r.Manifest.BaseName)
		assert.Equal(t, expected, r.Manifest.Members)
		assert.Empty(t, r.Manifest.Files)

		info, err := os.Stat(filepath.Join(paths[i], "data"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		_, err = os.Stat(filepath.Join(paths[i], "manifest.json"))
		require.NoError(t, err)
	}
}

func TestInitAlreadyInitialized(t *testing.T) {
	paths, _ := initTestSet(t, 2, "photos")
	before := readManifestBytes(t, paths[0])

	_, err := InitRoots(context.Background(), paths, "photos")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrAlreadyInitialized))

	// the failed attempt must not have touched the existing set
	assert.Equal(t, before, readManifestBytes(t, paths[0]))
}

func TestInitPartiallyInitialized(t *testing.T) {
	paths, _ := initTestSet(t, 1, "photos")
	fresh := t.TempDir()

	_, err := InitRoots(context.Background(), append(paths, fresh), "photos")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrAlreadyInitialized))

	// the fresh root stays uninitialized: nothing is written before all
	// roots passed the check
	_, err = os.Stat(filepath.Join(fresh, "manifest.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestInitVersionGate(t *testing.T) {
	paths, _ := initTestSet(t, 1, "photos")

	manifest := filepath.Join(paths[0], "manifest.json")
	b, err := os.ReadFile(manifest)
	require.NoError(t, err)
	tampered := strings.Replace(string(b), `"1.0"`, `"99.0"`, 1)
	require.NotEqual(t, string(b), tampered)
	require.NoError(t, os.WriteFile(manifest, []byte(tampered), 0644))

	_, err = InitRoots(context.Background(), paths, "photos")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrVersionMismatch))
}

func TestInitBaseNameValidation(t *testing.T) {
	for _, bad := range []string{"", "with space", "with/slash", "with\\backslash", "with\ttab"} {
		_, err := InitRoots(context.Background(), []string{t.TempDir()}, bad)
		assert.Error(t, err, "base name %q", bad)
	}
}

func TestInitNoRoots(t *testing.T) {
	_, err := InitRoots(context.Background(), nil, "photos")
	require.Error(t, err)
}
