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

func TestResolveOrdersByLabel(t *testing.T) {
	paths, _ := initTestSet(t, 3, "photos")

	// argument order must not matter: roots come back in label order
	shuffled := []string{paths[2], paths[0], paths[1]}
	roots := resolve(t, shuffled)

	require.Len(t, roots, 3)
	assert.Equal(t, []string{"photos_1", "photos_2", "photos_3"}, rootLabels(roots))
	assert.Equal(t, paths[0], roots[0].Path)
	assert.Equal(t, paths[2], roots[2].Path)
}

func TestResolveUninitialized(t *testing.T) {
	_, err := ResolveRoots(context.Background(), []string{t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestResolveRootMismatch(t *testing.T) {
	pathsA, _ := initTestSet(t, 1, "photos")
	pathsB, _ := initTestSet(t, 1, "documents")

	_, err := ResolveRoots(context.Background(), []string{pathsA[0], pathsB[0]})
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrRootMismatch))
}

func TestResolveDuplicateLabel(t *testing.T) {
	// two independently initialized single-root sets share the same base
	// name and therefore the same label
	pathsA, _ := initTestSet(t, 1, "photos")
	pathsB, _ := initTestSet(t, 1, "photos")

	_, err := ResolveRoots(context.Background(), []string{pathsA[0], pathsB[0]})
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrRootMismatch))
}

func TestResolveVersionGate(t *testing.T) {
	paths, _ := initTestSet(t, 1, "photos")

	manifest := filepath.Join(paths[0], "manifest.json")
	b, err := os.ReadFile(manifest)
	require.NoError(t, err)
	tampered := strings.Replace(string(b), `"1.0"`, `"99.0"`, 1)
	require.NotEqual(t, string(b), tampered)
	require.NoError(t, os.WriteFile(manifest, []byte(tampered), 0644))

	_, err = ResolveRoots(context.Background(), paths)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrVersionMismatch))
}

func TestResolveCorruptManifest(t *testing.T) {
	paths, _ := initTestSet(t, 1, "photos")
	require.NoError(t, os.WriteFile(filepath.Join(paths[0], "manifest.json"), []byte("{not json"), 0644))

	_, err := ResolveRoots(context.Background(), paths)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrCorrupt))
}

func TestMissingMembers(t *testing.T) {
	paths, _ := initTestSet(t, 3, "photos")

	roots := resolve(t, paths[:2])
	assert.Equal(t, []string{"photos_3"}, missingMembers(roots))

	all := resolve(t, paths)
	assert.Empty(t, missingMembers(all))
}
