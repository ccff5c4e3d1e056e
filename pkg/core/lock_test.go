package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkeep/parkeep/pkg/status"
)

func lockPath(root string) string {
	return filepath.Join(root, ".parkeep.lock")
}

func TestLockBusy(t *testing.T) {
	paths, _ := initTestSet(t, 2, "photos")
	require.NoError(t, os.WriteFile(lockPath(paths[0]), []byte("held elsewhere"), 0644))

	_, err := List(context.Background(), resolve(t, paths))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrBusy))

	// a foreign lock is never stolen
	b, err := os.ReadFile(lockPath(paths[0]))
	require.NoError(t, err)
	assert.Equal(t, "held elsewhere", string(b))

	require.NoError(t, os.Remove(lockPath(paths[0])))
	_, err = List(context.Background(), resolve(t, paths))
	require.NoError(t, err)
}

func TestLockReleasedAfterRun(t *testing.T) {
	paths := addTracked(t, "tarball bytes")

	_, err := Verify(context.Background(), resolve(t, paths), WithTool(newMockTool()))
	require.NoError(t, err)

	for _, p := range paths {
		_, err = os.Stat(lockPath(p))
		assert.True(t, os.IsNotExist(err), "lock left behind on %s", p)
	}
}

func TestLockRollbackOnPartialFailure(t *testing.T) {
	paths, _ := initTestSet(t, 2, "photos")
	// only the second root is held, so the first acquisition succeeds and
	// must be rolled back
	require.NoError(t, os.WriteFile(lockPath(paths[1]), []byte("held elsewhere"), 0644))

	_, err := List(context.Background(), resolve(t, paths))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrBusy))

	_, err = os.Stat(lockPath(paths[0]))
	assert.True(t, os.IsNotExist(err), "first root's lock not rolled back")
}
