package core

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkeep/parkeep/pkg/par2"
	"github.com/parkeep/parkeep/pkg/status"
)

func TestRepair(t *testing.T) {
	paths := addTracked(t, "tarball bytes")
	before := readManifestBytes(t, paths[0])
	tool := newMockTool()

	results, err := Repair(context.Background(), resolve(t, paths), "data/vacation.tar", WithTool(tool))
	require.NoError(t, err)

	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, FileParityOK, res.State)
		assert.Equal(t, "data/vacation.tar", res.Path)
	}

	// manifests are never rewritten by a repair
	assert.Equal(t, before, readManifestBytes(t, paths[0]))
}

func TestRepairImpossible(t *testing.T) {
	paths := addTracked(t, "tarball bytes")
	tool := newMockTool()
	tool.repairOutcome = par2.OutcomeRepairImpossible

	results, err := Repair(context.Background(), resolve(t, paths), "data/vacation.tar", WithTool(tool))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrRepairImpossible))
	require.Len(t, results, 2, "per-root results accompany the error")
	for _, res := range results {
		assert.Equal(t, FileParityImpossible, res.State)
	}
}

func TestRepairUntrackedPath(t *testing.T) {
	paths := addTracked(t, "tarball bytes")

	_, err := Repair(context.Background(), resolve(t, paths), "data/unknown.tar", WithTool(newMockTool()))
	require.Error(t, err)
}
