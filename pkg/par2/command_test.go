package par2

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListArtifacts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.tar")
	for _, n := range []string{
		"file.tar",
		"file.tar.par2",
		"file.tar.vol000+01.par2",
		"file.tar.vol001+02.par2",
		"other.tar.par2",
		"file.tar.bak",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}

	artifacts, err := ListArtifacts(file)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"file.tar.par2",
		"file.tar.vol000+01.par2",
		"file.tar.vol001+02.par2",
	}, artifacts)
}

func TestListArtifactsNone(t *testing.T) {
	dir := t.TempDir()
	artifacts, err := ListArtifacts(filepath.Join(dir, "file.tar"))
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestLocateConfigured(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "par2")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755))

	found, err := Locate(exe)
	require.NoError(t, err)
	assert.Equal(t, exe, found)

	_, err = Locate(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
