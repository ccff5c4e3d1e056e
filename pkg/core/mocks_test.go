package core

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parkeep/parkeep/pkg/par2"
)

// mockTool substitutes the external parity tool: it fabricates artifact
// files next to the target and classifies per canned outcomes, so no test
// ever spawns a process.
type mockTool struct {
	mu          sync.Mutex
	createCalls []string
	percents    []int
	// outcome per absolute file path; unset paths verify OK
	verifyOutcomes map[string]par2.Outcome
	repairOutcome  par2.Outcome
}

func newMockTool() *mockTool {
	return &mockTool{
		verifyOutcomes: map[string]par2.Outcome{},
		repairOutcome:  par2.OutcomeOK,
	}
}

func (m *mockTool) Create(ctx context.Context, file string, parityPercent int) ([]string, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, file)
	m.percents = append(m.percents, parityPercent)
	m.mu.Unlock()

	name := filepath.Base(file)
	artifacts := []string{name + ".par2", name + ".vol000+01.par2"}
	for _, a := range artifacts {
		if err := os.WriteFile(filepath.Join(filepath.Dir(file), a), []byte("parity"), 0644); err != nil {
			return nil, err
		}
	}
	return artifacts, nil
}

func (m *mockTool) Verify(ctx context.Context, file string) par2.Report {
	m.mu.Lock()
	outcome, ok := m.verifyOutcomes[file]
	m.mu.Unlock()
	if !ok {
		outcome = par2.OutcomeOK
	}
	return par2.Report{Outcome: outcome, Detail: "mock " + outcome.String()}
}

func (m *mockTool) Repair(ctx context.Context, file string) par2.Report {
	return par2.Report{Outcome: m.repairOutcome, Detail: "mock repair"}
}

func (m *mockTool) creates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.createCalls...)
}

var _ par2.Tool = &mockTool{}

// initTestSet initializes a fresh backup set over n temp dirs
func initTestSet(t *testing.T, n int, baseName string) ([]string, []*Root) {
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		paths = append(paths, t.TempDir())
	}
	roots, err := InitRoots(context.Background(), paths, baseName)
	require.NoError(t, err)
	return paths, roots
}

// writeAll writes the same content at the same relative path on every root
func writeAll(t *testing.T, paths []string, rel, content string) {
	for _, p := range paths {
		writeOne(t, p, rel, content)
	}
}

func writeOne(t *testing.T, root, rel, content string) {
	target := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte(content), 0644))
}

func resolve(t *testing.T, paths []string) []*Root {
	roots, err := ResolveRoots(context.Background(), paths)
	require.NoError(t, err)
	return roots
}

func readManifestBytes(t *testing.T, root string) []byte {
	b, err := os.ReadFile(filepath.Join(root, "manifest.json"))
	require.NoError(t, err)
	return b
}
