package core

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/parkeep/parkeep/pkg/model"
)

// ListEntry is one row of the consistency table: a tracked path with its
// cross-root state, or an untracked file found under a root's data
// directory (including orphaned parity artifacts whose file is untracked).
type ListEntry struct {
	Path    string
	Tracked bool
	State   SyncState
	PerRoot map[string]RootFileStatus
	Size    int64
}

// ListReport is the outcome of a List invocation
type ListReport struct {
	Entries []ListEntry

	// MissingMembers lists backup-set members recorded in the manifests
	// but not supplied to this invocation
	MissingMembers []string
}

// Synced indicates whether every tracked entry is fully synced
func (r *ListReport) Synced() bool {
	for _, e := range r.Entries {
		if !e.Tracked || e.State != SyncSynced {
			return false
		}
		for _, st := range e.PerRoot {
			if st != StatusPresent {
				return false
			}
		}
	}
	return true
}

// List classifies every tracked path across the supplied roots and scans
// each root's data directory for files the manifests do not know about
func List(ctx context.Context, roots []*Root, opts ...Option) (*ListReport, error) {
	settings := newSettings(opts...)
	if len(roots) == 0 {
		return nil, errors.New("at least one root is required")
	}

	release, err := lockRoots(ctx, roots, settings.l)
	if err != nil {
		return nil, err
	}
	defer release()

	obs, err := observeRoots(ctx, roots, settings)
	if err != nil {
		return nil, err
	}

	tracked := trackedUnion(roots)
	report := &ListReport{MissingMembers: missingMembers(roots)}
	for _, pr := range classifyObservations(tracked, obs) {
		entry := ListEntry{
			Path:    pr.Path,
			Tracked: true,
			State:   pr.State,
			PerRoot: pr.PerRoot,
		}
		for _, r := range roots {
			if f, ok := r.Manifest.Files[pr.Path]; ok {
				entry.Size = f.Size
				break
			}
		}
		report.Entries = append(report.Entries, entry)
	}

	untracked, err := untrackedEntries(ctx, roots, tracked)
	if err != nil {
		return nil, err
	}
	report.Entries = append(report.Entries, untracked...)

	sort.Slice(report.Entries, func(i, j int) bool {
		return report.Entries[i].Path < report.Entries[j].Path
	})
	return report, nil
}

// untrackedEntries walks each root's data directory for files and parity
// artifacts with no manifest entry
func untrackedEntries(ctx context.Context, roots []*Root, tracked []string) ([]ListEntry, error) {
	isTracked := make(map[string]struct{}, len(tracked))
	for _, p := range tracked {
		isTracked[p] = struct{}{}
	}

	found := map[string]map[string]RootFileStatus{}
	for _, r := range roots {
		keys, err := r.Store.Keys(ctx)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if !model.InDataDir(k) {
				continue
			}
			p := k
			if model.IsParityPath(k) {
				base, ok := model.ParityBasePath(k)
				if !ok {
					continue
				}
				p = base
			}
			if _, ok := isTracked[p]; ok {
				continue
			}
			if found[p] == nil {
				found[p] = map[string]RootFileStatus{}
			}
			found[p][r.Label()] = StatusUntracked
		}
	}

	entries := make([]ListEntry, 0, len(found))
	for p, perRoot := range found {
		entries = append(entries, ListEntry{Path: p, PerRoot: perRoot})
	}
	return entries, nil
}
