package core

import (
	"context"
	"sort"

	"github.com/parkeep/parkeep/pkg/model"
)

// SyncState classifies one tracked path across the roots supplied to an
// invocation. Roots not supplied are out of the picture entirely: absence
// from the invocation is not absence from the filesystem.
type SyncState int

const (
	// SyncSynced indicates the file is present with a matching digest on every supplied root
	SyncSynced SyncState = iota

	// SyncPartiallyMissing indicates a matching copy on a strict subset of the supplied roots
	SyncPartiallyMissing

	// SyncDiverged indicates disagreement between recorded and computed digests.
	// This is the priority alert: corruption combined with inconsistent
	// recovery state, the worst case for a backup set.
	SyncDiverged

	// SyncManifestOnly indicates a path listed in manifests but absent from
	// every supplied root's filesystem
	SyncManifestOnly
)

func (s SyncState) String() string {
	switch s {
	case SyncSynced:
		return "synced"
	case SyncPartiallyMissing:
		return "partially-missing"
	case SyncDiverged:
		return "diverged"
	case SyncManifestOnly:
		return "manifest-only"
	default:
		return "unknown"
	}
}

// RootFileStatus is the per-root status of a path
type RootFileStatus int

const (
	// StatusPresent indicates the file is present with a digest matching the manifest
	StatusPresent RootFileStatus = iota

	// StatusMissing indicates a tracked file absent from the root's filesystem
	StatusMissing

	// StatusHashMismatch indicates on-disk content that no longer matches the recorded digest
	StatusHashMismatch

	// StatusParityMissing indicates an intact file whose parity artifacts are gone
	StatusParityMissing

	// StatusUntracked indicates a file on disk with no manifest entry on that root
	StatusUntracked
)

func (s RootFileStatus) String() string {
	switch s {
	case StatusPresent:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusHashMismatch:
		return "hash-mismatch"
	case StatusParityMissing:
		return "parity-missing"
	case StatusUntracked:
		return "untracked"
	default:
		return "unknown"
	}
}

// PathReport is the cross-root classification of one tracked path
type PathReport struct {
	Path    string
	State   SyncState
	PerRoot map[string]RootFileStatus
}

// observation is what one root knows about one path
type observation struct {
	tracked bool
	present bool
	digest  string
	matches bool
	parity  bool
}

// classifyPath folds per-root observations into a PathReport.
//
// Divergence wins over everything: either two present copies disagree, or
// a present copy disagrees with its own manifest record. A mismatch on a
// single supplied root is still divergence, since recorded and computed
// digests for the path no longer agree.
func classifyPath(path string, obs map[string]observation) PathReport {
	report := PathReport{
		Path:    path,
		PerRoot: make(map[string]RootFileStatus, len(obs)),
	}

	var tracked, present, matching int
	digests := map[string]struct{}{}
	mismatch := false
	for label, o := range obs {
		switch {
		case !o.tracked && o.present:
			report.PerRoot[label] = StatusUntracked
		case !o.present:
			report.PerRoot[label] = StatusMissing
		case !o.matches:
			report.PerRoot[label] = StatusHashMismatch
		case !o.parity:
			report.PerRoot[label] = StatusParityMissing
		default:
			report.PerRoot[label] = StatusPresent
		}

		if o.tracked {
			tracked++
		}
		if o.present {
			present++
			digests[o.digest] = struct{}{}
			if o.tracked && !o.matches {
				mismatch = true
			}
			if o.tracked && o.matches {
				matching++
			}
		}
	}

	switch {
	case mismatch || len(digests) > 1:
		report.State = SyncDiverged
	case present == 0:
		report.State = SyncManifestOnly
	case matching < tracked:
		report.State = SyncPartiallyMissing
	default:
		report.State = SyncSynced
	}
	return report
}

// CheckConsistency recomputes digests for every tracked path on every
// supplied root and classifies each path's cross-root state
func CheckConsistency(ctx context.Context, roots []*Root, opts ...Option) ([]PathReport, error) {
	settings := newSettings(opts...)
	obs, err := observeRoots(ctx, roots, settings)
	if err != nil {
		return nil, err
	}
	return classifyObservations(trackedUnion(roots), obs), nil
}

// observeRoots gathers observations for the union of tracked paths,
// keyed by root label then path, hashing on-disk content. Roots proceed
// in parallel; each worker writes only its own slot.
func observeRoots(ctx context.Context, roots []*Root, settings Settings) (map[string]map[string]observation, error) {
	paths := trackedUnion(roots)
	slots := make([]map[string]observation, len(roots))
	index := make(map[*Root]int, len(roots))
	for i, r := range roots {
		index[r] = i
	}

	err := runPerRoot(ctx, roots, settings.rootConcurrency(len(roots)), func(ctx context.Context, r *Root) error {
		mine := make(map[string]observation, len(paths))
		for _, p := range paths {
			o, err := observePath(ctx, r, p, settings)
			if err != nil {
				return err
			}
			mine[p] = o
		}
		slots[index[r]] = mine
		return nil
	})
	if err != nil {
		return nil, err
	}

	obs := make(map[string]map[string]observation, len(roots))
	for i, r := range roots {
		obs[r.Label()] = slots[i]
	}
	return obs, nil
}

func observePath(ctx context.Context, r *Root, p string, settings Settings) (observation, error) {
	entry, tracked := r.Manifest.Files[p]
	o := observation{tracked: tracked}

	present, err := r.Store.Has(ctx, p)
	if err != nil {
		return o, err
	}
	if !present {
		return o, nil
	}
	o.present = true

	digest, _, err := settings.maker.ProcessFile(settings.fs, r.FilePath(p))
	if err != nil {
		return o, err
	}
	o.digest = digest
	o.matches = tracked && digest == entry.Digest

	o.parity, err = r.Store.Has(ctx, model.GetParityPath(p))
	if err != nil {
		return o, err
	}
	return o, nil
}

func classifyObservations(paths []string, obs map[string]map[string]observation) []PathReport {
	reports := make([]PathReport, 0, len(paths))
	for _, p := range paths {
		merged := make(map[string]observation, len(obs))
		for label, byPath := range obs {
			if o, ok := byPath[p]; ok {
				merged[label] = o
			}
		}
		reports = append(reports, classifyPath(p, merged))
	}
	return reports
}

// trackedUnion returns the union of tracked paths across the supplied
// roots' manifests, in lexical order
func trackedUnion(roots []*Root) []string {
	set := map[string]struct{}{}
	for _, r := range roots {
		for p := range r.Manifest.Files {
			set[p] = struct{}{}
		}
	}
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
