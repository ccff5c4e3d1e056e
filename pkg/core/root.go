// Package core implements the manifest-driven synchronization and
// verification engine over the roots of a cold backup set.
package core

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/parkeep/parkeep/pkg/model"
	"github.com/parkeep/parkeep/pkg/status"
	"github.com/parkeep/parkeep/pkg/storage"
)

// Root is one replica location participating in an invocation
type Root struct {
	// Path is the filesystem location of the root
	Path string

	// Store views the root as a key/value store of root-relative keys
	Store storage.Store

	// Manifest is the root's loaded metadata document
	Manifest *model.Manifest
}

// Label returns the root's stable label, recorded in its manifest at init
func (r *Root) Label() string {
	if r.Manifest == nil {
		return ""
	}
	return r.Manifest.Label
}

// FilePath resolves a root-relative key to a path on the configured filesystem
func (r *Root) FilePath(key string) string {
	return filepath.Join(r.Path, filepath.FromSlash(key))
}

// ResolveRoots loads and validates the manifests of every supplied root.
//
// All manifests must belong to the same backup set, with distinct labels.
// The returned roots are ordered by their manifest-recorded label index,
// never by invocation order.
func ResolveRoots(ctx context.Context, paths []string, opts ...Option) ([]*Root, error) {
	settings := newSettings(opts...)
	return resolveRoots(ctx, paths, settings)
}

func resolveRoots(ctx context.Context, paths []string, settings Settings) ([]*Root, error) {
	if len(paths) == 0 {
		return nil, errors.New("at least one root is required")
	}
	seen := make(map[string]struct{}, len(paths))
	roots := make([]*Root, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return nil, errors.Errorf("root %s supplied more than once", p)
		}
		seen[p] = struct{}{}

		store := settings.storeFor(p)
		m, err := LoadManifest(ctx, store)
		if err != nil {
			return nil, err
		}
		roots = append(roots, &Root{Path: p, Store: store, Manifest: m})
	}

	base := roots[0].Manifest.BaseName
	labels := make(map[string]string, len(roots))
	for _, r := range roots {
		if r.Manifest.BaseName != base {
			return nil, errors.Wrapf(status.ErrRootMismatch,
				"%s belongs to set %q, %s belongs to set %q",
				roots[0].Path, base, r.Path, r.Manifest.BaseName)
		}
		if other, ok := labels[r.Label()]; ok {
			return nil, errors.Wrapf(status.ErrRootMismatch,
				"%s and %s both carry label %q", other, r.Path, r.Label())
		}
		labels[r.Label()] = r.Path
	}

	sort.Slice(roots, func(i, j int) bool {
		a, _ := model.LabelIndex(base, roots[i].Label())
		b, _ := model.LabelIndex(base, roots[j].Label())
		return a < b
	})
	return roots, nil
}

func rootLabels(roots []*Root) []string {
	labels := make([]string, 0, len(roots))
	for _, r := range roots {
		labels = append(labels, r.Label())
	}
	return labels
}

// missingMembers returns the labels of set members recorded in the
// manifests but absent from this invocation
func missingMembers(roots []*Root) []string {
	supplied := rootLabels(roots)
	missing := map[string]struct{}{}
	for _, r := range roots {
		for _, m := range r.Manifest.MissingMembers(supplied) {
			missing[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(missing))
	for m := range missing {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
