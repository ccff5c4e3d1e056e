package core

import (
	"context"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/parkeep/parkeep/pkg/model"
	"github.com/parkeep/parkeep/pkg/status"
)

// Add tracks one file across every supplied root: it verifies the copies
// are byte-identical, generates per-root parity data, and appends an
// identical manifest entry everywhere.
//
// The invocation is all-or-nothing: no manifest is persisted until the
// parity phase succeeded on every root. Parity artifacts orphaned by an
// aborted run are harmless, since re-running Add for the same path
// overwrites them.
func Add(ctx context.Context, roots []*Root, relPath string, parityPercent int, opts ...Option) (*model.TrackedFile, error) {
	settings := newSettings(opts...)
	if len(roots) == 0 {
		return nil, errors.New("at least one root is required")
	}
	if settings.tool == nil {
		return nil, errors.New("no parity tool configured")
	}
	if parityPercent < 1 || parityPercent > 100 {
		return nil, errors.Errorf("parity percent %d out of range [1,100]", parityPercent)
	}
	relPath, err := cleanTrackedPath(relPath)
	if err != nil {
		return nil, err
	}

	release, err := lockRoots(ctx, roots, settings.l)
	if err != nil {
		return nil, err
	}
	defer release()

	// mutating a set while members are absent guarantees manifest divergence
	if missing := missingMembers(roots); len(missing) > 0 && !settings.force {
		return nil, errors.Wrapf(status.ErrMembersAbsent,
			"absent: %s (use force only if you are certain)", strings.Join(missing, ", "))
	}
	for _, r := range roots {
		if _, ok := r.Manifest.Files[relPath]; ok {
			return nil, errors.Wrapf(status.ErrDuplicatePath, "%s on root %s", relPath, r.Store)
		}
	}

	digest, size, err := hashAcrossRoots(ctx, roots, relPath, settings)
	if err != nil {
		return nil, err
	}

	artifacts, err := generateParity(ctx, roots, relPath, parityPercent, settings)
	if err != nil {
		return nil, err
	}

	entry := model.TrackedFile{
		Path:          relPath,
		Digest:        digest,
		Size:          size,
		ParityPercent: parityPercent,
		ParityFiles:   artifacts,
		CreatedAt:     time.Now().UTC(),
	}
	for _, r := range roots {
		if err = r.Manifest.Track(entry); err != nil {
			return nil, err
		}
	}
	for _, r := range roots {
		if err = SaveManifest(ctx, r.Store, r.Manifest); err != nil {
			return nil, err
		}
	}
	settings.l.Info("tracked file on all roots",
		zap.String("path", relPath),
		zap.String("digest", digest),
		zap.Int("roots", len(roots)),
	)
	return &entry, nil
}

// hashAcrossRoots digests the file on every root in parallel and requires
// all copies to be byte-identical. The returned digest is the one shared
// digest; any disagreement aborts before anything is generated.
func hashAcrossRoots(ctx context.Context, roots []*Root, relPath string, settings Settings) (string, int64, error) {
	type hashed struct {
		digest string
		size   int64
	}
	results := make([]hashed, len(roots))
	index := indexRoots(roots)

	err := runPerRoot(ctx, roots, settings.rootConcurrency(len(roots)), func(ctx context.Context, r *Root) error {
		present, err := r.Store.Has(ctx, relPath)
		if err != nil {
			return err
		}
		if !present {
			return errors.Wrapf(status.ErrFileMismatch, "%s does not exist on root %s", relPath, r.Store)
		}
		digest, size, err := settings.maker.ProcessFile(settings.fs, r.FilePath(relPath))
		if err != nil {
			return err
		}
		results[index[r]] = hashed{digest: digest, size: size}
		return nil
	})
	if err != nil {
		return "", 0, err
	}

	first := results[0]
	for i, res := range results {
		if res.digest != first.digest || res.size != first.size {
			return "", 0, errors.Wrapf(status.ErrFileMismatch,
				"%s differs between roots %s (%s) and %s (%s)",
				relPath, roots[0].Store, first.digest, roots[i].Store, res.digest)
		}
	}
	return first.digest, first.size, nil
}

// generateParity runs the external tool once per root, in parallel across
// roots. Parity is strictly per-root: the roots are physically separate
// devices and must not share recovery data. Returns the artifact keys,
// which must agree across roots since the entries do.
func generateParity(ctx context.Context, roots []*Root, relPath string, parityPercent int, settings Settings) ([]string, error) {
	artifactsPerRoot := make([][]string, len(roots))
	index := indexRoots(roots)

	err := runPerRoot(ctx, roots, settings.rootConcurrency(len(roots)), func(ctx context.Context, r *Root) error {
		hasParity, err := r.Store.Has(ctx, model.GetParityPath(relPath))
		if err != nil {
			return err
		}
		var names []string
		if hasParity && settings.reuseParity {
			settings.l.Info("reusing existing parity artifacts",
				zap.String("root", r.Path), zap.String("path", relPath))
			names, err = existingArtifacts(ctx, r, relPath)
		} else if hasParity {
			return errors.Wrapf(status.ErrToolError,
				"%s on root %s already has parity data; use reuse-parity if this is intentional",
				relPath, r.Store)
		} else {
			names, err = settings.tool.Create(ctx, r.FilePath(relPath), parityPercent)
		}
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(names))
		dir := path.Dir(relPath)
		for _, n := range names {
			keys = append(keys, path.Join(dir, n))
		}
		sort.Strings(keys)
		artifactsPerRoot[index[r]] = keys
		return nil
	})
	if err != nil {
		return nil, err
	}

	first := artifactsPerRoot[0]
	for i, keys := range artifactsPerRoot {
		if !equalStrings(first, keys) {
			return nil, errors.Wrapf(status.ErrToolError,
				"parity artifacts differ between roots %s and %s", roots[0].Store, roots[i].Store)
		}
	}
	return first, nil
}

// existingArtifacts lists the parity artifacts already present for a path
// on one root, as tool-reported basenames
func existingArtifacts(ctx context.Context, r *Root, relPath string) ([]string, error) {
	keys, err := r.Store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, k := range keys {
		if !model.IsParityPath(k) {
			continue
		}
		if base, ok := model.ParityBasePath(k); ok && base == relPath {
			names = append(names, path.Base(k))
		}
	}
	sort.Strings(names)
	return names, nil
}

// cleanTrackedPath normalizes a root-relative path and confirms it lies
// under the data directory
func cleanTrackedPath(relPath string) (string, error) {
	p := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	if p == "" || p == "." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
		return "", errors.Wrap(status.ErrOutsideData, relPath)
	}
	if !model.InDataDir(p) {
		return "", errors.Wrapf(status.ErrOutsideData,
			"%s: tracked paths are root-relative and look like %s/some/file", relPath, model.DataDir)
	}
	return p, nil
}

func indexRoots(roots []*Root) map[*Root]int {
	index := make(map[*Root]int, len(roots))
	for i, r := range roots {
		index[r] = i
	}
	return index
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
