package core

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/parkeep/parkeep/pkg/model"
	"github.com/parkeep/parkeep/pkg/status"
)

// InitRoots initializes every supplied path as a root of a new backup set.
//
// Labels are assigned from invocation order, once, here: base_1, base_2, …
// in the order the roots were supplied. Every later command orders roots by
// these stored labels and never re-derives them from argument order.
//
// All roots are confirmed uninitialized before any manifest is written, so
// an AlreadyInitialized failure leaves every root untouched.
func InitRoots(ctx context.Context, paths []string, baseName string, opts ...Option) ([]*Root, error) {
	settings := newSettings(opts...)
	if err := validateBaseName(baseName); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("at least one root is required")
	}
	if len(paths) < 2 {
		settings.l.Warn("initializing a backup set with a single root: a set should span at least two independent devices")
	}

	members := make([]string, 0, len(paths))
	for i := range paths {
		members = append(members, model.GetLabel(baseName, i+1))
	}

	roots := make([]*Root, 0, len(paths))
	for i, p := range paths {
		store := settings.storeFor(p)
		has, err := store.Has(ctx, model.GetManifestPath())
		if err != nil {
			return nil, errors.Wrapf(err, "checking root %s", store)
		}
		if has {
			// the version gate speaks before the occupancy refusal: a root
			// written by a newer tool calls for an upgrade, not a new set
			if _, err = LoadManifest(ctx, store); errors.Is(err, status.ErrVersionMismatch) {
				return nil, err
			}
			return nil, errors.Wrapf(status.ErrAlreadyInitialized, "root %s", store)
		}
		roots = append(roots, &Root{
			Path:     p,
			Store:    store,
			Manifest: model.NewManifest(baseName, members[i], members),
		})
	}

	for _, r := range roots {
		if err := r.Store.EnsureDir(ctx, model.DataDir); err != nil {
			return nil, err
		}
		if err := saveManifestExclusive(ctx, r.Store, r.Manifest); err != nil {
			return nil, err
		}
		settings.l.Info("initialized root",
			zap.String("root", r.Path),
			zap.String("label", r.Label()),
		)
	}
	return roots, nil
}

func validateBaseName(baseName string) error {
	if baseName == "" {
		return errors.New("base name must not be empty")
	}
	if strings.ContainsAny(baseName, "/\\ \t") {
		return errors.Errorf("base name %q must not contain path separators or whitespace", baseName)
	}
	return nil
}
