package core

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/parkeep/parkeep/pkg/model"
	"github.com/parkeep/parkeep/pkg/status"
	"github.com/parkeep/parkeep/pkg/storage"
)

// LoadManifest reads, parses and version-gates the manifest of one root.
//
// The schema gate runs here, before any caller can act on manifest
// contents: a manifest written by a newer tool is never interpreted with
// this tool's semantics.
func LoadManifest(ctx context.Context, store storage.Store) (*model.Manifest, error) {
	rdr, err := store.Get(ctx, model.GetManifestPath())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errors.Wrapf(status.ErrNotFound, "root %s: run init first", store)
		}
		return nil, errors.Wrapf(err, "reading manifest on %s", store)
	}
	data, err := io.ReadAll(rdr)
	_ = rdr.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest on %s", store)
	}

	m, err := model.UnmarshalManifest(data)
	if err != nil {
		return nil, errors.Wrapf(err, "root %s", store)
	}
	if m.Version.Newer(model.CurrentVersion) {
		return nil, errors.Wrapf(status.ErrVersionMismatch,
			"root %s records schema %s but this tool writes %s: update the tool",
			store, m.Version, model.CurrentVersion)
	}
	return m, nil
}

// SaveManifest persists a manifest, stamping the tool's current schema
// version. The store's Put is atomic, so a crash mid-save leaves either
// the previous or the new document, never a torn one. The load gate
// guarantees the stamped version never downgrades what the root recorded.
func SaveManifest(ctx context.Context, store storage.Store, m *model.Manifest) error {
	m.Version = model.CurrentVersion
	data, err := model.MarshalManifest(m)
	if err != nil {
		return errors.Wrapf(err, "root %s", store)
	}
	if err = store.Put(ctx, model.GetManifestPath(), bytes.NewReader(data), storage.OverWrite); err != nil {
		return errors.Wrapf(err, "saving manifest on %s", store)
	}
	return nil
}

func saveManifestExclusive(ctx context.Context, store storage.Store, m *model.Manifest) error {
	data, err := model.MarshalManifest(m)
	if err != nil {
		return errors.Wrapf(err, "root %s", store)
	}
	err = store.Put(ctx, model.GetManifestPath(), bytes.NewReader(data), storage.IfNotPresent)
	if err != nil {
		if errors.Is(err, storage.ErrExists) {
			return errors.Wrapf(status.ErrAlreadyInitialized, "root %s", store)
		}
		return errors.Wrapf(err, "creating manifest on %s", store)
	}
	return nil
}
