// Package localfs implements storage.Store on a local filesystem root.
package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/parkeep/parkeep/pkg/storage"
)

// New creates a store backed by the given filesystem. The description is
// reported by String() and should identify the root to the operator.
func New(fs afero.Fs, description string) storage.Store {
	return &localFS{fs: fs, description: description}
}

type localFS struct {
	fs          afero.Fs
	description string
}

func (l *localFS) String() string {
	return l.description
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	fi, err := l.fs.Stat(fromKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %q on %s", key, l)
	}
	return !fi.IsDir(), nil
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := l.fs.Open(fromKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(storage.ErrNotFound, "%q on %s", key, l)
		}
		return nil, errors.Wrapf(err, "open %q on %s", key, l)
	}
	return f, nil
}

func (l *localFS) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	target := fromKey(key)
	if dir := filepath.Dir(target); dir != "." {
		if err := l.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "ensuring directories for %q on %s", key, l)
		}
	}
	if exclusive {
		// a single O_EXCL create keeps exclusive puts usable as lock markers
		f, err := l.fs.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			if os.IsExist(err) {
				return errors.Wrapf(storage.ErrExists, "%q on %s", key, l)
			}
			return errors.Wrapf(err, "create %q on %s", key, l)
		}
		if _, err = storage.PipeIO(f, source); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "write %q on %s", key, l)
		}
		return errors.Wrapf(f.Close(), "close %q on %s", key, l)
	}

	tmp, err := afero.TempFile(l.fs, filepath.Dir(target), "."+filepath.Base(target)+".tmp-")
	if err != nil {
		return errors.Wrapf(err, "temp file for %q on %s", key, l)
	}
	tmpName := tmp.Name()
	if _, err = storage.PipeIO(tmp, source); err != nil {
		_ = tmp.Close()
		_ = l.fs.Remove(tmpName)
		return errors.Wrapf(err, "write %q on %s", key, l)
	}
	if err = tmp.Close(); err != nil {
		_ = l.fs.Remove(tmpName)
		return errors.Wrapf(err, "close %q on %s", key, l)
	}
	if err = l.fs.Rename(tmpName, target); err != nil {
		_ = l.fs.Remove(tmpName)
		return errors.Wrapf(err, "replace %q on %s", key, l)
	}
	return nil
}

func (l *localFS) Delete(ctx context.Context, key string) error {
	if err := l.fs.Remove(fromKey(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %q on %s", key, l)
	}
	return nil
}

func (l *localFS) Keys(ctx context.Context) ([]string, error) {
	const root = "."
	var keys []string
	err := afero.Walk(l.fs, root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if pth == root || info.IsDir() {
			return nil
		}
		keys = append(keys, toKey(pth))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", l)
	}
	return keys, nil
}

func (l *localFS) EnsureDir(ctx context.Context, key string) error {
	return errors.Wrapf(l.fs.MkdirAll(fromKey(key), 0755), "ensuring %q on %s", key, l)
}

func fromKey(key string) string {
	return filepath.FromSlash(key)
}

func toKey(pth string) string {
	return filepath.ToSlash(pth)
}
