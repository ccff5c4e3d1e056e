// Package storage presents a replica root as a flat key/value store of
// root-relative, slash-separated keys.
package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by Get on a missing key
	ErrNotFound = errors.New("storage: not found")

	// ErrExists is returned by an exclusive Put on an existing key
	ErrExists = errors.New("storage: already exists")
)

const (
	// IfNotPresent requests an exclusive Put, failing on an existing key
	IfNotPresent = true

	// OverWrite requests an atomic replacing Put
	OverWrite = false
)

// Store abstracts the filesystem of one root.
//
// Put is atomic: a replacing write goes through a temporary file renamed
// into place, so a crash mid-write never leaves a half-written object.
type Store interface {
	String() string
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, source io.Reader, exclusive bool) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	EnsureDir(ctx context.Context, key string) error
}

// PipeIO copies the reader to the writer with a bounded buffer
func PipeIO(writer io.Writer, reader io.Reader) (n int64, err error) {
	buf := make([]byte, 32*1024)
	return io.CopyBuffer(writer, reader, buf)
}
