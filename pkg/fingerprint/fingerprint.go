// Package fingerprint computes content digests for tracked files.
//
// The digest is a plain streaming SHA-256, so every stored digest can be
// spot-checked against the operating system's sha256sum utility.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	units "github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option alters the defaults of a Maker
type Option func(*Maker)

// ChunkSize sets the read chunk size. It defaults to 4MiB; the exact size
// does not affect the digest.
func ChunkSize(sz int64) Option {
	return func(m *Maker) {
		if sz > 0 {
			m.chunkSize = sz
		}
	}
}

// Logger sets a zap logger on the maker
func Logger(l *zap.Logger) Option {
	return func(m *Maker) {
		if l != nil {
			m.l = l
		}
	}
}

// New creates a digest maker
func New(opts ...Option) *Maker {
	m := &Maker{
		chunkSize: 4 * units.MiB,
		l:         zap.NewNop(),
	}
	for _, apply := range opts {
		apply(m)
	}
	return m
}

// Maker computes file digests in bounded-size chunks
type Maker struct {
	chunkSize int64
	l         *zap.Logger
}

// Process consumes the reader and returns the hex digest and byte count
func (m *Maker) Process(r io.Reader) (string, int64, error) {
	hasher := sha256.New()
	buf := make([]byte, m.chunkSize)
	var size int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			size += int64(n)
			// sha256 writes never fail
			_, _ = hasher.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", size, errors.Wrap(err, "reading content")
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}

// ProcessFile computes the digest of a file on the given filesystem
func (m *Maker) ProcessFile(fs afero.Fs, path string) (string, int64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", 0, errors.Wrapf(err, "opening %q", path)
	}
	defer func() {
		_ = f.Close()
	}()

	m.l.Debug("hashing file", zap.String("path", path))
	digest, size, err := m.Process(f)
	if err != nil {
		return "", size, errors.Wrapf(err, "hashing %q", path)
	}
	m.l.Debug("hashed file",
		zap.String("path", path),
		zap.String("digest", digest),
		zap.String("size", units.HumanSize(float64(size))),
	)
	return digest, size, nil
}
