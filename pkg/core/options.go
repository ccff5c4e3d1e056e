package core

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/parkeep/parkeep/pkg/fingerprint"
	"github.com/parkeep/parkeep/pkg/par2"
	"github.com/parkeep/parkeep/pkg/storage"
	"github.com/parkeep/parkeep/pkg/storage/localfs"
)

// Option sets engine settings for one operation
type Option func(*Settings)

// Settings defines the explicit configuration threaded through every
// operation: there is no ambient process-wide state in the engine.
type Settings struct {
	l           *zap.Logger
	fs          afero.Fs
	tool        par2.Tool
	maker       *fingerprint.Maker
	concurrency int
	force       bool
	reuseParity bool
}

// Logger sets a zap logger on the operation
func Logger(l *zap.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.l = l
		}
	}
}

// Filesystem sets the filesystem the roots live on. It defaults to the OS
// filesystem; tests substitute an in-memory one.
func Filesystem(fs afero.Fs) Option {
	return func(s *Settings) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithTool sets the parity tool implementation. Operations generating or
// checking recovery data fail without one.
func WithTool(t par2.Tool) Option {
	return func(s *Settings) {
		s.tool = t
	}
}

// WithFingerprint sets the digest maker
func WithFingerprint(m *fingerprint.Maker) Option {
	return func(s *Settings) {
		if m != nil {
			s.maker = m
		}
	}
}

// ConcurrentRoots caps the number of roots processed in parallel. It
// defaults to one worker per root: roots are independent physical devices.
func ConcurrentRoots(n int) Option {
	return func(s *Settings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// Force overrides the refusal to mutate a backup set while some of its
// members are absent from the invocation
func Force() Option {
	return func(s *Settings) {
		s.force = true
	}
}

// ReuseParity accepts pre-existing parity artifacts during add instead of
// failing on them
func ReuseParity() Option {
	return func(s *Settings) {
		s.reuseParity = true
	}
}

func newSettings(opts ...Option) Settings {
	s := Settings{
		fs: afero.NewOsFs(),
		l:  zap.NewNop(),
	}
	for _, apply := range opts {
		apply(&s)
	}
	if s.maker == nil {
		s.maker = fingerprint.New(fingerprint.Logger(s.l))
	}
	return s
}

func (s *Settings) storeFor(path string) storage.Store {
	return localfs.New(afero.NewBasePathFs(s.fs, path), path)
}

func (s *Settings) rootConcurrency(roots int) int {
	if s.concurrency > 0 && s.concurrency < roots {
		return s.concurrency
	}
	return roots
}
