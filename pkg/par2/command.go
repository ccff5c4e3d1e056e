package par2

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/parkeep/parkeep/pkg/status"
)

// Option alters the defaults of a CommandTool
type Option func(*CommandTool)

// WithSignatures replaces the output classification table, e.g. to match a
// different pinned tool release
func WithSignatures(s Signatures) Option {
	return func(t *CommandTool) {
		t.sig = s
	}
}

// WithLogger sets a zap logger on the tool
func WithLogger(l *zap.Logger) Option {
	return func(t *CommandTool) {
		if l != nil {
			t.l = l
		}
	}
}

// NewCommandTool wraps the par2 executable at the given path
func NewCommandTool(exe string, opts ...Option) *CommandTool {
	t := &CommandTool{
		exe: exe,
		sig: DefaultSignatures(),
		l:   zap.NewNop(),
	}
	for _, apply := range opts {
		apply(t)
	}
	return t
}

// CommandTool invokes the par2 executable as a subprocess, one file at a
// time, in the directory of the protected file
type CommandTool struct {
	exe string
	sig Signatures
	l   *zap.Logger
}

// Locate resolves the par2 executable: an explicitly configured path wins,
// then PATH, then a bin directory next to the running executable (the
// original distribution ships a bundled binary there on Windows).
func Locate(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", errors.Wrapf(err, "configured par2 executable %q", configured)
		}
		return configured, nil
	}
	if p, err := exec.LookPath("par2"); err == nil {
		return p, nil
	}
	self, err := os.Executable()
	if err == nil {
		name := "par2"
		if runtime.GOOS == "windows" {
			name = "par2.exe"
		}
		bundled := filepath.Join(filepath.Dir(self), "bin", name)
		if _, err = os.Stat(bundled); err == nil {
			return bundled, nil
		}
	}
	return "", errors.New("could not locate the par2 executable: install par2 or set its path in the configuration")
}

func (t *CommandTool) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, t.exe, args...)
	cmd.Dir = dir
	t.l.Debug("running parity tool",
		zap.String("exe", t.exe),
		zap.Strings("args", args),
		zap.String("dir", dir),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Create generates recovery data for the file and returns the basenames of
// the parity artifacts, sorted. Pre-existing artifacts for the same file
// are overwritten by the tool, which keeps re-running an interrupted add
// idempotent.
func (t *CommandTool) Create(ctx context.Context, file string, parityPercent int) ([]string, error) {
	dir, name := filepath.Dir(file), filepath.Base(file)
	out, err := t.run(ctx, dir, "create", fmt.Sprintf("-r%d", parityPercent), "--", name)
	if err != nil {
		return nil, errors.Wrapf(status.ErrToolError, "create for %q: %v\n%s", file, err, out)
	}
	artifacts, err := ListArtifacts(file)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, errors.Wrapf(status.ErrToolError, "create for %q produced no artifacts\n%s", file, out)
	}
	return artifacts, nil
}

// Verify runs the tool's check mode against the file's parity index and
// classifies the output. A zero exit paired with anything but a positive
// OK signature stays a tool error.
func (t *CommandTool) Verify(ctx context.Context, file string) Report {
	dir, name := filepath.Dir(file), filepath.Base(file)
	out, err := t.run(ctx, dir, "verify", "--", name+".par2")
	report := t.sig.Classify(out)
	if err != nil && report.Outcome == OutcomeOK {
		// exit status contradicts the output, trust neither
		report.Outcome = OutcomeToolError
		report.Detail = fmt.Sprintf("tool exited with error despite OK output: %v", err)
	}
	return report
}

// Repair attempts reconstruction from the recovery data. Only ever called
// on explicit operator request.
func (t *CommandTool) Repair(ctx context.Context, file string) Report {
	dir, name := filepath.Dir(file), filepath.Base(file)
	out, err := t.run(ctx, dir, "repair", "--", name+".par2")
	report := t.sig.ClassifyRepair(out)
	if err != nil && report.Outcome == OutcomeOK {
		report.Outcome = OutcomeToolError
		report.Detail = fmt.Sprintf("tool exited with error despite OK output: %v", err)
	}
	return report
}

// ListArtifacts returns the basenames of the parity artifacts present for
// a file, sorted: the index file name.par2 plus the name.volNNN+NN.par2
// recovery volumes.
func ListArtifacts(file string) ([]string, error) {
	dir, name := filepath.Dir(file), filepath.Base(file)
	index, err := filepath.Glob(filepath.Join(dir, name+".par2"))
	if err != nil {
		return nil, errors.Wrapf(err, "globbing artifacts for %q", file)
	}
	volumes, err := filepath.Glob(filepath.Join(dir, name+".vol*+*.par2"))
	if err != nil {
		return nil, errors.Wrapf(err, "globbing volumes for %q", file)
	}
	artifacts := make([]string, 0, len(index)+len(volumes))
	for _, a := range append(index, volumes...) {
		artifacts = append(artifacts, filepath.Base(a))
	}
	sort.Strings(artifacts)
	return artifacts, nil
}

var _ Tool = &CommandTool{}
