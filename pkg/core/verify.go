package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/parkeep/parkeep/pkg/model"
	"github.com/parkeep/parkeep/pkg/par2"
)

// FileState is the terminal verification state of one tracked file on one
// root for a run. The machine is Unchecked → {HashOK | HashMismatch |
// Missing}; HashOK → {ParityOK | ParityRepairable | ParityImpossible |
// ToolError}. No state ever triggers automatic repair.
type FileState int

const (
	// FileUnchecked is the initial state; it never appears in a finished report
	FileUnchecked FileState = iota

	// FileMissing indicates the tracked file is absent from the root
	FileMissing

	// FileHashMismatch indicates the recomputed digest differs from the manifest
	FileHashMismatch

	// FileHashOK indicates the digest matched, parity classification pending
	FileHashOK

	// FileParityOK indicates digest and recovery data both check out
	FileParityOK

	// FileParityRepairable indicates damaged recovery data that the tool can rebuild from
	FileParityRepairable

	// FileParityImpossible indicates recovery data insufficient for repair
	FileParityImpossible

	// FileToolError indicates the parity tool failed or produced unrecognized output
	FileToolError
)

func (s FileState) String() string {
	switch s {
	case FileMissing:
		return "missing"
	case FileHashMismatch:
		return "hash-mismatch"
	case FileHashOK:
		return "hash-ok"
	case FileParityOK:
		return "ok"
	case FileParityRepairable:
		return "repairable"
	case FileParityImpossible:
		return "repair-impossible"
	case FileToolError:
		return "tool-error"
	default:
		return "unchecked"
	}
}

// OK indicates a fully verified file: digest match and intact parity
func (s FileState) OK() bool {
	return s == FileParityOK
}

// FileResult is the verification outcome of one tracked file on one root
type FileResult struct {
	Label  string
	Path   string
	State  FileState
	Detail string
}

// VerifyReport aggregates a verification run over all supplied roots
type VerifyReport struct {
	// Results holds one entry per tracked file per root, ordered by label
	// then path
	Results []FileResult

	// Paths classifies each tracked path across roots, from the same
	// digests the per-root verification computed
	Paths []PathReport

	// MissingMembers lists set members not supplied to this invocation
	MissingMembers []string

	FilesChecked int
	BytesChecked int64
}

// OK indicates every tracked file on every supplied root verified fully
func (r *VerifyReport) OK() bool {
	for _, res := range r.Results {
		if !res.State.OK() {
			return false
		}
	}
	return true
}

// Verify recomputes the digest of every tracked file on every supplied
// root and, for intact files, classifies recoverability with the parity
// tool. Verification never repairs anything: repair is a separate,
// operator-triggered operation.
func Verify(ctx context.Context, roots []*Root, opts ...Option) (*VerifyReport, error) {
	settings := newSettings(opts...)
	if len(roots) == 0 {
		return nil, errors.New("at least one root is required")
	}
	if settings.tool == nil {
		return nil, errors.New("no parity tool configured")
	}

	release, err := lockRoots(ctx, roots, settings.l)
	if err != nil {
		return nil, err
	}
	defer release()

	type rootVerification struct {
		results []FileResult
		obs     map[string]observation
		bytes   int64
	}
	slots := make([]rootVerification, len(roots))
	index := indexRoots(roots)

	err = runPerRoot(ctx, roots, settings.rootConcurrency(len(roots)), func(ctx context.Context, r *Root) error {
		// external-tool invocations run one file at a time within a root
		// to bound contention against the device
		v := rootVerification{obs: map[string]observation{}}
		for _, p := range r.Manifest.Paths() {
			res, o, size := verifyOne(ctx, r, p, settings)
			v.results = append(v.results, res)
			v.obs[p] = o
			v.bytes += size
		}
		slots[index[r]] = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{MissingMembers: missingMembers(roots)}
	obs := make(map[string]map[string]observation, len(roots))
	for i, r := range roots {
		report.Results = append(report.Results, slots[i].results...)
		report.BytesChecked += slots[i].bytes
		obs[r.Label()] = slots[i].obs
	}
	report.FilesChecked = len(report.Results)
	report.Paths = classifyObservations(trackedUnion(roots), obs)
	sort.Slice(report.Results, func(i, j int) bool {
		if report.Results[i].Label != report.Results[j].Label {
			return report.Results[i].Label < report.Results[j].Label
		}
		return report.Results[i].Path < report.Results[j].Path
	})

	settings.l.Info("verification finished",
		zap.Int("files", report.FilesChecked),
		zap.Bool("ok", report.OK()),
	)
	return report, nil
}

func verifyOne(ctx context.Context, r *Root, p string, settings Settings) (FileResult, observation, int64) {
	entry := r.Manifest.Files[p]
	res := FileResult{Label: r.Label(), Path: p, State: FileUnchecked}
	o := observation{tracked: true}

	present, err := r.Store.Has(ctx, p)
	if err != nil {
		res.State = FileToolError
		res.Detail = err.Error()
		return res, o, 0
	}
	if !present {
		res.State = FileMissing
		return res, o, 0
	}
	o.present = true

	digest, size, err := settings.maker.ProcessFile(settings.fs, r.FilePath(p))
	if err != nil {
		res.State = FileToolError
		res.Detail = err.Error()
		return res, o, size
	}
	o.digest = digest
	o.parity, err = r.Store.Has(ctx, model.GetParityPath(p))
	if err != nil {
		res.State = FileToolError
		res.Detail = err.Error()
		return res, o, size
	}

	if digest != entry.Digest {
		res.State = FileHashMismatch
		res.Detail = fmt.Sprintf("expected %s, got %s", entry.Digest, digest)
		return res, o, size
	}
	o.matches = true
	res.State = FileHashOK

	rep := settings.tool.Verify(ctx, r.FilePath(p))
	res.Detail = rep.Detail
	switch rep.Outcome {
	case par2.OutcomeOK:
		res.State = FileParityOK
	case par2.OutcomeRepairPossible:
		res.State = FileParityRepairable
	case par2.OutcomeRepairImpossible:
		res.State = FileParityImpossible
	default:
		res.State = FileToolError
	}
	return res, o, size
}
