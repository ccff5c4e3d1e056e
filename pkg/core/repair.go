package core

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/parkeep/parkeep/pkg/par2"
	"github.com/parkeep/parkeep/pkg/status"
)

// Repair runs the parity tool's repair mode for one tracked file on every
// supplied root. It exists only as an explicit operator action; nothing in
// this engine calls it automatically.
//
// The manifests are not touched: a successful repair restores the file to
// the recorded digest, and the next Verify confirms it.
func Repair(ctx context.Context, roots []*Root, relPath string, opts ...Option) ([]FileResult, error) {
	settings := newSettings(opts...)
	if len(roots) == 0 {
		return nil, errors.New("at least one root is required")
	}
	if settings.tool == nil {
		return nil, errors.New("no parity tool configured")
	}
	relPath, err := cleanTrackedPath(relPath)
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		if _, ok := r.Manifest.Files[relPath]; !ok {
			return nil, errors.Errorf("%s is not tracked on root %s", relPath, r.Store)
		}
	}

	release, err := lockRoots(ctx, roots, settings.l)
	if err != nil {
		return nil, err
	}
	defer release()

	results := make([]FileResult, len(roots))
	index := indexRoots(roots)
	err = runPerRoot(ctx, roots, settings.rootConcurrency(len(roots)), func(ctx context.Context, r *Root) error {
		settings.l.Info("repairing file",
			zap.String("root", r.Path),
			zap.String("path", relPath),
		)
		rep := settings.tool.Repair(ctx, r.FilePath(relPath))
		res := FileResult{Label: r.Label(), Path: relPath, Detail: rep.Detail}
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
		results[index[r]] = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	// when no supplied root has enough recovery data the file is lost;
	// the per-root results still describe what each root reported
	impossible := 0
	for _, res := range results {
		if res.State == FileParityImpossible {
			impossible++
		}
	}
	if impossible == len(results) {
		return results, errors.Wrapf(status.ErrRepairImpossible,
			"%s on every supplied root", relPath)
	}
	return results, nil
}
