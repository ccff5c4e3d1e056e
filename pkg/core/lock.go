package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/parkeep/parkeep/pkg/model"
	"github.com/parkeep/parkeep/pkg/status"
	"github.com/parkeep/parkeep/pkg/storage"
)

// acquireLock takes the root-local advisory lock. A held lock fails
// immediately with Busy: no retry, no queuing, so a concurrent invocation
// is never left waiting on an unexplained hang.
func acquireLock(ctx context.Context, store storage.Store) error {
	marker := fmt.Sprintf("pid %d at %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	err := store.Put(ctx, model.GetLockPath(), strings.NewReader(marker), storage.IfNotPresent)
	if err != nil {
		if errors.Is(err, storage.ErrExists) {
			return errors.Wrapf(status.ErrBusy, "root %s", store)
		}
		return errors.Wrapf(err, "locking root %s", store)
	}
	return nil
}

func releaseLock(ctx context.Context, store storage.Store, l *zap.Logger) {
	if err := store.Delete(ctx, model.GetLockPath()); err != nil {
		l.Warn("failed to release root lock, remove the marker manually",
			zap.String("root", store.String()),
			zap.String("marker", model.GetLockPath()),
			zap.Error(err),
		)
	}
}

// lockRoots locks every root in label order, releasing any locks already
// taken if one root is busy
func lockRoots(ctx context.Context, roots []*Root, l *zap.Logger) (release func(), err error) {
	locked := make([]*Root, 0, len(roots))
	release = func() {
		for _, r := range locked {
			releaseLock(ctx, r.Store, l)
		}
	}
	for _, r := range roots {
		if err = acquireLock(ctx, r.Store); err != nil {
			release()
			return nil, err
		}
		locked = append(locked, r)
	}
	return release, nil
}
