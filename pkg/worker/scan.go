package worker

import (
	"context"
	"time"

	"github.com/kanademusic/kanade/pkg/models"
	"github.com/robinjoseph08/golib/logger"
)

// pendingMoveThreshold is how old a pending_move row has to be before the
// reconcile sweep considers it abandoned rather than in flight.
const pendingMoveThreshold = time.Hour

// ProcessScanJob walks the import folder and reconciles it against the
// catalog.
func (w *Worker) ProcessScanJob(ctx context.Context, _ *models.Job) error {
	log := logger.FromContext(ctx)

	pending, imported, err := w.importService.Scan(ctx)
	if err != nil {
		return err
	}

	log.Info("scan finished", logger.Data{"imported": imported, "unmatched": len(pending)})
	return nil
}

// ProcessReconcileJob cleans up imports whose physical move never finished.
func (w *Worker) ProcessReconcileJob(ctx context.Context, _ *models.Job) error {
	log := logger.FromContext(ctx)

	reconciled, err := w.importService.ReconcilePending(ctx, pendingMoveThreshold)
	if err != nil {
		return err
	}

	if reconciled > 0 {
		log.Info("reconciled stale pending imports", logger.Data{"count": reconciled})
	}
	return nil
}
