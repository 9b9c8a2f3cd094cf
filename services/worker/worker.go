package worker

import (
	"context"
	"time"

	"litoralnorte/imovelworker/internal/pipeline"
	"litoralnorte/imovelworker/logger"
)

// Worker triggers a full pipeline run at a fixed interval. Each tick is
// a fresh stateless invocation; a slow run simply delays the next tick
// observation, it is never run concurrently with itself.
type Worker struct {
	runner   pipeline.Runner
	interval time.Duration
	log      *logger.Logger
}

func New(runner pipeline.Runner, interval time.Duration) *Worker {
	return &Worker{
		runner:   runner,
		interval: interval,
		log:      logger.ForWorker(),
	}
}

// Start runs the schedule loop until ctx is cancelled. The first run
// fires immediately, then every interval.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Scheduler started")

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Scheduler stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.runner.Run(ctx, pipeline.Request{}); err != nil {
		w.log.Error().Err(err).Msg("Scheduled run failed")
	}
}
