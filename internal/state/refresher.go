package state

import (
	"context"
	"time"

	"github.com/vilafalo/tableside/internal/adapter/logger"
)

// Refresher periodically re-runs a view's bulk load as a correctness
// backstop for missed push events. The reload funnels through the same
// Load/Apply rules, so a stale local duplicate can never survive it.
type Refresher struct {
	interval time.Duration
	reload   func(ctx context.Context) error
	log      logger.Logger
}

func NewRefresher(interval time.Duration, reload func(ctx context.Context) error, log logger.Logger) *Refresher {
	if log == nil {
		log = logger.Nop()
	}
	return &Refresher{
		interval: interval,
		reload:   reload,
		log:      log,
	}
}

// Run blocks until ctx is canceled. Reload failures are logged and the
// ticker keeps going; the next tick is the retry.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.reload(ctx); err != nil {
				r.log.Error("refresh_failed", "Periodic reload failed", "", nil, err)
			} else {
				r.log.Debug("refresh_done", "Periodic reload completed", "", nil)
			}
		}
	}
}
