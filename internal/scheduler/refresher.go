package scheduler

import (
	"context"
	"time"

	"dealer_backend/platform/logger"

	"github.com/google/uuid"
)

// DealerLister enumerates dealers with open leads.
type DealerLister interface {
	ListDealerIDs(ctx context.Context) ([]uuid.UUID, error)
}

// RefreshEnqueuer queues one dealer's score refresh.
type RefreshEnqueuer interface {
	EnqueueScoreRefresh(ctx context.Context, dealerID uuid.UUID) error
}

// Refresher periodically queues a score refresh for every dealer so the
// freshness component of stored scores keeps decaying without new input.
type Refresher struct {
	dealers  DealerLister
	enqueuer RefreshEnqueuer
	interval time.Duration
	log      *logger.Logger
}

func NewRefresher(dealers DealerLister, enqueuer RefreshEnqueuer, interval time.Duration, log *logger.Logger) *Refresher {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Refresher{dealers: dealers, enqueuer: enqueuer, interval: interval, log: log}
}

// Run enqueues immediately and then once per interval until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.EnqueueAll(ctx); err != nil && ctx.Err() == nil {
			r.log.Error("score refresh enqueue failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// EnqueueAll queues one refresh per dealer and returns how many were queued.
// A failing dealer is logged and skipped.
func (r *Refresher) EnqueueAll(ctx context.Context) (int, error) {
	ids, err := r.dealers.ListDealerIDs(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, id := range ids {
		if err := r.enqueuer.EnqueueScoreRefresh(ctx, id); err != nil {
			r.log.WithDealerID(id.String()).Warn("score refresh not queued", "error", err)
			continue
		}
		queued++
	}
	return queued, nil
}
