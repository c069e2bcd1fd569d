package scheduler

import (
	"context"
	"fmt"
	"time"

	"dealer_backend/internal/leads/service"
	"dealer_backend/internal/metrics"
	"dealer_backend/platform/config"
	"dealer_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// DealerRecalculator recomputes every stored score of one dealer.
type DealerRecalculator interface {
	RecalculateDealer(ctx context.Context, dealerID uuid.UUID) (service.RecalculationResult, error)
}

type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	recalculator DealerRecalculator
	log          *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, recalculator DealerRecalculator, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:       server,
		mux:          mux,
		recalculator: recalculator,
		log:          log,
	}

	mux.HandleFunc(TaskLeadScoreRefresh, w.handleLeadScoreRefresh)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadScoreRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadScoreRefreshPayload(task)
	if err != nil {
		metrics.JobsProcessed.WithLabelValues(TaskLeadScoreRefresh, "invalid").Inc()
		return fmt.Errorf("parse score refresh payload: %v: %w", err, asynq.SkipRetry)
	}

	dealerID, err := uuid.Parse(payload.DealerID)
	if err != nil {
		metrics.JobsProcessed.WithLabelValues(TaskLeadScoreRefresh, "invalid").Inc()
		return fmt.Errorf("invalid dealer id %q: %w", payload.DealerID, asynq.SkipRetry)
	}

	start := time.Now()
	result, err := w.recalculator.RecalculateDealer(ctx, dealerID)
	if err != nil {
		metrics.JobsProcessed.WithLabelValues(TaskLeadScoreRefresh, "failed").Inc()
		w.log.WithDealerID(payload.DealerID).Error("lead score refresh failed", "error", err)
		return err
	}

	metrics.JobsProcessed.WithLabelValues(TaskLeadScoreRefresh, "succeeded").Inc()
	w.log.WithDealerID(payload.DealerID).Debug("lead score refresh done",
		"leads", result.Leads,
		"hot", result.Hot,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
