package scheduler

import (
	"context"
	"errors"
	"time"

	"dealer_backend/internal/metrics"
	"dealer_backend/platform/cache"
	"dealer_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// defaultUniqueFor applies when no refresh interval is configured.
const defaultUniqueFor = time.Hour

type Client struct {
	client    *asynq.Client
	queue     string
	uniqueFor time.Duration
}

// NewClient creates the job client. A dealer holds at most one pending refresh
// per refresh interval.
func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	uniqueFor := cfg.GetScoreRefreshInterval()
	if uniqueFor <= 0 {
		uniqueFor = defaultUniqueFor
	}

	return &Client{
		client:    asynq.NewClient(opt),
		queue:     queue,
		uniqueFor: uniqueFor,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueScoreRefresh queues a dealer-wide score refresh. A refresh already
// pending for the dealer absorbs the request.
func (c *Client) EnqueueScoreRefresh(ctx context.Context, dealerID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewLeadScoreRefreshTask(LeadScoreRefreshPayload{DealerID: dealerID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.Unique(c.uniqueFor),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return err
	}

	metrics.JobsEnqueued.WithLabelValues(TaskLeadScoreRefresh).Inc()
	return nil
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := cache.ParseOptions(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:         opt.Addr,
		Username:     opt.Username,
		Password:     opt.Password,
		DB:           opt.DB,
		DialTimeout:  opt.DialTimeout,
		ReadTimeout:  opt.ReadTimeout,
		WriteTimeout: opt.WriteTimeout,
		TLSConfig:    opt.TLSConfig,
	}, nil
}
