// Package scorecache keeps recently computed lead scores in Redis.
package scorecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dealer_backend/internal/leads/scoring"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lead:score:"

// DefaultTTL bounds how stale a cached freshness component can get.
const DefaultTTL = 15 * time.Minute

// Cache stores score breakdowns per lead.
type Cache interface {
	// Get returns ok=false on a miss; err is reserved for transport failures.
	Get(ctx context.Context, leadID uuid.UUID) (scoring.Breakdown, bool, error)
	Set(ctx context.Context, leadID uuid.UUID, breakdown scoring.Breakdown) error
	Invalidate(ctx context.Context, leadIDs ...uuid.UUID) error
}

// Redis is a Cache backed by go-redis.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedis creates a cache with the given TTL; a non-positive TTL uses DefaultTTL.
func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

var _ Cache = (*Redis)(nil)

// Key returns the Redis key for a lead.
func Key(leadID uuid.UUID) string {
	return keyPrefix + leadID.String()
}

func (r *Redis) Get(ctx context.Context, leadID uuid.UUID) (scoring.Breakdown, bool, error) {
	raw, err := r.client.Get(ctx, Key(leadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return scoring.Breakdown{}, false, nil
	}
	if err != nil {
		return scoring.Breakdown{}, false, fmt.Errorf("get cached score: %w", err)
	}

	var breakdown scoring.Breakdown
	if err := json.Unmarshal(raw, &breakdown); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return scoring.Breakdown{}, false, nil
	}
	return breakdown, true, nil
}

func (r *Redis) Set(ctx context.Context, leadID uuid.UUID, breakdown scoring.Breakdown) error {
	data, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	if err := r.client.Set(ctx, Key(leadID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set cached score: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, leadIDs ...uuid.UUID) error {
	if len(leadIDs) == 0 {
		return nil
	}
	keys := make([]string, len(leadIDs))
	for i, id := range leadIDs {
		keys[i] = Key(id)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cached scores: %w", err)
	}
	return nil
}

// Noop is used when no Redis is configured: every lookup misses.
type Noop struct{}

var _ Cache = Noop{}

func (Noop) Get(context.Context, uuid.UUID) (scoring.Breakdown, bool, error) {
	return scoring.Breakdown{}, false, nil
}
func (Noop) Set(context.Context, uuid.UUID, scoring.Breakdown) error { return nil }
func (Noop) Invalidate(context.Context, ...uuid.UUID) error           { return nil }
