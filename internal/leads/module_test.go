package leads

import (
	"context"
	"sync"
	"testing"
	"time"

	"dealer_backend/internal/events"
	"dealer_backend/internal/leads/domain"
	"dealer_backend/internal/leads/repository"
	"dealer_backend/internal/leads/scorecache"
	"dealer_backend/internal/leads/scoring"
	"dealer_backend/platform/apperr"
	"dealer_backend/platform/logger"
	"dealer_backend/platform/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moduleNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

// refreshRepo implements what RefreshScore reaches.
type refreshRepo struct {
	repository.Repository
	mu         sync.Mutex
	lead       repository.Lead
	activities []repository.Activity
	saved      []repository.ScoreSnapshot
}

func (r *refreshRepo) GetByID(_ context.Context, id, dealerID uuid.UUID) (repository.Lead, error) {
	if id != r.lead.ID || dealerID != r.lead.DealerID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return r.lead, nil
}

func (r *refreshRepo) ListActivities(context.Context, uuid.UUID, uuid.UUID) ([]repository.Activity, error) {
	return r.activities, nil
}

func (r *refreshRepo) SaveScore(_ context.Context, _, _ uuid.UUID, snapshot repository.ScoreSnapshot) (*int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, snapshot)
	return nil, nil
}

func newTestModule(t *testing.T, cache scorecache.Cache) (*Module, *refreshRepo, events.Bus) {
	t.Helper()
	lead := repository.Lead{
		ID: uuid.New(), DealerID: uuid.New(), Source: domain.SourceWebsite,
		Status: domain.StatusNew, CreatedAt: moduleNow.Add(-30 * time.Minute),
	}
	repo := &refreshRepo{lead: lead}

	bus := events.NewInMemoryBus(logger.Discard())
	m, err := newModule(repo, bus, cache, scoring.NewCalculator(func() time.Time { return moduleNow }), validator.New(), logger.Discard())
	require.NoError(t, err)
	m.RegisterHandlers(bus)
	return m, repo, bus
}

func TestActivityLoggedRefreshesStoredScore(t *testing.T) {
	_, repo, bus := newTestModule(t, nil)
	repo.activities = []repository.Activity{{ID: uuid.New(), LeadID: repo.lead.ID, CreatedAt: moduleNow.Add(-10 * time.Minute)}}

	err := bus.PublishSync(context.Background(), events.LeadActivityLogged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    repo.lead.ID,
		DealerID:  repo.lead.DealerID,
	})
	require.NoError(t, err)

	require.Len(t, repo.saved, 1)
	// website 20, one activity 5, answered within the hour 20, no vehicle 5, fresh 15
	assert.Equal(t, 65, repo.saved[0].Total)
}

func TestStatusChangedRefreshesStoredScore(t *testing.T) {
	_, repo, bus := newTestModule(t, nil)

	err := bus.PublishSync(context.Background(), events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    repo.lead.ID,
		DealerID:  repo.lead.DealerID,
		OldStatus: "new",
		NewStatus: "contacted",
	})
	require.NoError(t, err)
	assert.Len(t, repo.saved, 1)
}

func TestRefreshOverwritesStaleCachedScore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := scorecache.NewRedis(client, time.Minute)

	_, repo, bus := newTestModule(t, cache)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, repo.lead.ID, scoring.Breakdown{Total: 1}))
	repo.activities = []repository.Activity{{ID: uuid.New(), LeadID: repo.lead.ID, CreatedAt: moduleNow.Add(-10 * time.Minute)}}

	require.NoError(t, bus.PublishSync(ctx, events.LeadActivityLogged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    repo.lead.ID,
		DealerID:  repo.lead.DealerID,
	}))

	cached, ok, err := cache.Get(ctx, repo.lead.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 65, cached.Total)
}

func TestRefreshFailureIsReturned(t *testing.T) {
	_, _, bus := newTestModule(t, nil)

	err := bus.PublishSync(context.Background(), events.LeadActivityLogged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		DealerID:  uuid.New(),
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
