package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dealer_backend/internal/events"
	"dealer_backend/internal/leads/domain"
	"dealer_backend/internal/leads/repository"
	"dealer_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu         sync.Mutex
	now        func() time.Time
	leads      map[uuid.UUID]repository.Lead
	vehicles   map[uuid.UUID]repository.Vehicle
	activities map[uuid.UUID][]repository.Activity
	saved      map[uuid.UUID]repository.ScoreSnapshot
	saveErr    error
	listErr    error
}

func newFakeRepo(now func() time.Time) *fakeRepo {
	return &fakeRepo{
		now:        now,
		leads:      make(map[uuid.UUID]repository.Lead),
		vehicles:   make(map[uuid.UUID]repository.Vehicle),
		activities: make(map[uuid.UUID][]repository.Activity),
		saved:      make(map[uuid.UUID]repository.ScoreSnapshot),
	}
}

var _ repository.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) seedLead(lead repository.Lead) repository.Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.Status == "" {
		lead.Status = domain.StatusNew
	}
	f.leads[lead.ID] = lead
	return lead
}

func (f *fakeRepo) seedActivities(leadID uuid.UUID, at ...time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead := f.leads[leadID]
	for _, ts := range at {
		f.activities[leadID] = append(f.activities[leadID], repository.Activity{
			ID: uuid.New(), LeadID: leadID, DealerID: lead.DealerID, Type: domain.ActivityCall, CreatedAt: ts,
		})
	}
}

func (f *fakeRepo) GetByID(_ context.Context, id, dealerID uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.DealerID != dealerID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Lead
	for _, lead := range f.leads {
		if lead.DealerID != params.DealerID {
			continue
		}
		if params.Source != nil && lead.Source != *params.Source {
			continue
		}
		if params.Status != nil && lead.Status != *params.Status {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(lead.FirstName+" "+lead.LastName), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, lead)
	}
	// Score sorting follows the SQL: stored score desc, unscored last.
	sort.Slice(out, func(i, j int) bool {
		if params.SortBy == "" || params.SortBy == "score" {
			a, b := storedScore(out[i]), storedScore(out[j])
			if a != b {
				return a > b
			}
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := len(out)
	if params.Offset >= len(out) {
		return []repository.Lead{}, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[params.Offset:end], total, nil
}

func (f *fakeRepo) VehicleExists(_ context.Context, id, dealerID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	return ok && v.ID == id && dealerID != uuid.Nil, nil
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	lead := repository.Lead{
		ID: uuid.New(), DealerID: params.DealerID, VehicleID: params.VehicleID,
		FirstName: params.FirstName, LastName: params.LastName, Email: params.Email, Phone: params.Phone,
		Message: params.Message, Notes: params.Notes, Source: params.Source, Status: domain.StatusNew,
		CreatedAt: now, UpdatedAt: now,
	}
	if params.VehicleID != nil {
		v := f.vehicles[*params.VehicleID]
		lead.Vehicle = &v
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) Update(_ context.Context, params repository.UpdateParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[params.ID]
	if !ok || lead.DealerID != params.DealerID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if params.FirstName != nil {
		lead.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		lead.LastName = *params.LastName
	}
	if params.Email != nil {
		lead.Email = clearable(params.Email)
	}
	if params.Phone != nil {
		lead.Phone = clearable(params.Phone)
	}
	if params.Notes != nil {
		lead.Notes = clearable(params.Notes)
	}
	if params.Status != nil {
		lead.Status = *params.Status
	}
	if params.NextFollowup != nil {
		lead.NextFollowup = params.NextFollowup
	}
	lead.UpdatedAt = f.now()
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) ListActivities(_ context.Context, leadID, dealerID uuid.UUID) ([]repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Activity, 0)
	for _, a := range f.activities[leadID] {
		if a.DealerID == dealerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListActivitiesForLeads(_ context.Context, leadIDs []uuid.UUID, dealerID uuid.UUID) (map[uuid.UUID][]repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID][]repository.Activity)
	for _, id := range leadIDs {
		for _, a := range f.activities[id] {
			if a.DealerID == dealerID {
				out[id] = append(out[id], a)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateActivity(_ context.Context, params repository.CreateActivityParams) (repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[params.LeadID]
	if !ok || lead.DealerID != params.DealerID {
		return repository.Activity{}, apperr.NotFound("lead not found")
	}
	a := repository.Activity{
		ID: uuid.New(), LeadID: params.LeadID, DealerID: params.DealerID, Type: params.Type,
		Body: params.Body, CreatedBy: params.CreatedBy, CreatedAt: f.now(),
	}
	f.activities[params.LeadID] = append(f.activities[params.LeadID], a)
	return a, nil
}

func (f *fakeRepo) SaveScore(_ context.Context, leadID, dealerID uuid.UUID, snapshot repository.ScoreSnapshot) (*int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	lead, ok := f.leads[leadID]
	if !ok || lead.DealerID != dealerID {
		return nil, apperr.NotFound("lead not found")
	}
	previous := lead.Score
	total := snapshot.Total
	lead.Score = &total
	lead.ScoreBreakdown = snapshot.Breakdown
	at := snapshot.ComputedAt
	lead.ScoreUpdatedAt = &at
	f.leads[leadID] = lead
	f.saved[leadID] = snapshot
	return previous, nil
}

func (f *fakeRepo) ListOpenLeadIDs(_ context.Context, dealerID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []uuid.UUID
	for id, lead := range f.leads {
		if lead.DealerID == dealerID && !lead.Status.IsClosed() {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListDealerIDs(_ context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, lead := range f.leads {
		if !seen[lead.DealerID] && !lead.Status.IsClosed() {
			seen[lead.DealerID] = true
			out = append(out, lead.DealerID)
		}
	}
	return out, nil
}

func storedScore(lead repository.Lead) int {
	if lead.Score == nil {
		return -1
	}
	return *lead.Score
}

func clearable(value *string) *string {
	if *value == "" {
		return nil
	}
	return value
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.published {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

type recordingEnqueuer struct {
	dealers []uuid.UUID
}

func (r *recordingEnqueuer) EnqueueScoreRefresh(_ context.Context, dealerID uuid.UUID) error {
	r.dealers = append(r.dealers, dealerID)
	return nil
}
