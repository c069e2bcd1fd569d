// Package service implements lead capture, activity logging and score ranking.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"dealer_backend/internal/events"
	"dealer_backend/internal/leads/domain"
	"dealer_backend/internal/leads/repository"
	"dealer_backend/internal/leads/scorecache"
	"dealer_backend/internal/leads/scoring"
	"dealer_backend/internal/leads/transport"
	"dealer_backend/internal/metrics"
	"dealer_backend/platform/apperr"
	"dealer_backend/platform/logger"
	"dealer_backend/platform/phone"
	"dealer_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	sinceLayout     = "2006-01-02"

	// RankingWindow caps how many matching leads are scored live to rank a
	// score-sorted list. Matches beyond it are not listed in that order.
	RankingWindow = 5000
)

// RefreshEnqueuer hands a dealer-wide recalculation to the background worker.
type RefreshEnqueuer interface {
	EnqueueScoreRefresh(ctx context.Context, dealerID uuid.UUID) error
}

// Service handles lead operations and keeps stored scores current.
type Service struct {
	repo     repository.Repository
	cache    scorecache.Cache
	calc     *scoring.Calculator
	eventBus events.Bus
	enqueuer RefreshEnqueuer
	log      *logger.Logger
}

// New creates a lead service. A nil cache disables caching.
func New(repo repository.Repository, cache scorecache.Cache, calc *scoring.Calculator, eventBus events.Bus, log *logger.Logger) *Service {
	if cache == nil {
		cache = scorecache.Noop{}
	}
	if calc == nil {
		calc = scoring.NewCalculator(nil)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{repo: repo, cache: cache, calc: calc, eventBus: eventBus, log: log}
}

// SetRefreshEnqueuer wires the background job client. Without one,
// RequestRecalculation runs inline.
func (s *Service) SetRefreshEnqueuer(enqueuer RefreshEnqueuer) {
	s.enqueuer = enqueuer
}

// Create captures a new lead and stores its initial score.
func (s *Service) Create(ctx context.Context, dealerID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	if req.VehicleID != nil {
		exists, err := s.repo.VehicleExists(ctx, *req.VehicleID, dealerID)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		if !exists {
			return transport.LeadResponse{}, apperr.Validation("vehicle not found")
		}
	}

	firstName, lastName := sanitize.Text(req.FirstName), sanitize.Text(req.LastName)
	if err := requireNames(&firstName, &lastName); err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.Create(ctx, repository.CreateParams{
		DealerID:  dealerID,
		VehicleID: req.VehicleID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     optionalString(strings.ToLower(strings.TrimSpace(req.Email))),
		Phone:     optionalString(phone.NormalizeE164(req.Phone)),
		Message:   optionalString(sanitize.Text(req.Message)),
		Notes:     optionalString(sanitize.Text(req.Notes)),
		Source:    domain.ParseSource(req.Source),
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	breakdown, err := s.scoreAndStore(ctx, lead, nil, metrics.TriggerWrite)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		DealerID:  dealerID,
		Source:    string(lead.Source),
		Name:      fullName(lead),
	})

	return ToLeadResponse(lead, breakdown), nil
}

// Get returns a lead with its activities and a freshly computed score.
func (s *Service) Get(ctx context.Context, dealerID, id uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, dealerID)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	activities, err := s.repo.ListActivities(ctx, id, dealerID)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	breakdown := s.compute(lead, activities, metrics.TriggerRead)
	s.cacheSet(ctx, lead.ID, breakdown)

	return transport.LeadDetailResponse{
		LeadResponse: ToLeadResponse(lead, breakdown),
		Activities:   ToActivityResponses(activities),
	}, nil
}

// List returns a page of leads scored live from their activities. When sorting
// by score the whole filtered set (up to RankingWindow) is ranked by live
// total before paging, so stale stored snapshots never reorder pages.
func (s *Service) List(ctx context.Context, dealerID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = defaultPage
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	params := repository.ListParams{
		DealerID:  dealerID,
		Search:    strings.TrimSpace(req.Search),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
	}
	if req.Source != "" {
		source := domain.Source(req.Source)
		params.Source = &source
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		params.Status = &status
	}
	if req.Since != "" {
		since, err := time.Parse(sinceLayout, req.Since)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation("since must be a date (YYYY-MM-DD)")
		}
		params.CreatedSince = &since
	}

	rankLive := req.SortBy == "" || req.SortBy == "score"
	if rankLive {
		params.Offset = 0
		params.Limit = RankingWindow
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items, err := s.scoreLeads(ctx, dealerID, leads)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	if rankLive {
		rankByScore(items, req.SortOrder == "asc")
		start := min((page-1)*pageSize, len(items))
		end := min(start+pageSize, len(items))
		items = items[start:end]
	}

	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// scoreLeads computes live breakdowns with one batched activity query.
func (s *Service) scoreLeads(ctx context.Context, dealerID uuid.UUID, leads []repository.Lead) ([]transport.LeadResponse, error) {
	ids := make([]uuid.UUID, len(leads))
	for i, lead := range leads {
		ids[i] = lead.ID
	}
	activitiesByLead, err := s.repo.ListActivitiesForLeads(ctx, ids, dealerID)
	if err != nil {
		return nil, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		breakdown := s.compute(lead, activitiesByLead[lead.ID], metrics.TriggerRead)
		items[i] = ToLeadResponse(lead, breakdown)
	}
	return items, nil
}

// rankByScore orders by total, newest first among equal totals.
func rankByScore(items []transport.LeadResponse, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Score.Breakdown.Total, items[j].Score.Breakdown.Total
		if a != b {
			if ascending {
				return a < b
			}
			return a > b
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// Update applies a partial update. A status change is logged as an activity.
func (s *Service) Update(ctx context.Context, dealerID, actorID, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	current, err := s.repo.GetByID(ctx, id, dealerID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	params := repository.UpdateParams{
		ID:           id,
		DealerID:     dealerID,
		FirstName:    sanitize.TextPtr(req.FirstName),
		LastName:     sanitize.TextPtr(req.LastName),
		Notes:        sanitize.TextPtr(req.Notes),
		NextFollowup: req.NextFollowup,
	}
	if err := requireNames(params.FirstName, params.LastName); err != nil {
		return transport.LeadResponse{}, err
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		params.Email = &email
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	var statusChanged bool
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !status.IsValid() {
			return transport.LeadResponse{}, apperr.Validation("invalid status")
		}
		if status != current.Status {
			params.Status = &status
			statusChanged = true
		}
	}

	lead, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if statusChanged {
		body := fmt.Sprintf("%s → %s", current.Status.Label(), lead.Status.Label())
		if _, err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
			LeadID:    id,
			DealerID:  dealerID,
			Type:      domain.ActivityStatusChange,
			Body:      &body,
			CreatedBy: &actorID,
		}); err != nil {
			return transport.LeadResponse{}, err
		}
		s.cacheInvalidate(ctx, id)
		s.publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    id,
			DealerID:  dealerID,
			OldStatus: string(current.Status),
			NewStatus: string(lead.Status),
		})
	}

	activities, err := s.repo.ListActivities(ctx, id, dealerID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead, s.compute(lead, activities, metrics.TriggerRead)), nil
}

// LogActivity appends an activity and drops the lead's cached score.
func (s *Service) LogActivity(ctx context.Context, dealerID, actorID, leadID uuid.UUID, req transport.LogActivityRequest) (transport.ActivityResponse, error) {
	activityType := domain.ActivityType(req.Type)
	if !activityType.IsValid() {
		return transport.ActivityResponse{}, apperr.Validation("invalid activity type")
	}

	activity, err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:    leadID,
		DealerID:  dealerID,
		Type:      activityType,
		Body:      optionalString(sanitize.Text(req.Body)),
		CreatedBy: &actorID,
	})
	if err != nil {
		return transport.ActivityResponse{}, err
	}

	s.cacheInvalidate(ctx, leadID)
	s.publish(ctx, events.LeadActivityLogged{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       leadID,
		DealerID:     dealerID,
		ActivityID:   activity.ID,
		ActivityType: string(activity.Type),
	})

	return ToActivityResponse(activity), nil
}

// Score returns a lead's breakdown, served from cache when possible.
func (s *Service) Score(ctx context.Context, dealerID, leadID uuid.UUID) (transport.ScoreResponse, error) {
	// Tenant check first: the cache is keyed by lead only.
	lead, err := s.repo.GetByID(ctx, leadID, dealerID)
	if err != nil {
		return transport.ScoreResponse{}, err
	}

	cached, ok, err := s.cache.Get(ctx, leadID)
	if err != nil {
		s.log.WithContext(ctx).Warn("score cache read failed", "lead_id", leadID, "error", err)
	}
	if ok {
		metrics.ScoreCacheLookups.WithLabelValues("hit").Inc()
		return ToScoreResponse(cached), nil
	}
	metrics.ScoreCacheLookups.WithLabelValues("miss").Inc()

	activities, err := s.repo.ListActivities(ctx, leadID, dealerID)
	if err != nil {
		return transport.ScoreResponse{}, err
	}

	breakdown := s.compute(lead, activities, metrics.TriggerRead)
	s.cacheSet(ctx, leadID, breakdown)
	return ToScoreResponse(breakdown), nil
}

// Components returns the static breakdown metadata.
func (s *Service) Components() transport.ComponentsResponse {
	return transport.ComponentsResponse{
		Components:   scoring.Components(),
		MaxTotal:     scoring.MaxTotal,
		HotThreshold: scoring.HotThreshold,
		Version:      scoring.ScoreVersion,
	}
}

func (s *Service) compute(lead repository.Lead, activities []repository.Activity, trigger string) scoring.Breakdown {
	breakdown := s.calc.Compute(toScoringLead(lead), toScoringActivities(activities))
	metrics.ScoreComputations.WithLabelValues(trigger).Inc()
	metrics.ScoreTotals.Observe(float64(breakdown.Total))
	return breakdown
}

func (s *Service) cacheSet(ctx context.Context, leadID uuid.UUID, breakdown scoring.Breakdown) {
	if err := s.cache.Set(ctx, leadID, breakdown); err != nil {
		s.log.WithContext(ctx).Warn("score cache write failed", "lead_id", leadID, "error", err)
	}
}

func (s *Service) cacheInvalidate(ctx context.Context, leadIDs ...uuid.UUID) {
	if err := s.cache.Invalidate(ctx, leadIDs...); err != nil {
		s.log.WithContext(ctx).Warn("score cache invalidation failed", "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, event)
}

// requireNames rejects names that sanitising left empty. Nil means unchanged.
func requireNames(firstName, lastName *string) error {
	details := make(map[string]string)
	if firstName != nil && *firstName == "" {
		details["firstName"] = "must contain text"
	}
	if lastName != nil && *lastName == "" {
		details["lastName"] = "must contain text"
	}
	if len(details) > 0 {
		return apperr.Validation("name must contain text").WithDetails(details)
	}
	return nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func fullName(lead repository.Lead) string {
	return strings.TrimSpace(lead.FirstName + " " + lead.LastName)
}
