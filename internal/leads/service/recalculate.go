package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"dealer_backend/internal/events"
	"dealer_backend/internal/leads/repository"
	"dealer_backend/internal/leads/scoring"
	"dealer_backend/internal/leads/transport"
	"dealer_backend/internal/metrics"
	"dealer_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const recalculationConcurrency = 8

// RecalculationResult summarises a dealer-wide refresh.
type RecalculationResult struct {
	Leads int
	Hot   int
}

// RequestRecalculation schedules a dealer-wide refresh on the worker,
// or runs it inline when no worker client is configured.
func (s *Service) RequestRecalculation(ctx context.Context, dealerID uuid.UUID) error {
	if s.enqueuer != nil {
		return s.enqueuer.EnqueueScoreRefresh(ctx, dealerID)
	}
	_, err := s.RecalculateDealer(ctx, dealerID)
	return err
}

// RecalculateDealer recomputes and stores the score of every open lead of a dealer.
func (s *Service) RecalculateDealer(ctx context.Context, dealerID uuid.UUID) (RecalculationResult, error) {
	start := time.Now()

	ids, err := s.repo.ListOpenLeadIDs(ctx, dealerID)
	if err != nil {
		s.log.WithDealerID(dealerID.String()).DatabaseError("list open leads", err)
		return RecalculationResult{}, err
	}

	var hot atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recalculationConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			resp, err := s.RefreshScore(gctx, dealerID, id)
			if err != nil {
				return fmt.Errorf("refresh lead %s: %w", id, err)
			}
			if scoring.IsHot(resp.Breakdown.Total) {
				hot.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RecalculationResult{}, err
	}

	elapsed := time.Since(start)
	metrics.RecalculationDuration.Observe(elapsed.Seconds())
	result := RecalculationResult{Leads: len(ids), Hot: int(hot.Load())}
	s.log.ScoreRecalculated(dealerID.String(), result.Leads, result.Hot, float64(elapsed.Milliseconds()))
	return result, nil
}

// RefreshScore recomputes and stores one lead's score.
func (s *Service) RefreshScore(ctx context.Context, dealerID, leadID uuid.UUID) (transport.ScoreResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID, dealerID)
	if err != nil {
		return transport.ScoreResponse{}, err
	}
	activities, err := s.repo.ListActivities(ctx, leadID, dealerID)
	if err != nil {
		return transport.ScoreResponse{}, err
	}

	breakdown, err := s.scoreAndStore(ctx, lead, activities, metrics.TriggerRefresh)
	if err != nil {
		return transport.ScoreResponse{}, err
	}
	return ToScoreResponse(breakdown), nil
}

// scoreAndStore persists a fresh snapshot and announces a crossing into the
// very high band. The previous total comes back from the same locked update,
// so concurrent refreshes of one lead announce a crossing once.
func (s *Service) scoreAndStore(ctx context.Context, lead repository.Lead, activities []repository.Activity, trigger string) (scoring.Breakdown, error) {
	breakdown := s.compute(lead, activities, trigger)

	raw, err := json.Marshal(breakdown)
	if err != nil {
		return scoring.Breakdown{}, fmt.Errorf("marshal score breakdown: %w", err)
	}

	computedAt := s.calc.Now().UTC()
	previous, err := s.repo.SaveScore(ctx, lead.ID, lead.DealerID, repository.ScoreSnapshot{
		Total:      breakdown.Total,
		Breakdown:  raw,
		Version:    scoring.ScoreVersion,
		ComputedAt: computedAt,
	})
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			s.log.WithDealerID(lead.DealerID.String()).DatabaseError("save lead score", err)
		}
		return scoring.Breakdown{}, err
	}
	s.cacheSet(ctx, lead.ID, breakdown)

	if crossedIntoHot(previous, breakdown.Total) {
		metrics.HotLeadCrossings.Inc()
		s.publish(ctx, events.LeadBecameHot{
			BaseEvent:     events.NewBaseEvent(),
			LeadID:        lead.ID,
			DealerID:      lead.DealerID,
			Name:          fullName(lead),
			Source:        lead.Source.Label(),
			Vehicle:       vehicleTitle(lead.Vehicle),
			VehicleID:     lead.VehicleID,
			PreviousScore: previous,
			Score:         breakdown.Total,
			ScoredAt:      computedAt,
		})
	}
	return breakdown, nil
}

func crossedIntoHot(previous *int, total int) bool {
	if !scoring.IsHot(total) {
		return false
	}
	return previous == nil || !scoring.IsHot(*previous)
}

func vehicleTitle(v *repository.Vehicle) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%s %s", v.Make, v.Model)
}
