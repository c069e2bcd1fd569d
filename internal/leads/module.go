// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"

	"dealer_backend/internal/events"
	apphttp "dealer_backend/internal/http"
	"dealer_backend/internal/leads/handler"
	"dealer_backend/internal/leads/repository"
	"dealer_backend/internal/leads/scorecache"
	"dealer_backend/internal/leads/scoring"
	"dealer_backend/internal/leads/service"
	"dealer_backend/internal/leads/transport"
	"dealer_backend/platform/logger"
	"dealer_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
	log     *logger.Logger
}

// NewModule creates and initializes the leads module with all its dependencies.
// A nil cache runs without score caching.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, cache scorecache.Cache, val *validator.Validator, log *logger.Logger) (*Module, error) {
	return newModule(repository.New(pool), eventBus, cache, scoring.NewCalculator(nil), val, log)
}

func newModule(repo repository.Repository, eventBus events.Bus, cache scorecache.Cache, calc *scoring.Calculator, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	svc := service.New(repo, cache, calc, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
		log:     log,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for background jobs.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the lead repository for cross-module adapters.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// SetRefreshEnqueuer wires the scheduler client used by the recalculate endpoint.
func (m *Module) SetRefreshEnqueuer(enqueuer service.RefreshEnqueuer) {
	m.service.SetRefreshEnqueuer(enqueuer)
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// RegisterHandlers keeps stored scores current when a lead's inputs change.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadActivityLogged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadActivityLogged)
		if !ok {
			return nil
		}
		return m.refresh(ctx, e.DealerID.String(), func(ctx context.Context) error {
			_, err := m.service.RefreshScore(ctx, e.DealerID, e.LeadID)
			return err
		})
	}))

	bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadStatusChanged)
		if !ok {
			return nil
		}
		return m.refresh(ctx, e.DealerID.String(), func(ctx context.Context) error {
			_, err := m.service.RefreshScore(ctx, e.DealerID, e.LeadID)
			return err
		})
	}))
}

func (m *Module) refresh(ctx context.Context, dealerID string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		m.log.WithDealerID(dealerID).Error("lead score refresh failed", "error", err)
		return err
	}
	return nil
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
