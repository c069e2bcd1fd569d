// Package notification sends alerts in response to domain events.
package notification

import (
	"context"
	"fmt"
	"strings"

	"dealer_backend/internal/email"
	"dealer_backend/internal/events"
	"dealer_backend/internal/leads/scoring"
	"dealer_backend/internal/metrics"
	"dealer_backend/platform/logger"
)

// Config is what the notification handlers read from configuration.
type Config interface {
	GetAppBaseURL() string
	GetHotLeadNotifyAddress() string
}

// Module handles notification events.
type Module struct {
	sender email.Sender
	cfg    Config
	log    *logger.Logger
}

// New creates a notification module.
func New(sender email.Sender, cfg Config, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{sender: sender, cfg: cfg, log: log}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadBecameHot{}.EventName(), events.HandlerFunc(m.handleLeadBecameHot))
}

func (m *Module) handleLeadBecameHot(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadBecameHot)
	if !ok {
		return nil
	}

	log := m.log.WithDealerID(e.DealerID.String())
	log.Info("lead became hot", "lead_id", e.LeadID, "score", e.Score)

	to := strings.TrimSpace(m.cfg.GetHotLeadNotifyAddress())
	if to == "" {
		metrics.NotificationsSent.WithLabelValues("hot_lead", "skipped").Inc()
		return nil
	}

	err := m.sender.SendHotLeadEmail(ctx, to, email.HotLead{
		LeadName:  e.Name,
		Source:    e.Source,
		Vehicle:   strings.TrimSpace(e.Vehicle),
		Score:     e.Score,
		Previous:  e.PreviousScore,
		Indicator: scoring.Classify(e.Score).Indicator,
		LeadURL:   leadURL(m.cfg.GetAppBaseURL(), e.LeadID.String()),
	})
	if err != nil {
		metrics.NotificationsSent.WithLabelValues("hot_lead", "failed").Inc()
		log.Error("hot lead email failed", "lead_id", e.LeadID, "error", err)
		return fmt.Errorf("send hot lead email: %w", err)
	}

	metrics.NotificationsSent.WithLabelValues("hot_lead", "sent").Inc()
	return nil
}

func leadURL(baseURL, leadID string) string {
	return strings.TrimRight(baseURL, "/") + "/leads/" + leadID
}
