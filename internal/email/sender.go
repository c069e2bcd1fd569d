package email

import (
	"context"

	"dealer_backend/platform/config"
)

// HotLead is the content of a hot-lead alert.
type HotLead struct {
	LeadName  string
	Source    string
	Vehicle   string
	Score     int
	Previous  *int
	Indicator string
	LeadURL   string
}

type Sender interface {
	SendHotLeadEmail(ctx context.Context, toEmail string, lead HotLead) error
}

type NoopSender struct{}

func (NoopSender) SendHotLeadEmail(ctx context.Context, toEmail string, lead HotLead) error {
	return nil
}

// NewSender returns an SMTP sender, or a NoopSender when SMTP is not configured.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
