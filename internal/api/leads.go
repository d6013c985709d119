// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"time"

	"github.com/ManuGH/siteguard/internal/log"
	"github.com/rs/zerolog"
)

// Lead kinds.
const (
	LeadContact = "contact"
	LeadB2B     = "b2b"
)

// Lead is a validated inbound enquiry.
type Lead struct {
	Kind       string            `json:"kind"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Company    string            `json:"company,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Message    string            `json:"message,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
	ReceivedAt time.Time         `json:"receivedAt"`
	RequestID  string            `json:"requestId,omitempty"`
}

// LeadSink delivers leads to e-mail, ticketing or a CRM.
type LeadSink interface {
	Submit(ctx context.Context, lead Lead) error
}

// LogSink writes leads to the structured log. Message bodies are not logged.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink logging under the "leads" component.
func NewLogSink() *LogSink {
	return &LogSink{logger: log.WithComponent("leads")}
}

// Submit implements LeadSink.
func (s *LogSink) Submit(ctx context.Context, lead Lead) error {
	logger := log.WithContext(ctx, s.logger)
	logger.Info().
		Str(log.FieldEvent, "lead.received").
		Str("kind", lead.Kind).
		Str("company", lead.Company).
		Int("message_len", len(lead.Message)).
		Msg("lead received")
	return nil
}

// ReferralDirectory answers whether a referral code exists.
type ReferralDirectory interface {
	Exists(ctx context.Context, code string) (bool, error)
}
