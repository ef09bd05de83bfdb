package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Lifecycle event subjects published for the platform's notifier.
const (
	EventSessionSubmitted   = "session.submitted"
	EventSessionExpired     = "session.expired"
	EventInterviewCompleted = "interview.completed"
)

// EventPublisher fans lifecycle events out to interested platform services.
// Publishing is best effort; failures are logged, never propagated.
type EventPublisher interface {
	Publish(subject string, payload interface{})
}

// LifecycleEvent is the envelope published on the event bus.
type LifecycleEvent struct {
	SessionID string    `json:"session_id"`
	JobID     string    `json:"job_id"`
	UserID    string    `json:"user_id"`
	At        time.Time `json:"at"`
}

// NewEventPublisher wraps a NATS connection. A nil connection yields a no-op
// publisher so the gateway runs without an event bus configured.
func NewEventPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) EventPublisher {
	base := strings.Trim(strings.ReplaceAll(subjectBase, ":", "."), ".")
	if base == "" {
		base = "hirehub"
	}

	return &natsPublisher{
		conn:   conn,
		base:   base,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

type natsPublisher struct {
	conn   *nats.Conn
	base   string
	logger zerolog.Logger
}

func (p *natsPublisher) Publish(subject string, payload interface{}) {
	if p.conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to encode lifecycle event")
		return
	}

	if err := p.conn.Publish(p.base+"."+subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish lifecycle event")
	}
}
