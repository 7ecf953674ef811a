package nats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"live-quiz-service/internal/domain"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "quiz.events"

// Config controls the connection used by Publisher.
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// MsgPublisher is the slice of *nats.Conn the publisher needs.
type MsgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Publisher mirrors session events onto NATS subjects "<prefix>.<eventType>"
// so other instances and services can follow the session.
type Publisher struct {
	conn   MsgPublisher
	prefix string
	now    func() time.Time
	close  func()
}

type envelope struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Connect dials NATS and wraps the connection in a Publisher.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	opts := []nats.Option{
		nats.Name("live-quiz-service"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	p := NewPublisher(nc, cfg.SubjectPrefix)
	p.close = func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return p, nil
}

func NewPublisher(conn MsgPublisher, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix, now: time.Now}
}

// Broadcast implements app.Broadcaster. Failures are logged and dropped.
func (p *Publisher) Broadcast(event domain.Event) {
	id := uuid.NewString()
	data, err := json.Marshal(envelope{
		EventID:   id,
		EventType: event.Type,
		Timestamp: p.now().UTC(),
		Payload:   event.Payload,
	})
	if err != nil {
		log.Error().Err(err).Str("event", event.Type).Msg("marshal event for NATS")
		return
	}
	subject := p.Subject(event.Type)
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{event.Type},
			"Event-ID":   []string{id},
		},
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("publish event to NATS")
		return
	}
	log.Debug().Str("subject", subject).Str("event_id", id).Msg("published event")
}

// Subject returns the subject an event type is published on.
func (p *Publisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}
