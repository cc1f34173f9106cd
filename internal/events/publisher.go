package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/vnestate/chatbot-platform/pkg/logger"
)

const (
	// StreamName is the JetStream stream holding turn audit events.
	StreamName = "CHAT_TURNS"

	subjectPrefix = "turns"
)

// TurnEvent records the outcome of a single conversational turn.
type TurnEvent struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Intent    string    `json:"intent"`
	Status    string    `json:"status"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher publishes turn events to JetStream.
type Publisher struct {
	js     jetstream.JetStream
	logger *logger.Logger
}

// NewPublisher ensures the turn stream exists and returns a publisher.
func NewPublisher(ctx context.Context, client *Client, log *logger.Logger) (*Publisher, error) {
	js := client.JetStream()

	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure stream %s: %w", StreamName, err)
	}

	return &Publisher{
		js:     js,
		logger: log,
	}, nil
}

// PublishTurn publishes a turn event. Failures are returned but callers
// treat publishing as best-effort.
func (p *Publisher) PublishTurn(ctx context.Context, event TurnEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal turn event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", subjectPrefix, event.Intent)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish turn event: %w", err)
	}

	return nil
}
