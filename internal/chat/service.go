// Package chat orchestrates conversational turns: session management,
// intent classification, handler dispatch and persistence.
package chat

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vnestate/chatbot-platform/internal/events"
	"github.com/vnestate/chatbot-platform/internal/intent"
	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/internal/store"
	"github.com/vnestate/chatbot-platform/pkg/logger"
	"github.com/vnestate/chatbot-platform/pkg/metrics"
)

// titleLimit caps auto-derived session titles, in runes.
const titleLimit = 50

// failureReply is persisted as the assistant message when a handler fails.
const failureReply = "Xin lỗi, tôi gặp sự cố khi xử lý yêu cầu của bạn. Vui lòng thử lại sau."

// Service orchestrates conversational turns.
type Service struct {
	sessions   store.SessionStore
	classifier *intent.Classifier
	registry   *intent.Registry
	publisher  *events.Publisher
	logger     *logger.Logger
}

// NewService creates the turn orchestrator. publisher may be nil when
// event publishing is disabled.
func NewService(sessions store.SessionStore, classifier *intent.Classifier, registry *intent.Registry, publisher *events.Publisher, log *logger.Logger) *Service {
	return &Service{
		sessions:   sessions,
		classifier: classifier,
		registry:   registry,
		publisher:  publisher,
		logger:     log,
	}
}

// ProcessTurn runs one conversational turn for a user. An empty
// sessionID starts a new session titled after the message. The user and
// assistant messages are appended to the session in a single atomic
// operation.
func (s *Service) ProcessTurn(ctx context.Context, userID, sessionID, message string) (*model.ChatResponse, error) {
	start := time.Now()

	session, err := s.resolveSession(ctx, userID, sessionID, message)
	if err != nil {
		return nil, err
	}

	intentName, err := s.classifier.Classify(ctx, message, session.Messages)
	if err != nil {
		if !errors.Is(err, intent.ErrClassificationUnavailable) {
			return nil, err
		}
		s.logger.Warn("classification unavailable, using default intent",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		intentName = intent.DefaultIntent
	}

	handler, err := s.registry.Resolve(intentName)
	if err != nil {
		return nil, err
	}

	status := "ok"
	resp, handleErr := handler.Handle(ctx, message, session)
	if handleErr != nil {
		s.logger.Error("intent handler failed",
			zap.String("session_id", session.ID),
			zap.String("intent", intentName),
			zap.Error(handleErr),
		)
		status = "error"
		resp = &intent.Response{Text: failureReply}
	}

	now := time.Now().UTC()
	userMsg := model.Message{Role: model.RoleUser, Content: message, Timestamp: now}
	assistantMsg := model.Message{
		Role:      model.RoleAssistant,
		Content:   resp.Text,
		Timestamp: now,
		MediaRef:  resp.MediaRef,
	}

	if _, err := s.sessions.AppendMessages(ctx, session.ID, userMsg, assistantMsg); err != nil {
		return nil, err
	}
	metrics.MessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()
	metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()

	latency := time.Since(start)
	metrics.RecordTurn(intentName, status, latency.Seconds())
	s.publishTurn(ctx, session.ID, userID, intentName, status, latency)

	return &model.ChatResponse{
		SessionID: session.ID,
		Intent:    intentName,
		Reply:     resp.Text,
		MediaRef:  resp.MediaRef,
	}, nil
}

// resolveSession loads the session and verifies ownership, or creates a
// new one when sessionID is empty.
func (s *Service) resolveSession(ctx context.Context, userID, sessionID, message string) (*model.Session, error) {
	if sessionID == "" {
		session, err := s.sessions.Create(ctx, userID, deriveTitle(message))
		if err != nil {
			return nil, err
		}
		s.logger.Info("session created",
			zap.String("session_id", session.ID),
			zap.String("user_id", userID),
		)
		return session, nil
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		// Do not reveal that the session exists.
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) publishTurn(ctx context.Context, sessionID, userID, intentName, status string, latency time.Duration) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishTurn(ctx, events.TurnEvent{
		SessionID: sessionID,
		UserID:    userID,
		Intent:    intentName,
		Status:    status,
		LatencyMs: latency.Milliseconds(),
	})
	if err != nil {
		s.logger.Warn("failed to publish turn event", zap.Error(err))
	}
}

// ListSessions returns the user's session summaries, most recent first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	return s.sessions.ListForUser(ctx, userID)
}

// GetSession returns a session owned by the user.
func (s *Service) GetSession(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

// RenameSession updates the title of a session owned by the user.
func (s *Service) RenameSession(ctx context.Context, userID, sessionID, title string) error {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.sessions.Rename(ctx, sessionID, title)
}

// DeleteSession removes a session owned by the user.
func (s *Service) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionID)
}

// deriveTitle derives a session title from the first user message.
func deriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleLimit {
		return message
	}
	return string(runes[:titleLimit]) + "..."
}
