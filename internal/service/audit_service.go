package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ideas-service/internal/domain"
	"github.com/spec-kit/ideas-service/internal/events"
	"github.com/spec-kit/ideas-service/internal/repository"
)

// AuditService writes an audit log line for every account and idea event and
// keeps the per-idea change trail when a history repository is configured.
type AuditService struct {
	dispatcher events.Dispatcher
	history    repository.IdeaHistoryRepository
	logger     *zap.Logger
}

// NewAuditService creates the service. history may be nil.
func NewAuditService(dispatcher events.Dispatcher, history repository.IdeaHistoryRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		history:    history,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleAccountEvent)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleAccountEvent)
	a.dispatcher.Subscribe(events.EventTokenRefreshed, a.handleAccountEvent)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventIdeaCreated, a.handleIdeaEvent)
	a.dispatcher.Subscribe(events.EventIdeaUpdated, a.handleIdeaEvent)
	a.dispatcher.Subscribe(events.EventIdeaDeleted, a.handleIdeaEvent)
}

func (a *AuditService) handleAccountEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.Time("at", event.Timestamp))
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("event_id", event.ID), zap.Time("at", event.Timestamp)}
	if payload, ok := event.Payload.(events.LoginFailedPayload); ok {
		fields = append(fields, zap.String("email", payload.Email), zap.String("reason", payload.Reason))
	}
	a.logger.Warn(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleIdeaEvent(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.IdeaPayload)
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("idea_id", payload.IdeaID),
		zap.Time("at", event.Timestamp))

	if a.history == nil || payload.IdeaID == "" {
		return nil
	}
	entry := &domain.IdeaHistory{
		IdeaID:     payload.IdeaID,
		UserID:     event.UserID,
		ChangeType: string(event.Type),
		Title:      payload.Title,
	}
	if err := a.history.Create(ctx, entry); err != nil {
		return fmt.Errorf("record idea history: %w", err)
	}
	return nil
}
