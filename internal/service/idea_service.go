package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ideas-service/internal/domain"
	"github.com/spec-kit/ideas-service/internal/events"
	"github.com/spec-kit/ideas-service/internal/repository"
	apperrors "github.com/spec-kit/ideas-service/pkg/util/errorutil"
)

// IdeaInput carries the editable fields of an idea. Tags are already normalized.
type IdeaInput struct {
	Title       string
	Summary     string
	Description string
	Tags        []string
}

// IdeaService coordinates idea workflows and ownership checks.
type IdeaService struct {
	ideas      repository.IdeaRepository
	history    repository.IdeaHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewIdeaService constructs the service. history and dispatcher may be nil.
func NewIdeaService(ideas repository.IdeaRepository, history repository.IdeaHistoryRepository, dispatcher events.Dispatcher, logger *zap.Logger) *IdeaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdeaService{ideas: ideas, history: history, dispatcher: dispatcher, logger: logger}
}

// List returns ideas newest first; limit <= 0 means no limit.
func (s *IdeaService) List(ctx context.Context, limit int) ([]domain.Idea, error) {
	ideas, err := s.ideas.List(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list ideas: %w", err))
	}
	return ideas, nil
}

// Get loads a single idea. A malformed id is a 400.
func (s *IdeaService) Get(ctx context.Context, id string) (*domain.Idea, error) {
	return s.load(ctx, id, http.StatusBadRequest)
}

// Create stores a new idea owned by userID.
func (s *IdeaService) Create(ctx context.Context, userID string, in IdeaInput) (*domain.Idea, error) {
	idea := &domain.Idea{
		UserID:      userID,
		Title:       in.Title,
		Summary:     in.Summary,
		Description: in.Description,
		Tags:        in.Tags,
	}
	if err := s.ideas.Create(ctx, idea); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("create idea: %w", err))
	}
	s.publish(ctx, events.New(events.EventIdeaCreated, userID, events.IdeaPayload{IdeaID: idea.ID, Title: idea.Title}))
	return idea, nil
}

// Update replaces the editable fields of an idea owned by userID.
func (s *IdeaService) Update(ctx context.Context, userID, id string, in IdeaInput) (*domain.Idea, error) {
	idea, err := s.load(ctx, id, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	if !idea.OwnedBy(userID) {
		return nil, apperrors.NewForbidden("not authorized to update this idea")
	}

	idea.Title = in.Title
	idea.Summary = in.Summary
	idea.Description = in.Description
	idea.Tags = in.Tags
	if err := s.ideas.Update(ctx, idea); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("idea", nil)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("update idea: %w", err))
	}
	s.publish(ctx, events.New(events.EventIdeaUpdated, userID, events.IdeaPayload{IdeaID: idea.ID, Title: idea.Title}))
	return idea, nil
}

// Delete removes an idea owned by userID.
func (s *IdeaService) Delete(ctx context.Context, userID, id string) error {
	idea, err := s.load(ctx, id, http.StatusNotFound)
	if err != nil {
		return err
	}
	if !idea.OwnedBy(userID) {
		return apperrors.NewForbidden("not authorized to delete this idea")
	}
	if err := s.ideas.Delete(ctx, idea.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("idea", nil)
		}
		return apperrors.NewInternalError(fmt.Errorf("delete idea: %w", err))
	}
	s.publish(ctx, events.New(events.EventIdeaDeleted, userID, events.IdeaPayload{IdeaID: idea.ID}))
	return nil
}

// History returns the change trail of an idea owned by userID, oldest first.
func (s *IdeaService) History(ctx context.Context, userID, id string) ([]domain.IdeaHistory, error) {
	idea, err := s.load(ctx, id, http.StatusBadRequest)
	if err != nil {
		return nil, err
	}
	if !idea.OwnedBy(userID) {
		return nil, apperrors.NewForbidden("not authorized to view this idea's history")
	}
	if s.history == nil {
		return []domain.IdeaHistory{}, nil
	}
	entries, err := s.history.ListByIdea(ctx, idea.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list idea history: %w", err))
	}
	return entries, nil
}

func (s *IdeaService) load(ctx context.Context, id string, invalidStatus int) (*domain.Idea, error) {
	if !domain.ValidID(id) {
		return nil, apperrors.NewInvalidIdentifier("idea", invalidStatus)
	}
	idea, err := s.ideas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("idea", nil)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("get idea: %w", err))
	}
	return idea, nil
}

func (s *IdeaService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
