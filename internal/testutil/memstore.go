// Package testutil provides in-memory repositories for service and handler tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/ideas-service/internal/domain"
	"github.com/spec-kit/ideas-service/internal/repository"
)

// UniqueViolation mimics the error Postgres returns for a duplicate email.
var UniqueViolation = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

// UserStore is a map-backed repository.UserRepository. Setting Err makes every
// call fail with it.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
	Err   error
}

var _ repository.UserRepository = (*UserStore)(nil)

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return UniqueViolation
		}
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) GetProfileByID(_ context.Context, id string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.users, id)
	return nil
}

// IdeaStore is a slice-backed repository.IdeaRepository that keeps insertion order.
type IdeaStore struct {
	mu    sync.RWMutex
	ideas []domain.Idea
	Err   error
}

var _ repository.IdeaRepository = (*IdeaStore)(nil)

// NewIdeaStore returns an empty store.
func NewIdeaStore() *IdeaStore {
	return &IdeaStore{}
}

func (s *IdeaStore) Create(_ context.Context, idea *domain.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	now := time.Now().UTC()
	idea.ID = uuid.NewString()
	idea.CreatedAt = now
	idea.UpdatedAt = now
	s.ideas = append(s.ideas, *idea)
	return nil
}

func (s *IdeaStore) Update(_ context.Context, idea *domain.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.ideas {
		if s.ideas[i].ID == idea.ID {
			idea.UpdatedAt = time.Now().UTC()
			s.ideas[i] = *idea
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (s *IdeaStore) GetByID(_ context.Context, id string) (*domain.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, idea := range s.ideas {
		if idea.ID == id {
			found := idea
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// List returns ideas newest first.
func (s *IdeaStore) List(_ context.Context, limit int) ([]domain.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.Idea, 0, len(s.ideas))
	for i := len(s.ideas) - 1; i >= 0; i-- {
		out = append(out, s.ideas[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *IdeaStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			s.ideas = append(s.ideas[:i], s.ideas[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// HistoryStore is an append-only repository.IdeaHistoryRepository.
type HistoryStore struct {
	mu      sync.Mutex
	entries []domain.IdeaHistory
	Err     error
}

var _ repository.IdeaHistoryRepository = (*HistoryStore)(nil)

// NewHistoryStore returns an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) Create(_ context.Context, entry *domain.IdeaHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *HistoryStore) ListByIdea(_ context.Context, ideaID string) ([]domain.IdeaHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.IdeaHistory, 0)
	for _, e := range s.entries {
		if e.IdeaID == ideaID {
			out = append(out, e)
		}
	}
	return out, nil
}
