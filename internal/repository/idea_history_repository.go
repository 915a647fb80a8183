package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ideas-service/internal/domain"
)

// IdeaHistoryRepository stores the change trail of ideas.
type IdeaHistoryRepository interface {
	Create(ctx context.Context, entry *domain.IdeaHistory) error
	ListByIdea(ctx context.Context, ideaID string) ([]domain.IdeaHistory, error)
}

type ideaHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewIdeaHistoryRepository builds repository.
func NewIdeaHistoryRepository(pool *pgxpool.Pool) IdeaHistoryRepository {
	return &ideaHistoryRepository{pool: pool}
}

func (r *ideaHistoryRepository) Create(ctx context.Context, entry *domain.IdeaHistory) error {
	const query = `
        INSERT INTO idea_history (idea_id, user_id, change_type, title)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.IdeaID,
		entry.UserID,
		entry.ChangeType,
		entry.Title,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByIdea returns the trail oldest first.
func (r *ideaHistoryRepository) ListByIdea(ctx context.Context, ideaID string) ([]domain.IdeaHistory, error) {
	if !validID(ideaID) {
		return []domain.IdeaHistory{}, nil
	}
	const query = `
        SELECT id, idea_id, user_id, change_type, title, created_at
        FROM idea_history WHERE idea_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ideaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.IdeaHistory, 0)
	for rows.Next() {
		var entry domain.IdeaHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.IdeaID,
			&entry.UserID,
			&entry.ChangeType,
			&entry.Title,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
