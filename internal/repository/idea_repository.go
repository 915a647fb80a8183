package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ideas-service/internal/domain"
)

// IdeaRepository encapsulates idea persistence.
type IdeaRepository interface {
	Create(ctx context.Context, idea *domain.Idea) error
	Update(ctx context.Context, idea *domain.Idea) error
	GetByID(ctx context.Context, id string) (*domain.Idea, error)
	List(ctx context.Context, limit int) ([]domain.Idea, error)
	Delete(ctx context.Context, id string) error
}

type ideaRepository struct {
	pool *pgxpool.Pool
}

// NewIdeaRepository instantiates repository.
func NewIdeaRepository(pool *pgxpool.Pool) IdeaRepository {
	return &ideaRepository{pool: pool}
}

const ideaColumns = `id, user_id, title, summary, description, tags, created_at, updated_at`

func (r *ideaRepository) Create(ctx context.Context, idea *domain.Idea) error {
	const query = `
        INSERT INTO ideas (user_id, title, summary, description, tags)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		idea.UserID,
		idea.Title,
		idea.Summary,
		idea.Description,
		tagsOrEmpty(idea.Tags),
	).Scan(&idea.ID, &idea.CreatedAt, &idea.UpdatedAt)
}

func (r *ideaRepository) Update(ctx context.Context, idea *domain.Idea) error {
	const query = `
        UPDATE ideas SET title=$1, summary=$2, description=$3, tags=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		idea.Title,
		idea.Summary,
		idea.Description,
		tagsOrEmpty(idea.Tags),
		idea.ID,
	).Scan(&idea.UpdatedAt)
	return err
}

func (r *ideaRepository) GetByID(ctx context.Context, id string) (*domain.Idea, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE id=$1`

	idea, err := scanIdea(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// List returns ideas newest first. A non-positive limit returns all ideas.
func (r *ideaRepository) List(ctx context.Context, limit int) ([]domain.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ideas := make([]domain.Idea, 0)
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

func (r *ideaRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ideas WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanIdea(row pgx.Row) (*domain.Idea, error) {
	var idea domain.Idea
	if err := row.Scan(
		&idea.ID,
		&idea.UserID,
		&idea.Title,
		&idea.Summary,
		&idea.Description,
		&idea.Tags,
		&idea.CreatedAt,
		&idea.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &idea, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
