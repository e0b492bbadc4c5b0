// Package posts provides the PostgreSQL-backed post repository.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/server/models"
)

const postColumns = `id, user_id, brand_id, content, hook, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID, brandID string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id = $1 AND ($2::uuid IS NULL OR brand_id = $2::uuid)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, dbx.NullString(brandID))
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	result := []*models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.BrandID, &p.Content, &p.Hook, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND user_id = $2`

	var p models.Post
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&p.ID, &p.UserID, &p.BrandID, &p.Content, &p.Hook, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (user_id, brand_id, content, hook)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + postColumns

	var p models.Post
	err := r.db.QueryRowContext(ctx, query, post.UserID, post.BrandID, post.Content, post.Hook).
		Scan(&p.ID, &p.UserID, &p.BrandID, &p.Content, &p.Hook, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}
