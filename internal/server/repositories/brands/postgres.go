// Package brands provides the PostgreSQL-backed brand repository.
package brands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/server/models"
)

const brandColumns = `id, user_id, name, config, social_links, images, info_questions, brand_mark, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBrand(row rowScanner) (*models.Brand, error) {
	b := &models.Brand{}
	err := row.Scan(&b.ID, &b.UserID, &b.Name,
		(*[]byte)(&b.Config), (*[]byte)(&b.SocialLinks), (*[]byte)(&b.Images),
		(*[]byte)(&b.InfoQuestions), (*[]byte)(&b.BrandMark),
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns the user's brands, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select brands: %w", err)
	}
	defer rows.Close()

	result := []*models.Brand{}
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands
		WHERE id = $1 AND user_id = $2`

	b, err := scanBrand(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

// Exists reports whether id is a brand owned by userID.
func (r *PostgresRepository) Exists(ctx context.Context, userID, id string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM brands WHERE id = $1 AND user_id = $2)`, id, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

// Create inserts a brand. The owner is taken from brand.UserID, which the
// caller sets from the authenticated identity.
func (r *PostgresRepository) Create(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	query := `
		INSERT INTO brands (user_id, name, config, social_links, images, info_questions, brand_mark)
		VALUES ($1, $2,
			COALESCE($3::jsonb, '{}'), COALESCE($4::jsonb, '{}'), COALESCE($5::jsonb, '[]'),
			COALESCE($6::jsonb, '{}'), COALESCE($7::jsonb, '{}'))
		RETURNING ` + brandColumns

	b, err := scanBrand(r.db.QueryRowContext(ctx, query,
		brand.UserID, brand.Name,
		dbx.JSONArg(brand.Config), dbx.JSONArg(brand.SocialLinks), dbx.JSONArg(brand.Images),
		dbx.JSONArg(brand.InfoQuestions), dbx.JSONArg(brand.BrandMark)))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

// Update applies the non-empty fields of brand to the row matching
// (brand.ID, brand.UserID). No matching row means common.ErrNotFound,
// whether the brand is missing or owned by someone else.
func (r *PostgresRepository) Update(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	query := `
		UPDATE brands SET
			name = COALESCE(NULLIF($3, ''), name),
			config = COALESCE($4::jsonb, config),
			social_links = COALESCE($5::jsonb, social_links),
			images = COALESCE($6::jsonb, images),
			info_questions = COALESCE($7::jsonb, info_questions),
			brand_mark = COALESCE($8::jsonb, brand_mark),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + brandColumns

	b, err := scanBrand(r.db.QueryRowContext(ctx, query,
		brand.ID, brand.UserID, brand.Name,
		dbx.JSONArg(brand.Config), dbx.JSONArg(brand.SocialLinks), dbx.JSONArg(brand.Images),
		dbx.JSONArg(brand.InfoQuestions), dbx.JSONArg(brand.BrandMark)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res, common.ErrNotFound)
}
