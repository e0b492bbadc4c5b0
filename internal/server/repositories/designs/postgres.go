// Package designs provides the PostgreSQL-backed design repository.
package designs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/server/models"
)

const designColumns = `id, user_id, brand_id, asset_type, style_id, template_id, data, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDesign(row rowScanner) (*models.Design, error) {
	d := &models.Design{}
	err := row.Scan(&d.ID, &d.UserID, &d.BrandID, &d.AssetType, &d.StyleID, &d.TemplateID,
		(*[]byte)(&d.Data), &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List returns the user's designs newest first, optionally narrowed to one brand.
func (r *PostgresRepository) List(ctx context.Context, userID, brandID string) ([]*models.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs
		WHERE user_id = $1 AND ($2::uuid IS NULL OR brand_id = $2::uuid)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, dbx.NullString(brandID))
	if err != nil {
		return nil, fmt.Errorf("failed to select designs: %w", err)
	}
	defer rows.Close()

	result := []*models.Design{}
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE id = $1 AND user_id = $2`

	d, err := scanDesign(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// Create inserts a design owned by design.UserID. The brand ownership check
// is the caller's job and must run in the same transaction.
func (r *PostgresRepository) Create(ctx context.Context, design *models.Design) (*models.Design, error) {
	query := `
		INSERT INTO designs (user_id, brand_id, asset_type, style_id, template_id, data)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::jsonb, '{}'))
		RETURNING ` + designColumns

	d, err := scanDesign(r.db.QueryRowContext(ctx, query,
		design.UserID, design.BrandID, design.AssetType, design.StyleID, design.TemplateID,
		dbx.JSONArg(design.Data)))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// Update applies patch to the row matching (patch.ID, patch.UserID). Fields
// left unset in patch keep the stored values. Zero matching rows yields
// common.ErrNotFound.
func (r *PostgresRepository) Update(ctx context.Context, patch *models.DesignPatch) (*models.Design, error) {
	query := `
		UPDATE designs SET
			brand_id = COALESCE($3::uuid, brand_id),
			asset_type = COALESCE(NULLIF($4, ''), asset_type),
			style_id = COALESCE($5::int, style_id),
			template_id = COALESCE($6::int, template_id),
			data = COALESCE($7::jsonb, data),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + designColumns

	d, err := scanDesign(r.db.QueryRowContext(ctx, query,
		patch.ID, patch.UserID, dbx.NullString(patch.BrandID), patch.AssetType,
		patch.StyleID, patch.TemplateID, dbx.JSONArg(patch.Data)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM designs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res, common.ErrNotFound)
}
