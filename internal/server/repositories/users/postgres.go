// Package users provides the PostgreSQL-backed user repository. User rows
// mirror identities owned by the external auth provider.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/server/models"
)

const userColumns = `id, email, plan, subscription_id, subscription_status, onboarding_status, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Plan, &u.SubscriptionID, &u.SubscriptionStatus,
		&u.OnboardingStatus, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Ensure inserts the user on first sight and returns the stored row. A
// non-empty email refreshes the stored one.
func (r *PostgresRepository) Ensure(ctx context.Context, id, email string) (*models.User, error) {
	query := `
		INSERT INTO users (id, email) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			email = CASE WHEN EXCLUDED.email <> '' THEN EXCLUDED.email ELSE users.email END
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, email))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// CompleteOnboarding moves the user to COMPLETE. Calling it again is a no-op;
// there is no way back to PENDING.
func (r *PostgresRepository) CompleteOnboarding(ctx context.Context, id string) (*models.User, error) {
	query := `
		UPDATE users SET onboarding_status = 'COMPLETE', updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) UpdatePlan(ctx context.Context, id, plan, subscriptionID, subscriptionStatus string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET plan = $2, subscription_id = $3, subscription_status = $4, updated_at = now()
		WHERE id = $1`, id, plan, subscriptionID, subscriptionStatus)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res, common.ErrNotFound)
}
