// Package billing provides the PostgreSQL ledger of processed billing
// webhook events.
package billing

import (
	"context"
	"fmt"

	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Record must run in the same transaction as the plan change it guards, so
// a rollback forgets the event as well.
func (r *PostgresRepository) Record(ctx context.Context, event *models.BillingEvent) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO billing_events (event_id, event_type, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING`,
		event.EventID, event.EventType, dbx.NullString(event.UserID))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}
