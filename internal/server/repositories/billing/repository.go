package billing

import (
	"context"

	"github.com/instantbranding/brandkit/internal/server/models"
)

// Repository is the idempotency ledger of processed webhook events.
type Repository interface {
	// Record stores the event and reports whether it was new. A false result
	// means the event id was already processed.
	Record(ctx context.Context, event *models.BillingEvent) (bool, error)
}
