package brands

import (
	"context"

	"github.com/instantbranding/brandkit/internal/server/models"
)

// Repository is the owner-scoped brand store. Every method filters by the
// owning user id; a brand of another user behaves as if it did not exist.
type Repository interface {
	List(ctx context.Context, userID string) ([]*models.Brand, error)
	Get(ctx context.Context, userID, id string) (*models.Brand, error)
	Exists(ctx context.Context, userID, id string) (bool, error)
	Create(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	Update(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	Delete(ctx context.Context, userID, id string) error
}
