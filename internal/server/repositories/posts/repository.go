package posts

import (
	"context"

	"github.com/instantbranding/brandkit/internal/server/models"
)

// Repository stores generated posts. Posts are never edited; they are only
// written by the copy generator and read back by their owner.
type Repository interface {
	List(ctx context.Context, userID, brandID string) ([]*models.Post, error)
	Get(ctx context.Context, userID, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
}
