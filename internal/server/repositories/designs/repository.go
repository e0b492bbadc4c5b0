package designs

import (
	"context"

	"github.com/instantbranding/brandkit/internal/server/models"
)

// Repository is the owner-scoped design store. brandID filters are optional
// ("" lists every design of the user).
type Repository interface {
	List(ctx context.Context, userID, brandID string) ([]*models.Design, error)
	Get(ctx context.Context, userID, id string) (*models.Design, error)
	Create(ctx context.Context, design *models.Design) (*models.Design, error)
	Update(ctx context.Context, patch *models.DesignPatch) (*models.Design, error)
	Delete(ctx context.Context, userID, id string) error
}
