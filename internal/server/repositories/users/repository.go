package users

import (
	"context"

	"github.com/instantbranding/brandkit/internal/server/models"
)

type Repository interface {
	Ensure(ctx context.Context, id, email string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	CompleteOnboarding(ctx context.Context, id string) (*models.User, error)
	UpdatePlan(ctx context.Context, id, plan, subscriptionID, subscriptionStatus string) error
}
