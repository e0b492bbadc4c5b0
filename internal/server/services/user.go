package services

import (
	"context"
	"database/sql"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/server/models"
	"github.com/instantbranding/brandkit/internal/server/repositories/repomanager"
)

// UserService keeps the local user row in step with the auth provider.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// Ensure creates the user on the first authenticated request. The id comes
// from verified token claims and must be a uuid.
func (s *UserService) Ensure(ctx context.Context, id, email string) (*models.User, error) {
	if !isUUID(id) {
		return nil, common.ErrInvalidToken
	}
	return s.repomanager.Users(s.db).Ensure(ctx, id, email)
}

func (s *UserService) Me(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).Get(ctx, id)
}

// CompleteOnboarding is idempotent.
func (s *UserService) CompleteOnboarding(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).CompleteOnboarding(ctx, id)
}
