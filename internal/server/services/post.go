package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/models"
	"github.com/instantbranding/brandkit/internal/server/repositories/repomanager"
)

// CopyGenerator expands a hook into post text.
type CopyGenerator interface {
	GenerateFromHook(ctx context.Context, hook string) (string, error)
}

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	generator   CopyGenerator
	log         logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, g CopyGenerator, log logging.Logger) *PostService {
	return &PostService{db: db, repomanager: m, generator: g, log: log.With("module", "posts")}
}

func (s *PostService) List(ctx context.Context, userID, brandID string) ([]*models.Post, error) {
	if brandID != "" && !isUUID(brandID) {
		return nil, common.NewValidationError("brand_id", "must be a uuid")
	}
	return s.repomanager.Posts(s.db).List(ctx, userID, brandID)
}

func (s *PostService) Get(ctx context.Context, userID, id string) (*models.Post, error) {
	if !isUUID(id) {
		return nil, common.ErrNotFound
	}
	return s.repomanager.Posts(s.db).Get(ctx, userID, id)
}

// Generate writes a post for one of the caller's brands. The upstream call
// happens outside any transaction; nothing is stored when it fails.
func (s *PostService) Generate(ctx context.Context, userID, brandID, hook string) (*models.Post, error) {
	hook = strings.TrimSpace(hook)
	if brandID == "" {
		return nil, common.NewValidationError("brand_id", "is required")
	}
	if hook == "" {
		return nil, common.NewValidationError("hook", "is required")
	}
	if !isUUID(brandID) {
		return nil, common.ErrRelatedNotFound
	}

	ok, err := s.repomanager.Brands(s.db).Exists(ctx, userID, brandID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrRelatedNotFound
	}

	content, err := s.generator.GenerateFromHook(ctx, hook)
	if err != nil {
		s.log.Warn(ctx, "post generation failed", "user_id", userID, "brand_id", brandID, "error", err)
		return nil, err
	}

	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{
		UserID:  userID,
		BrandID: brandID,
		Content: content,
		Hook:    hook,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "post generated", "user_id", userID, "post_id", post.ID)
	return post, nil
}
