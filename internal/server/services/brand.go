package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/fieldmap"
	"github.com/instantbranding/brandkit/internal/server/models"
	"github.com/instantbranding/brandkit/internal/server/repositories/brands"
	"github.com/instantbranding/brandkit/internal/server/repositories/repomanager"
)

type BrandService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewBrandService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *BrandService {
	return &BrandService{db: db, repomanager: m, log: log.With("module", "brands")}
}

func (s *BrandService) List(ctx context.Context, userID string) ([]*models.Brand, error) {
	return s.repomanager.Brands(s.db).List(ctx, userID)
}

// Get returns common.ErrNotFound for missing brands and for brands of other
// users alike.
func (s *BrandService) Get(ctx context.Context, userID, id string) (*models.Brand, error) {
	if !isUUID(id) {
		return nil, common.ErrNotFound
	}
	return s.repomanager.Brands(s.db).Get(ctx, userID, id)
}

// Upsert creates a brand when the payload has no id and updates the
// caller's brand otherwise. Any user id in the payload is ignored.
func (s *BrandService) Upsert(ctx context.Context, userID string, payload map[string]any) (*models.Brand, models.UpsertAction, error) {
	var b models.Brand
	if err := decodePayload(fieldmap.Brands, payload, &b); err != nil {
		return nil, "", err
	}
	return upsertBrand(ctx, s.repomanager.Brands(s.db), userID, &b)
}

// Update applies a partial payload to brand id.
func (s *BrandService) Update(ctx context.Context, userID, id string, payload map[string]any) (*models.Brand, error) {
	var b models.Brand
	if err := decodePayload(fieldmap.Brands, payload, &b); err != nil {
		return nil, err
	}
	b.ID = id
	if !isUUID(b.ID) {
		return nil, common.ErrNotFound
	}
	b.UserID = userID
	b.Name = strings.TrimSpace(b.Name)
	return s.repomanager.Brands(s.db).Update(ctx, &b)
}

func (s *BrandService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return common.NewValidationError("id", "is required")
	}
	if !isUUID(id) {
		return common.ErrNotFound
	}
	if err := s.repomanager.Brands(s.db).Delete(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info(ctx, "brand deleted", "user_id", userID, "brand_id", id)
	return nil
}

func upsertBrand(ctx context.Context, repo brands.Repository, userID string, b *models.Brand) (*models.Brand, models.UpsertAction, error) {
	b.UserID = userID
	b.Name = strings.TrimSpace(b.Name)

	if b.ID != "" {
		if !isUUID(b.ID) {
			return nil, "", common.ErrNotFound
		}
		out, err := repo.Update(ctx, b)
		if err != nil {
			return nil, "", err
		}
		return out, models.ActionUpdated, nil
	}

	if b.Name == "" {
		return nil, "", common.NewValidationError("name", "is required")
	}
	out, err := repo.Create(ctx, b)
	if err != nil {
		return nil, "", fmt.Errorf("create brand: %w", err)
	}
	return out, models.ActionCreated, nil
}
