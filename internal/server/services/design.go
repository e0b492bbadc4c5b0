package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/fieldmap"
	"github.com/instantbranding/brandkit/internal/server/models"
	"github.com/instantbranding/brandkit/internal/server/repositories/repomanager"
)

type DesignService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewDesignService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *DesignService {
	return &DesignService{db: db, repomanager: m, log: log.With("module", "designs")}
}

// List returns the user's designs, optionally only those of brandID.
func (s *DesignService) List(ctx context.Context, userID, brandID string) ([]*models.Design, error) {
	if brandID != "" && !isUUID(brandID) {
		return nil, common.NewValidationError("brand_id", "must be a uuid")
	}
	return s.repomanager.Designs(s.db).List(ctx, userID, brandID)
}

func (s *DesignService) Get(ctx context.Context, userID, id string) (*models.Design, error) {
	if !isUUID(id) {
		return nil, common.ErrNotFound
	}
	return s.repomanager.Designs(s.db).Get(ctx, userID, id)
}

// Upsert creates or updates a design. A referenced brand must belong to
// the caller; the check and the write share one transaction.
func (s *DesignService) Upsert(ctx context.Context, userID string, payload map[string]any) (*models.Design, models.UpsertAction, error) {
	var p models.DesignPatch
	if err := decodePayload(fieldmap.Designs, payload, &p); err != nil {
		return nil, "", err
	}
	p.UserID = userID
	p.AssetType = strings.TrimSpace(p.AssetType)

	if p.ID == "" {
		if p.BrandID == "" {
			return nil, "", common.NewValidationError("brand_id", "is required")
		}
		if p.AssetType == "" {
			return nil, "", common.NewValidationError("asset_type", "is required")
		}
	} else if !isUUID(p.ID) {
		return nil, "", common.ErrNotFound
	}

	var out *models.Design
	action := models.ActionCreated
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if p.BrandID != "" {
			if !isUUID(p.BrandID) {
				return common.ErrRelatedNotFound
			}
			ok, err := s.repomanager.Brands(tx).Exists(ctx, userID, p.BrandID)
			if err != nil {
				return err
			}
			if !ok {
				return common.ErrRelatedNotFound
			}
		}

		repo := s.repomanager.Designs(tx)
		var err error
		if p.ID == "" {
			out, err = repo.Create(ctx, newDesign(&p))
			return err
		}
		action = models.ActionUpdated
		out, err = repo.Update(ctx, &p)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return out, action, nil
}

func newDesign(p *models.DesignPatch) *models.Design {
	d := &models.Design{
		UserID:    p.UserID,
		BrandID:   p.BrandID,
		AssetType: p.AssetType,
		Data:      p.Data,
	}
	if p.StyleID != nil {
		d.StyleID = *p.StyleID
	}
	if p.TemplateID != nil {
		d.TemplateID = *p.TemplateID
	}
	return d
}

func (s *DesignService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return common.NewValidationError("id", "is required")
	}
	if !isUUID(id) {
		return common.ErrNotFound
	}
	return s.repomanager.Designs(s.db).Delete(ctx, userID, id)
}
