package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/fieldmap"
	"github.com/instantbranding/brandkit/internal/server/models"
	"github.com/instantbranding/brandkit/internal/server/repositories/repomanager"
)

const (
	DraftVersion     = 1
	DefaultBrandName = "My Brand"
	defaultAssetType = "social-post"
)

// DraftImportService replays a signed-out draft into the caller's account.
type DraftImportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewDraftImportService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *DraftImportService {
	return &DraftImportService{db: db, repomanager: m, log: log.With("module", "drafts")}
}

// Import upserts the draft brand and inserts every draft design against it
// in one transaction. userID is trusted; authentication already happened.
func (s *DraftImportService) Import(ctx context.Context, userID string, draft *models.DraftImport) (*models.DraftImportResult, error) {
	if draft == nil {
		return nil, &common.ValidationError{Message: "draft is required"}
	}
	if draft.Version != DraftVersion {
		return nil, common.NewValidationError("version", fmt.Sprintf("unsupported draft version %d", draft.Version))
	}

	var b models.Brand
	if draft.Brand != nil {
		if err := decodePayload(fieldmap.Brands, draft.Brand, &b); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(b.Name) == "" && b.ID == "" {
		b.Name = DefaultBrandName
	}

	result := &models.DraftImportResult{Designs: []*models.Design{}}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		brand, action, err := upsertBrand(ctx, s.repomanager.Brands(tx), userID, &b)
		if err != nil {
			return err
		}
		result.Brand = brand
		result.Action = action

		designs := s.repomanager.Designs(tx)
		for _, dd := range draft.Designs {
			assetType := strings.TrimSpace(dd.AssetType)
			if assetType == "" {
				assetType = defaultAssetType
			}
			d, err := designs.Create(ctx, &models.Design{
				UserID:     userID,
				BrandID:    brand.ID,
				AssetType:  assetType,
				StyleID:    dd.StyleID,
				TemplateID: dd.TemplateID,
				Data:       dd.Data,
			})
			if err != nil {
				return fmt.Errorf("import design %s: %w", dd.TempID, err)
			}
			result.Designs = append(result.Designs, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "draft imported", "user_id", userID, "brand_id", result.Brand.ID,
		"action", result.Action, "designs", len(result.Designs))
	return result, nil
}
