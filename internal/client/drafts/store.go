// Package drafts keeps the signed-out visitor's brand and design edits in a
// single slot of the local key/value store.
//
// Reads never fail: a missing, corrupt or foreign-version slot reads as "no
// draft". Writes report storage errors, except Clear which only logs them.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/instantbranding/brandkit/internal/client/models"
	"github.com/instantbranding/brandkit/internal/client/repositories/metadata"
	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
)

// StorageKey is the slot the draft lives in. It must stay stable within a
// draft version so pending migrations can find it.
const StorageKey = "instant-branding-draft"

type Store struct {
	repo metadata.Repository
	log  logging.Logger
	now  func() time.Time
	seq  atomic.Uint64
}

func NewStore(repo metadata.Repository, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{repo: repo, log: log.With("module", "drafts"), now: time.Now}
}

// Read returns the stored draft, or nil when there is none usable.
func (s *Store) Read(ctx context.Context) *models.Draft {
	raw, err := s.repo.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "read draft", "error", err)
		}
		return nil
	}

	var d models.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		s.log.Warn(ctx, "discarding corrupt draft", "error", err)
		return nil
	}
	if d.Version != models.DraftVersion {
		s.log.Info(ctx, "ignoring draft with unknown version", "version", d.Version)
		return nil
	}

	normalize(&d)
	return &d
}

// Write replaces the slot with d, stamping the current version.
func (s *Store) Write(ctx context.Context, d *models.Draft) error {
	if d == nil {
		return fmt.Errorf("write draft: nil draft")
	}
	d.Version = models.DraftVersion
	normalize(d)

	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.repo.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// SaveBrand merges delta into the brand section and into the recorded
// modifications. Designs are left untouched.
func (s *Store) SaveBrand(ctx context.Context, delta map[string]any) (*models.Draft, error) {
	d := s.readOrNew(ctx)

	maps.Copy(d.Brand, delta)
	maps.Copy(d.Modifications.Brand, delta)
	d.Modifications.LastModified = s.now().UnixMilli()

	if err := s.Write(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SaveDesign appends design with a fresh temporary id and timestamp.
func (s *Store) SaveDesign(ctx context.Context, design models.DraftDesign) (models.DraftDesign, error) {
	d := s.readOrNew(ctx)

	now := s.now()
	design.TempID = fmt.Sprintf("draft-%d-%d", now.UnixNano(), s.seq.Add(1))
	design.Timestamp = now.UnixMilli()
	d.Designs = append(d.Designs, design)

	if err := s.Write(ctx, d); err != nil {
		return models.DraftDesign{}, err
	}
	return design, nil
}

// RemoveDesign drops the design with the given temporary id. Unknown ids
// leave the draft as it was.
func (s *Store) RemoveDesign(ctx context.Context, tempID string) error {
	d := s.Read(ctx)
	if d == nil {
		return nil
	}

	d.Designs = slices.DeleteFunc(d.Designs, func(x models.DraftDesign) bool {
		return x.TempID == tempID
	})
	return s.Write(ctx, d)
}

// Clear deletes the slot.
func (s *Store) Clear(ctx context.Context) {
	if err := s.repo.Delete(ctx, StorageKey); err != nil {
		s.log.Warn(ctx, "clear draft", "error", err)
	}
}

func (s *Store) HasData(ctx context.Context) bool {
	return s.Read(ctx).HasData()
}

func (s *Store) readOrNew(ctx context.Context) *models.Draft {
	if d := s.Read(ctx); d != nil {
		return d
	}
	return models.NewDraft()
}

func normalize(d *models.Draft) {
	if d.Brand == nil {
		d.Brand = map[string]any{}
	}
	if d.Designs == nil {
		d.Designs = []models.DraftDesign{}
	}
	if d.Modifications.Brand == nil {
		d.Modifications.Brand = map[string]any{}
	}
}
