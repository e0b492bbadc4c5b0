// Package session holds short-lived sign-in state of the CLI: the bearer
// token and the pending-migration marker written just before sign-in.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/instantbranding/brandkit/internal/client/models"
	"github.com/instantbranding/brandkit/internal/client/repositories/metadata"
	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
)

const (
	keyPrefix = "session:"
	tokenKey  = keyPrefix + "token"
	markerKey = keyPrefix + "pending-migration"

	// MarkerTTL bounds how long a pending migration survives an abandoned
	// sign-in.
	MarkerTTL = 30 * time.Minute
)

// Marker carries the draft across the sign-in hand-off.
type Marker struct {
	Draft     *models.Draft `json:"draft"`
	CreatedAt time.Time     `json:"createdAt"`
}

type Store struct {
	repo metadata.Repository
	log  logging.Logger
	now  func() time.Time
}

func NewStore(repo metadata.Repository, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{repo: repo, log: log.With("module", "session"), now: time.Now}
}

// Token returns the stored bearer token, or "" when signed out.
func (s *Store) Token(ctx context.Context) string {
	raw, err := s.repo.Get(ctx, tokenKey)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "read token", "error", err)
		}
		return ""
	}
	return string(raw)
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return common.NewValidationError("token", "required")
	}
	if err := s.repo.Set(ctx, tokenKey, []byte(token)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// SetMarker records that draft should be migrated after the next sign-in.
func (s *Store) SetMarker(ctx context.Context, draft *models.Draft) error {
	raw, err := json.Marshal(Marker{Draft: draft, CreatedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}
	if err := s.repo.Set(ctx, markerKey, raw); err != nil {
		return fmt.Errorf("store marker: %w", err)
	}
	return nil
}

// Marker returns the pending-migration marker. Missing, unreadable and
// expired markers read as nil; the latter two are removed.
func (s *Store) Marker(ctx context.Context) *Marker {
	raw, err := s.repo.Get(ctx, markerKey)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "read marker", "error", err)
		}
		return nil
	}

	var m Marker
	if err := json.Unmarshal(raw, &m); err != nil {
		s.log.Warn(ctx, "discarding corrupt marker", "error", err)
		s.ClearMarker(ctx)
		return nil
	}
	if s.now().Sub(m.CreatedAt) > MarkerTTL {
		s.log.Info(ctx, "discarding expired marker", "created_at", m.CreatedAt)
		s.ClearMarker(ctx)
		return nil
	}
	return &m
}

func (s *Store) ClearMarker(ctx context.Context) {
	if err := s.repo.Delete(ctx, markerKey); err != nil {
		s.log.Warn(ctx, "clear marker", "error", err)
	}
}

// Clear drops every session key: token and marker.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.DeletePrefix(ctx, keyPrefix); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
