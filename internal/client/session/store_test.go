package session

import (
	"context"
	"testing"
	"time"

	"github.com/instantbranding/brandkit/internal/client/localdb"
	"github.com/instantbranding/brandkit/internal/client/models"
	"github.com/instantbranding/brandkit/internal/client/repositories/metadata"
	"github.com/instantbranding/brandkit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *metadata.SQLiteRepository) {
	t.Helper()
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := metadata.NewSQLiteRepository(db)
	return NewStore(repo, nil), repo
}

func TestToken(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	assert.Equal(t, "", s.Token(ctx))

	require.NoError(t, s.SetToken(ctx, "tok-1"))
	assert.Equal(t, "tok-1", s.Token(ctx))

	err := s.SetToken(ctx, "")
	assert.True(t, common.IsValidation(err))
	assert.Equal(t, "tok-1", s.Token(ctx))
}

func TestMarker_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	assert.Nil(t, s.Marker(ctx))

	d := models.NewDraft()
	d.Brand["name"] = "Acme"
	require.NoError(t, s.SetMarker(ctx, d))

	m := s.Marker(ctx)
	require.NotNil(t, m)
	require.NotNil(t, m.Draft)
	assert.Equal(t, "Acme", m.Draft.Brand["name"])

	s.ClearMarker(ctx)
	assert.Nil(t, s.Marker(ctx))
}

func TestMarker_Expires(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }
	require.NoError(t, s.SetMarker(ctx, models.NewDraft()))

	s.now = func() time.Time { return start.Add(MarkerTTL) }
	assert.NotNil(t, s.Marker(ctx))

	s.now = func() time.Time { return start.Add(MarkerTTL + time.Second) }
	assert.Nil(t, s.Marker(ctx))

	_, err := repo.Get(ctx, markerKey)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMarker_CorruptIsRemoved(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, markerKey, []byte("garbage")))
	assert.Nil(t, s.Marker(ctx))

	_, err := repo.Get(ctx, markerKey)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestClear_KeepsOtherKeys(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetToken(ctx, "tok"))
	require.NoError(t, s.SetMarker(ctx, models.NewDraft()))
	require.NoError(t, repo.Set(ctx, "instant-branding-draft", []byte("{}")))

	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, "", s.Token(ctx))
	assert.Nil(t, s.Marker(ctx))

	v, err := repo.Get(ctx, "instant-branding-draft")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}
