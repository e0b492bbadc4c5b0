package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/models"
)

func seedBrand(t *testing.T, st *memStore, userID, name string) *models.Brand {
	t.Helper()
	b, err := memBrands{st}.Create(context.Background(), &models.Brand{UserID: userID, Name: name})
	require.NoError(t, err)
	return b
}

func TestDesignUpsert_OwnBrand(t *testing.T) {
	db, mock := newTxMock(t)
	st := newMemStore()
	s := NewDesignService(db, memRepoManager{st}, logging.Discard())
	brand := seedBrand(t, st, alice, "Acme")

	mock.ExpectBegin()
	mock.ExpectCommit()
	d, action, err := s.Upsert(context.Background(), alice, map[string]any{
		"brand_id":    brand.ID,
		"asset_type":  "social-post",
		"style_id":    2,
		"template_id": 7,
		"data":        map[string]any{"headline": "Hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionCreated, action)
	assert.Equal(t, brand.ID, d.BrandID)
	assert.Equal(t, 7, d.TemplateID)
	assert.Equal(t, 2, d.StyleID)

	mock.ExpectBegin()
	mock.ExpectCommit()
	d2, action, err := s.Upsert(context.Background(), alice, map[string]any{"id": d.ID, "templateId": 9})
	require.NoError(t, err)
	assert.Equal(t, models.ActionUpdated, action)
	assert.Equal(t, 9, d2.TemplateID)
	assert.Equal(t, 2, d2.StyleID)
	assert.Equal(t, "social-post", d2.AssetType)
}

func TestDesignUpsert_DataOnlyKeepsStyleAndTemplate(t *testing.T) {
	db, mock := newTxMock(t)
	st := newMemStore()
	s := NewDesignService(db, memRepoManager{st}, logging.Discard())
	brand := seedBrand(t, st, alice, "Acme")

	mock.ExpectBegin()
	mock.ExpectCommit()
	d, _, err := s.Upsert(context.Background(), alice, map[string]any{
		"brand_id":    brand.ID,
		"asset_type":  "logo",
		"style_id":    2,
		"template_id": 7,
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	got, action, err := s.Upsert(context.Background(), alice, map[string]any{
		"id":   d.ID,
		"data": map[string]any{"headline": "Updated"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionUpdated, action)
	assert.Equal(t, 2, got.StyleID)
	assert.Equal(t, 7, got.TemplateID)
	assert.JSONEq(t, `{"headline":"Updated"}`, string(got.Data))
}

func TestDesignUpsert_ForeignBrandRollsBack(t *testing.T) {
	db, mock := newTxMock(t)
	st := newMemStore()
	s := NewDesignService(db, memRepoManager{st}, logging.Discard())
	bobs := seedBrand(t, st, bob, "Bob Co")

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, _, err := s.Upsert(context.Background(), alice, map[string]any{
		"brand_id":   bobs.ID,
		"asset_type": "social-post",
	})
	assert.ErrorIs(t, err, common.ErrRelatedNotFound)
	assert.Empty(t, st.designs)
}

func TestDesignUpsert_Validation(t *testing.T) {
	db, _ := newTxMock(t)
	s := NewDesignService(db, memRepoManager{newMemStore()}, logging.Discard())

	_, _, err := s.Upsert(context.Background(), alice, map[string]any{"asset_type": "social-post"})
	assert.True(t, common.IsValidation(err))

	_, _, err = s.Upsert(context.Background(), alice, map[string]any{"brand_id": alice})
	assert.True(t, common.IsValidation(err))

	_, _, err = s.Upsert(context.Background(), alice, map[string]any{"id": "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDesign_ListFilterAndDelete(t *testing.T) {
	db, _ := newTxMock(t)
	st := newMemStore()
	s := NewDesignService(db, memRepoManager{st}, logging.Discard())
	b1 := seedBrand(t, st, alice, "One")
	b2 := seedBrand(t, st, alice, "Two")

	ctx := context.Background()
	d1, err := memDesigns{st}.Create(ctx, &models.Design{UserID: alice, BrandID: b1.ID, AssetType: "a"})
	require.NoError(t, err)
	_, err = memDesigns{st}.Create(ctx, &models.Design{UserID: alice, BrandID: b2.ID, AssetType: "b"})
	require.NoError(t, err)

	all, err := s.List(ctx, alice, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := s.List(ctx, alice, b1.ID)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, d1.ID, only[0].ID)

	_, err = s.List(ctx, alice, "nope")
	assert.True(t, common.IsValidation(err))

	assert.ErrorIs(t, s.Delete(ctx, bob, d1.ID), common.ErrNotFound)
	require.NoError(t, s.Delete(ctx, alice, d1.ID))
	_, err = s.Get(ctx, alice, d1.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
