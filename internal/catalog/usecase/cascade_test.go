package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/catalog/repository"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaded(t *testing.T) (*catalogUseCase, *memory.Store, *model.Catalog) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, rowstore.Init(context.Background(), store))
	seed(t, store)
	uc := &catalogUseCase{repo: repository.NewRowRepository(store), logger: logger.NewNop()}
	snap, err := uc.LoadAll(context.Background())
	require.NoError(t, err)
	return uc, store, snap
}

func storedIDs(t *testing.T, store rowstore.Store, c rowstore.Collection) []string {
	t.Helper()
	tbl, err := store.Read(context.Background(), c)
	require.NoError(t, err)
	out := []string{}
	for _, r := range tbl.Rows {
		out = append(out, r.Values[0])
	}
	return out
}

func productIDsOf(ps []model.Product) []string {
	out := []string{}
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestDeleteCategory_Cascades(t *testing.T) {
	uc, store, snap := loaded(t)

	res, err := uc.DeleteCategory(context.Background(), snap, "c1")
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p3"}, res.RemovedProducts)
	assert.Empty(t, res.CascadeErrors)
	assert.False(t, res.Stale)

	assert.Equal(t, []string{"c2"}, storedIDs(t, store, rowstore.Categories))
	assert.Equal(t, []string{"p2", "p4"}, storedIDs(t, store, rowstore.Products))
	assert.Equal(t, []string{"p2", "p4"}, productIDsOf(snap.Products))

	// indices in the snapshot are fresh after the cascade
	require.Len(t, snap.Categories, 1)
	assert.Equal(t, 2, snap.Categories[0].RowIndex)
	assert.Equal(t, 3, snap.Products[1].RowIndex)
}

func TestDeleteType_Cascades(t *testing.T) {
	uc, store, snap := loaded(t)

	res, err := uc.DeleteType(context.Background(), snap, "t2")
	require.NoError(t, err)

	assert.Equal(t, []string{"ph3"}, res.RemovedPhones)
	assert.Equal(t, []string{"p3", "p4"}, res.RemovedProducts)

	assert.Equal(t, []string{"t1"}, storedIDs(t, store, rowstore.Types))
	assert.Equal(t, []string{"ph1", "ph2"}, storedIDs(t, store, rowstore.Phones))
	assert.Equal(t, []string{"p1", "p2"}, storedIDs(t, store, rowstore.Products))

	for _, ph := range snap.Phones {
		assert.NotEqual(t, "t2", ph.TypeID)
	}
	for _, p := range snap.Products {
		assert.NotEqual(t, "t2", p.TypeID)
	}
}

func TestDeleteType_WithoutDependents(t *testing.T) {
	uc, store, snap := loaded(t)
	require.NoError(t, store.Append(context.Background(), rowstore.Types, []string{"t3", "Pixel"}))
	snap.Types = append(snap.Types, model.ProductType{ID: "t3", Name: "Pixel"})

	res, err := uc.DeleteType(context.Background(), snap, "t3")
	require.NoError(t, err)
	assert.Empty(t, res.RemovedPhones)
	assert.Empty(t, res.RemovedProducts)
	assert.Len(t, snap.Products, 4)
	assert.Len(t, snap.Types, 2)
}

func TestDeletePhone_Cascades(t *testing.T) {
	uc, store, snap := loaded(t)

	res, err := uc.DeletePhone(context.Background(), snap, "ph3")
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p4"}, res.RemovedProducts)
	assert.Equal(t, []string{"ph1", "ph2"}, storedIDs(t, store, rowstore.Phones))
	assert.Equal(t, []string{"p1", "p2"}, productIDsOf(snap.Products))
}

func TestDelete_UnknownID(t *testing.T) {
	uc, _, snap := loaded(t)

	_, err := uc.DeleteCategory(context.Background(), snap, "nope")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = uc.DeletePhone(context.Background(), snap, "nope")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDelete_PrimaryFailureAbortsCascade(t *testing.T) {
	uc, store, snap := loaded(t)
	uc.repo = &failingRepo{
		Repository: uc.repo,
		deleteErrs: map[string]error{"c1": errors.New("503 from store")},
	}

	_, err := uc.DeleteCategory(context.Background(), snap, "c1")
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, storedIDs(t, store, rowstore.Products))
	assert.Len(t, snap.Categories, 2)
	assert.Len(t, snap.Products, 4)
}

func TestDelete_DependentFailureIsReported(t *testing.T) {
	uc, store, snap := loaded(t)
	uc.repo = &failingRepo{
		Repository: uc.repo,
		deleteErrs: map[string]error{"p3": errors.New("timeout")},
	}

	res, err := uc.DeleteCategory(context.Background(), snap, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, res.CascadeErrors)

	// p3 survives in the store but not in the snapshot
	assert.Equal(t, []string{"p2", "p3", "p4"}, storedIDs(t, store, rowstore.Products))
	assert.Equal(t, []string{"p2", "p4"}, productIDsOf(snap.Products))
}

func TestDelete_RefreshFailureMarksStale(t *testing.T) {
	uc, _, snap := loaded(t)
	uc.repo = &failingRepo{Repository: uc.repo, listTypesErr: errors.New("timeout")}

	res, err := uc.DeleteType(context.Background(), snap, "t1")
	require.NoError(t, err)
	assert.True(t, res.Stale)

	require.Len(t, snap.Types, 1)
	assert.Equal(t, "t2", snap.Types[0].ID)
	assert.Equal(t, []string{"p3", "p4"}, productIDsOf(snap.Products))
}
