package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/cache"
	cartusecase "github.com/fekuna/omnipos-warehouse/internal/cart/usecase"
	"github.com/fekuna/omnipos-warehouse/internal/cart/publisher"
	catalogrepo "github.com/fekuna/omnipos-warehouse/internal/catalog/repository"
	catalogusecase "github.com/fekuna/omnipos-warehouse/internal/catalog/usecase"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore/memory"
	"github.com/fekuna/omnipos-warehouse/internal/view"
	"github.com/fekuna/omnipos-warehouse/internal/workspace"
	"github.com/fekuna/omnipos-warehouse/internal/workspace/dto"
	"github.com/fekuna/omnipos-warehouse/internal/workspace/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sid = "sess-1"

// toggleStore fails reads while failReads is set.
type toggleStore struct {
	rowstore.Store
	failReads atomic.Bool
}

func (s *toggleStore) Read(ctx context.Context, c rowstore.Collection) (*rowstore.Table, error) {
	if s.failReads.Load() {
		return nil, errors.New("spreadsheet unavailable")
	}
	return s.Store.Read(ctx, c)
}

type fixture struct {
	uc    workspace.UseCase
	store *toggleStore
	cache *cache.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := memory.NewStore()
	require.NoError(t, rowstore.Init(ctx, mem))

	rows := map[rowstore.Collection][][]string{
		rowstore.Categories: {{"c1", "Case"}, {"c2", "Charger"}},
		rowstore.Types:      {{"t1", "iPhone"}, {"t2", "Galaxy"}},
		rowstore.Phones:     {{"ph1", "t1", "iPhone 15"}, {"ph2", "t2", "S24"}},
		rowstore.Products: {
			{"p1", "Clear case", "c1", "t1", "ph1", "Clear", "10", ""},
			{"p2", "Wall charger", "c2", "t2", "ph2", "White", "2", ""},
			{"p3", "Leather case", "c1", "t2", "ph2", "Brown", "0", ""},
		},
	}
	for _, c := range rowstore.Collections {
		for _, r := range rows[c] {
			require.NoError(t, mem.Append(ctx, c, r))
		}
	}

	store := &toggleStore{Store: mem}
	log := logger.NewNop()
	repo := catalogrepo.NewRowRepository(store)
	mc := cache.NewMemoryStore()

	uc := NewWorkspaceUseCase(
		repository.NewCacheRepository(mc, time.Hour, cache.LockOptions{TTL: time.Minute, Retries: 2, RetryWait: time.Millisecond}),
		catalogusecase.NewCatalogUseCase(repo, log),
		cartusecase.NewCheckoutEngine(repo, publisher.Noop{}, log, 4),
		log,
	)
	return &fixture{uc: uc, store: store, cache: mc}
}

func (f *fixture) load(t *testing.T) *dto.WorkspaceView {
	t.Helper()
	v, err := f.uc.Load(context.Background(), sid)
	require.NoError(t, err)
	return v
}

func strPtr(s string) *string { return &s }

func TestWorkflowRequiresLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.uc.View(ctx, sid)
	require.NoError(t, err)
	assert.False(t, v.Loaded)
	assert.Empty(t, v.Products)

	_, err = f.uc.AddToCart(ctx, sid, "p1")
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestLoad(t *testing.T) {
	f := newFixture(t)
	v := f.load(t)

	assert.True(t, v.Loaded)
	assert.Len(t, v.Categories, 2)
	assert.Len(t, v.Products, 3)
	assert.Equal(t, []string{"Clear", "White", "Brown"}, v.Colors)
	assert.Len(t, v.FilterPhones, 2)
}

func TestLoadFailureBlocksWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	f.store.failReads.Store(true)
	_, err := f.uc.Load(ctx, sid)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	v, err := f.uc.View(ctx, sid)
	require.NoError(t, err)
	assert.False(t, v.Loaded)
	assert.NotEmpty(t, v.LoadError)
	assert.Empty(t, v.Products, "no partial catalog")

	_, err = f.uc.SetFilters(ctx, sid, &dto.FilterPatch{Color: strPtr("Clear")})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindUnavailable, e.Kind)
	assert.Equal(t, "CatalogUnavailable", e.MessageID)

	f.store.failReads.Store(false)
	v = f.load(t)
	assert.True(t, v.Loaded)
	assert.Empty(t, v.LoadError)
}

func TestFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	v, err := f.uc.SetFilters(ctx, sid, &dto.FilterPatch{TypeID: strPtr("t2"), PhoneID: strPtr("ph2")})
	require.NoError(t, err)
	assert.Len(t, v.Products, 2)
	require.Len(t, v.FilterPhones, 1)
	assert.Equal(t, "ph2", v.FilterPhones[0].ID)

	v, err = f.uc.SetFilters(ctx, sid, &dto.FilterPatch{TypeID: strPtr("t1")})
	require.NoError(t, err)
	assert.Empty(t, v.Filters.PhoneID)
	assert.Len(t, v.Products, 1)

	v, err = f.uc.SetFilters(ctx, sid, &dto.FilterPatch{Color: strPtr("Brown")})
	require.NoError(t, err)
	assert.Empty(t, v.Products)

	v, err = f.uc.ResetFilters(ctx, sid)
	require.NoError(t, err)
	assert.Len(t, v.Products, 3)
}

func TestProductForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	_, err := f.uc.UpdateForm(ctx, sid, dto.FormPatch{"rowIndex": "2"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	v, err := f.uc.UpdateForm(ctx, sid, dto.FormPatch{
		view.FieldName:       "Magsafe case",
		view.FieldCategoryID: "c1",
		view.FieldTypeID:     "t1",
		view.FieldPhoneID:    "ph2",
		view.FieldColor:      "Blue",
		view.FieldStock:      "4",
	})
	require.NoError(t, err)
	assert.Equal(t, "ph2", v.Form.PhoneID)
	require.Len(t, v.FormPhones, 1)

	_, err = f.uc.SubmitProductForm(ctx, sid)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "PhoneTypeMismatch", e.MessageID)

	_, err = f.uc.UpdateForm(ctx, sid, dto.FormPatch{view.FieldPhoneID: "ph1", view.FieldStock: "-1"})
	require.NoError(t, err)
	_, err = f.uc.SubmitProductForm(ctx, sid)
	e, _ = apperr.As(err)
	require.NotNil(t, e)
	assert.Equal(t, "StockInvalid", e.MessageID)

	_, err = f.uc.UpdateForm(ctx, sid, dto.FormPatch{view.FieldStock: "4"})
	require.NoError(t, err)
	p, err := f.uc.SubmitProductForm(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Stock)

	v, err = f.uc.View(ctx, sid)
	require.NoError(t, err)
	assert.Len(t, v.Products, 4)
	assert.Equal(t, view.ProductForm{}, v.Form)

	tbl, err := f.store.Read(ctx, rowstore.Products)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 4)
}

func TestProductForm_MissingFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	_, err := f.uc.UpdateForm(ctx, sid, dto.FormPatch{view.FieldName: "x"})
	require.NoError(t, err)
	_, err = f.uc.SubmitProductForm(ctx, sid)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "FieldRequired", e.MessageID)
	assert.Equal(t, "categoryId", e.Data["Field"])
}

func TestAddReferenceData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	c, err := f.uc.AddCategory(ctx, sid, "  Cable ")
	require.NoError(t, err)
	assert.Equal(t, "Cable", c.Name)

	_, err = f.uc.AddType(ctx, sid, " ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.uc.AddPhone(ctx, sid, &dto.AddPhoneInput{Name: "Pixel 9", TypeID: "t9"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	ph, err := f.uc.AddPhone(ctx, sid, &dto.AddPhoneInput{Name: "S25", TypeID: "t2"})
	require.NoError(t, err)

	v, err := f.uc.View(ctx, sid)
	require.NoError(t, err)
	assert.Len(t, v.Categories, 3)
	assert.Equal(t, ph.ID, v.Phones[2].ID)
}

func TestDeleteType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	_, err := f.uc.SetFilters(ctx, sid, &dto.FilterPatch{TypeID: strPtr("t2"), PhoneID: strPtr("ph2")})
	require.NoError(t, err)
	_, err = f.uc.UpdateForm(ctx, sid, dto.FormPatch{view.FieldTypeID: "t2", view.FieldPhoneID: "ph2"})
	require.NoError(t, err)

	_, err = f.uc.DeleteType(ctx, sid, "t2", false)
	assert.True(t, apperr.Is(err, apperr.KindConfirmation))

	res, err := f.uc.DeleteType(ctx, sid, "t2", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"ph2"}, res.RemovedPhones)
	assert.Equal(t, []string{"p2", "p3"}, res.RemovedProducts)

	v, err := f.uc.View(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, v.Filters.TypeID)
	assert.Empty(t, v.Filters.PhoneID)
	assert.Empty(t, v.Form.TypeID)
	assert.Empty(t, v.Form.PhoneID)
	assert.Len(t, v.Types, 1)
	assert.Len(t, v.Phones, 1)
	require.Len(t, v.Products, 1)
	assert.Equal(t, "p1", v.Products[0].ID)

	_, err = f.uc.DeleteType(ctx, sid, "t2", true)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteCategoryAndPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	_, err := f.uc.SetFilters(ctx, sid, &dto.FilterPatch{CategoryID: strPtr("c1")})
	require.NoError(t, err)

	res, err := f.uc.DeleteCategory(ctx, sid, "c1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, res.RemovedProducts)

	res, err = f.uc.DeletePhone(ctx, sid, "ph2", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, res.RemovedProducts)

	v, err := f.uc.View(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, v.Filters.CategoryID)
	assert.Empty(t, v.Products)
	assert.Equal(t, 0, v.Total)
}

func TestCartAndCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	for i := 0; i < 3; i++ {
		_, err := f.uc.AddToCart(ctx, sid, "p2")
		require.NoError(t, err)
	}
	lines, err := f.uc.AddToCart(ctx, sid, "p1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity, "clamped to stock")

	// out of stock is ignored
	lines, err = f.uc.AddToCart(ctx, sid, "p3")
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	_, err = f.uc.AddToCart(ctx, sid, "nope")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	lines, err = f.uc.UpdateCartQuantity(ctx, sid, "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, lines[1].Quantity)

	res, err := f.uc.Checkout(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)

	v, err := f.uc.View(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, v.Cart)
	stock := map[string]int{}
	for _, p := range v.Products {
		stock[p.ID] = p.Stock
	}
	assert.Equal(t, map[string]int{"p1": 7, "p2": 0, "p3": 0}, stock)

	_, err = f.uc.Checkout(ctx, sid)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateCartQuantity_Removes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	_, err := f.uc.AddToCart(ctx, sid, "p1")
	require.NoError(t, err)
	lines, err := f.uc.UpdateCartQuantity(ctx, sid, "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestBusyWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	ok, err := f.cache.AcquireLock(ctx, "lock:workspace:"+sid, "other-request", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.uc.AddToCart(ctx, sid, "p1")
	assert.True(t, apperr.Is(err, apperr.KindBusy))
}

func TestExportAndDiscard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.load(t)

	var buf bytes.Buffer
	require.NoError(t, f.uc.Export(ctx, sid, &buf))
	assert.NotZero(t, buf.Len())

	require.NoError(t, f.uc.Discard(ctx, sid))
	v, err := f.uc.View(ctx, sid)
	require.NoError(t, err)
	assert.False(t, v.Loaded)

	assert.True(t, apperr.Is(f.uc.Export(ctx, sid, &buf), apperr.KindUnavailable))
}
