package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/cart/dto"
	"github.com/fekuna/omnipos-warehouse/internal/catalog"
	"github.com/fekuna/omnipos-warehouse/internal/catalog/repository"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*dto.StockAdjustedEvent
}

func (p *recordingPublisher) PublishStockAdjusted(_ context.Context, e *dto.StockAdjustedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type flakyRepo struct {
	catalog.Repository
	failIDs   map[string]bool
	listCalls int
	failList  int // fail the n-th ListProducts call, 1-based
}

func (r *flakyRepo) UpdateProductStock(ctx context.Context, id string, stock int) error {
	if r.failIDs[id] {
		return errors.New("quota exceeded")
	}
	return r.Repository.UpdateProductStock(ctx, id, stock)
}

// shiftingRepo deletes a product right after the first listing, the way a
// cascade in another session would.
type shiftingRepo struct {
	catalog.Repository
	deleteID string
	once     sync.Once
}

func (r *shiftingRepo) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := r.Repository.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	var delErr error
	r.once.Do(func() {
		delErr = r.Repository.Delete(ctx, rowstore.Products, r.deleteID)
	})
	return products, delErr
}

func (r *flakyRepo) ListProducts(ctx context.Context) ([]model.Product, error) {
	r.listCalls++
	if r.listCalls == r.failList {
		return nil, errors.New("timeout")
	}
	return r.Repository.ListProducts(ctx)
}

func newRepo(t *testing.T, stocks ...string) *repository.RowRepository {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, rowstore.Init(ctx, store))
	for i, s := range stocks {
		id := []string{"p1", "p2", "p3"}[i]
		require.NoError(t, store.Append(ctx, rowstore.Products, []string{id, "Product " + id, "c1", "t1", "ph1", "Black", s, ""}))
	}
	return repository.NewRowRepository(store)
}

func stockOf(t *testing.T, repo catalog.Repository, id string) int {
	t.Helper()
	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	for _, p := range products {
		if p.ID == id {
			return p.Stock
		}
	}
	t.Fatalf("product %s not found", id)
	return 0
}

func TestSubmit_Decrements(t *testing.T) {
	repo := newRepo(t, "10")
	pub := &recordingPublisher{}
	e := NewCheckoutEngine(repo, pub, logger.NewNop(), 4)

	res, err := e.Submit(context.Background(), []model.CartLine{{ProductID: "p1", Quantity: 3}}, "ref-1")
	require.NoError(t, err)

	assert.Equal(t, 7, stockOf(t, repo, "p1"))
	assert.Equal(t, 1, res.Succeeded)
	assert.True(t, res.Refreshed)
	require.Len(t, res.Products, 1)
	assert.Equal(t, 7, res.Products[0].Stock)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "ref-1", pub.events[0].Payload.Reference)
	assert.Equal(t, 7, pub.events[0].Payload.Items[0].NewStock)
}

func TestSubmit_ClampsAtZero(t *testing.T) {
	repo := newRepo(t, "10")
	e := NewCheckoutEngine(repo, &recordingPublisher{}, logger.NewNop(), 1)

	res, err := e.Submit(context.Background(), []model.CartLine{{ProductID: "p1", Quantity: 12}}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Reference)
	assert.Equal(t, 0, res.Lines[0].NewStock)
	assert.Equal(t, 0, stockOf(t, repo, "p1"))
}

func TestSubmit_PerLineFailures(t *testing.T) {
	base := newRepo(t, "5", "5", "5")
	repo := &flakyRepo{Repository: base, failIDs: map[string]bool{"p2": true}}
	pub := &recordingPublisher{}
	e := NewCheckoutEngine(repo, pub, logger.NewNop(), 2)

	res, err := e.Submit(context.Background(), []model.CartLine{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 2},
		{ProductID: "gone", Quantity: 1},
		{ProductID: "p3", Quantity: 5},
	}, "ref")
	require.NoError(t, err)

	require.Len(t, res.Lines, 4)
	assert.Equal(t, dto.LineUpdated, res.Lines[0].Status)
	assert.Equal(t, dto.LineFailed, res.Lines[1].Status)
	assert.Equal(t, 5, res.Lines[1].NewStock)
	assert.Equal(t, dto.LineFailed, res.Lines[2].Status)
	assert.Equal(t, dto.LineUpdated, res.Lines[3].Status)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed)

	// no rollback of the lines that went through
	assert.Equal(t, 4, stockOf(t, base, "p1"))
	assert.Equal(t, 5, stockOf(t, base, "p2"))
	assert.Equal(t, 0, stockOf(t, base, "p3"))

	require.Len(t, pub.events, 1)
	assert.Len(t, pub.events[0].Payload.Items, 2)
}

func TestSubmit_RowsShiftedBeforeWrite(t *testing.T) {
	base := newRepo(t, "100", "10", "50")
	repo := &shiftingRepo{Repository: base, deleteID: "p1"}
	pub := &recordingPublisher{}
	e := NewCheckoutEngine(repo, pub, logger.NewNop(), 2)

	res, err := e.Submit(context.Background(), []model.CartLine{{ProductID: "p2", Quantity: 3}}, "ref")
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	assert.Equal(t, dto.LineUpdated, res.Lines[0].Status)
	assert.Equal(t, 7, stockOf(t, base, "p2"))
	assert.Equal(t, 50, stockOf(t, base, "p3"))

	require.Len(t, pub.events, 1)
	assert.Equal(t, "p2", pub.events[0].Payload.Items[0].ProductID)
}

func TestSubmit_ProductDeletedBeforeWrite(t *testing.T) {
	base := newRepo(t, "100", "10", "50")
	repo := &shiftingRepo{Repository: base, deleteID: "p2"}
	e := NewCheckoutEngine(repo, &recordingPublisher{}, logger.NewNop(), 1)

	res, err := e.Submit(context.Background(), []model.CartLine{{ProductID: "p2", Quantity: 3}}, "ref")
	require.NoError(t, err)

	assert.Equal(t, dto.LineFailed, res.Lines[0].Status)
	assert.Equal(t, 10, res.Lines[0].NewStock)
	assert.Equal(t, 100, stockOf(t, base, "p1"))
	assert.Equal(t, 50, stockOf(t, base, "p3"))
}

func TestSubmit_RefreshFailure(t *testing.T) {
	repo := &flakyRepo{Repository: newRepo(t, "5"), failList: 2}
	e := NewCheckoutEngine(repo, &recordingPublisher{}, logger.NewNop(), 1)

	res, err := e.Submit(context.Background(), []model.CartLine{{ProductID: "p1", Quantity: 1}}, "ref")
	require.NoError(t, err)
	assert.False(t, res.Refreshed)
	assert.Nil(t, res.Products)
	assert.Equal(t, 1, res.Succeeded)
}

func TestSubmit_InitialReadFailure(t *testing.T) {
	repo := &flakyRepo{Repository: newRepo(t, "5"), failList: 1}
	pub := &recordingPublisher{}
	e := NewCheckoutEngine(repo, pub, logger.NewNop(), 1)

	_, err := e.Submit(context.Background(), []model.CartLine{{ProductID: "p1", Quantity: 1}}, "ref")
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Empty(t, pub.events)
}

func TestSubmit_EmptyCart(t *testing.T) {
	e := NewCheckoutEngine(newRepo(t), &recordingPublisher{}, logger.NewNop(), 1)

	_, err := e.Submit(context.Background(), nil, "ref")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = e.Submit(context.Background(), []model.CartLine{{ProductID: "p1", Quantity: 0}}, "ref")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
