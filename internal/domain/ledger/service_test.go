package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	appctx "stockroom/internal/core/context"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// fakeTxManager runs the function directly; the fake repository keeps all
// state in memory so there is nothing to commit or roll back.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type itemKey struct {
	product  id.ID
	location id.ID
}

type fakeRepo struct {
	items     map[itemKey]entity.StockItem
	counters  map[id.ID]types.Quantity
	movements []entity.StockMovement
	totals    []StockTotal
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:    make(map[itemKey]entity.StockItem),
		counters: make(map[id.ID]types.Quantity),
	}
}

func (r *fakeRepo) GetItem(_ context.Context, productID, locationID id.ID) (entity.StockItem, error) {
	item, ok := r.items[itemKey{productID, locationID}]
	if !ok {
		return entity.StockItem{}, apperror.NewNotFound("stock item", productID.String())
	}
	return item, nil
}

func (r *fakeRepo) GetItemForUpdate(ctx context.Context, productID, locationID id.ID) (entity.StockItem, error) {
	return r.GetItem(ctx, productID, locationID)
}

func (r *fakeRepo) AddItemQuantity(_ context.Context, productID, locationID id.ID, qty types.Quantity, at time.Time) error {
	key := itemKey{productID, locationID}
	item := r.items[key]
	item.ProductID = productID
	item.LocationID = locationID
	item.Quantity += qty
	item.LastMovementAt = at
	item.UpdatedAt = at
	r.items[key] = item
	return nil
}

func (r *fakeRepo) SetItemQuantity(_ context.Context, productID, locationID id.ID, qty types.Quantity, at time.Time) error {
	key := itemKey{productID, locationID}
	item, ok := r.items[key]
	if !ok {
		return apperror.NewNotFound("stock item", productID.String())
	}
	item.Quantity = qty
	item.LastMovementAt = at
	item.UpdatedAt = at
	r.items[key] = item
	return nil
}

func (r *fakeRepo) ListItemsByProduct(_ context.Context, productID id.ID) ([]entity.StockItem, error) {
	var out []entity.StockItem
	for key, item := range r.items {
		if key.product == productID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListItemsByLocation(_ context.Context, locationID id.ID) ([]entity.StockItem, error) {
	var out []entity.StockItem
	for key, item := range r.items {
		if key.location == locationID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRepo) AdjustProductStock(_ context.Context, productID id.ID, delta types.Quantity) error {
	r.counters[productID] += delta
	return nil
}

func (r *fakeRepo) CreateMovement(_ context.Context, m entity.StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeRepo) CreateMovements(_ context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeRepo) ListMovements(_ context.Context, filter MovementFilter) ([]entity.StockMovement, error) {
	out := make([]entity.StockMovement, 0, len(r.movements))
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeRepo) ListStockTotals(_ context.Context) ([]StockTotal, error) {
	return r.totals, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, fakeTxManager{}), repo
}

func testCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.User{ID: "tester", Name: "Tester"})
}

func TestReceive(t *testing.T) {
	svc, repo := newTestService()
	ctx := testCtx()
	productID, locationID := id.New(), id.New()
	qty := types.NewQuantityFromFloat64(10.5)

	m, err := svc.Receive(ctx, productID, locationID, qty, "PO-2026-00001")
	require.NoError(t, err)

	assert.Equal(t, entity.MovementIn, m.Type)
	assert.Nil(t, m.FromLocationID)
	require.NotNil(t, m.ToLocationID)
	assert.Equal(t, locationID, *m.ToLocationID)
	assert.Equal(t, "PO-2026-00001", m.Reference)
	assert.Equal(t, "tester", m.CreatedBy)

	item, err := repo.GetItem(ctx, productID, locationID)
	require.NoError(t, err)
	assert.Equal(t, qty, item.Quantity)
	assert.Equal(t, qty, repo.counters[productID])
	assert.Len(t, repo.movements, 1)
}

func TestReceiveAccumulates(t *testing.T) {
	svc, repo := newTestService()
	ctx := testCtx()
	productID, locationID := id.New(), id.New()

	_, err := svc.Receive(ctx, productID, locationID, types.NewQuantityFromInt(3), "A")
	require.NoError(t, err)
	_, err = svc.Receive(ctx, productID, locationID, types.NewQuantityFromInt(4), "B")
	require.NoError(t, err)

	qty, err := svc.GetQuantity(ctx, productID, locationID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(7), qty)
	assert.Equal(t, types.NewQuantityFromInt(7), repo.counters[productID])
}

func TestIssue(t *testing.T) {
	svc, repo := newTestService()
	ctx := testCtx()
	productID, locationID := id.New(), id.New()

	_, err := svc.Receive(ctx, productID, locationID, types.NewQuantityFromInt(10), "OPENING")
	require.NoError(t, err)

	m, err := svc.Issue(ctx, productID, locationID, types.NewQuantityFromInt(4), "SO-2026-00001")
	require.NoError(t, err)

	assert.Equal(t, entity.MovementOut, m.Type)
	require.NotNil(t, m.FromLocationID)
	assert.Equal(t, locationID, *m.FromLocationID)
	assert.Nil(t, m.ToLocationID)

	qty, err := svc.GetQuantity(ctx, productID, locationID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(6), qty)
	assert.Equal(t, types.NewQuantityFromInt(6), repo.counters[productID])
}

func TestIssueInsufficientStock(t *testing.T) {
	svc, repo := newTestService()
	ctx := testCtx()
	productID, locationID := id.New(), id.New()

	_, err := svc.Receive(ctx, productID, locationID, types.NewQuantityFromInt(3), "OPENING")
	require.NoError(t, err)

	_, err = svc.Issue(ctx, productID, locationID, types.NewQuantityFromInt(5), "SO-2026-00002")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	// the failed issue leaves quantity, counter and movement log untouched
	qty, err := svc.GetQuantity(ctx, productID, locationID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(3), qty)
	assert.Equal(t, types.NewQuantityFromInt(3), repo.counters[productID])
	assert.Len(t, repo.movements, 1)
}

func TestIssueUnknownLocation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Issue(testCtx(), id.New(), id.New(), types.NewQuantityFromInt(1), "X")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
}

func TestTransfer(t *testing.T) {
	svc, repo := newTestService()
	ctx := testCtx()
	productID, from, to := id.New(), id.New(), id.New()

	_, err := svc.Receive(ctx, productID, from, types.NewQuantityFromInt(10), "OPENING")
	require.NoError(t, err)

	m, err := svc.Transfer(ctx, productID, from, to, types.NewQuantityFromInt(6), "MOVE")
	require.NoError(t, err)

	assert.Equal(t, entity.MovementTransfer, m.Type)
	require.NotNil(t, m.FromLocationID)
	require.NotNil(t, m.ToLocationID)
	assert.Equal(t, from, *m.FromLocationID)
	assert.Equal(t, to, *m.ToLocationID)

	fromQty, err := svc.GetQuantity(ctx, productID, from)
	require.NoError(t, err)
	toQty, err := svc.GetQuantity(ctx, productID, to)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(4), fromQty)
	assert.Equal(t, types.NewQuantityFromInt(6), toQty)

	// total product stock is conserved, so the counter stays put
	assert.Equal(t, types.NewQuantityFromInt(10), repo.counters[productID])
}

func TestTransferSameLocation(t *testing.T) {
	svc, _ := newTestService()
	locationID := id.New()

	_, err := svc.Transfer(testCtx(), id.New(), locationID, locationID, types.NewQuantityFromInt(1), "X")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestTransferNilDestination(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Transfer(testCtx(), id.New(), id.New(), id.Nil(), types.NewQuantityFromInt(1), "X")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestTransferInsufficientStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := testCtx()
	productID, from, to := id.New(), id.New(), id.New()

	_, err := svc.Receive(ctx, productID, from, types.NewQuantityFromInt(2), "OPENING")
	require.NoError(t, err)

	_, err = svc.Transfer(ctx, productID, from, to, types.NewQuantityFromInt(3), "MOVE")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	toQty, err := svc.GetQuantity(ctx, productID, to)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), toQty)
}

func TestValidateOperands(t *testing.T) {
	svc, _ := newTestService()
	ctx := testCtx()

	tests := []struct {
		name       string
		productID  id.ID
		locationID id.ID
		qty        types.Quantity
	}{
		{"nil product", id.Nil(), id.New(), types.NewQuantityFromInt(1)},
		{"nil location", id.New(), id.Nil(), types.NewQuantityFromInt(1)},
		{"zero quantity", id.New(), id.New(), 0},
		{"negative quantity", id.New(), id.New(), types.NewQuantityFromInt(-2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Receive(ctx, tt.productID, tt.locationID, tt.qty, "X")
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestGetQuantityUnknownIsZero(t *testing.T) {
	svc, _ := newTestService()

	qty, err := svc.GetQuantity(testCtx(), id.New(), id.New())
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), qty)
}

func TestCheckAvailability(t *testing.T) {
	svc, _ := newTestService()
	ctx := testCtx()
	productID, locationID := id.New(), id.New()

	_, err := svc.Receive(ctx, productID, locationID, types.NewQuantityFromInt(5), "OPENING")
	require.NoError(t, err)

	err = svc.CheckAvailability(ctx, []AvailabilityRequest{
		{ProductID: productID, LocationID: locationID, Required: types.NewQuantityFromInt(5)},
	})
	require.NoError(t, err)

	err = svc.CheckAvailability(ctx, []AvailabilityRequest{
		{ProductID: productID, LocationID: locationID, Required: types.NewQuantityFromInt(6)},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
}

func TestGetMovementHistoryFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := testCtx()
	productA, productB, locationID := id.New(), id.New(), id.New()

	_, err := svc.Receive(ctx, productA, locationID, types.NewQuantityFromInt(5), "A")
	require.NoError(t, err)
	_, err = svc.Receive(ctx, productB, locationID, types.NewQuantityFromInt(5), "B")
	require.NoError(t, err)
	_, err = svc.Issue(ctx, productA, locationID, types.NewQuantityFromInt(1), "C")
	require.NoError(t, err)

	movements, err := svc.GetMovementHistory(ctx, MovementFilter{ProductID: &productA})
	require.NoError(t, err)
	assert.Len(t, movements, 2)

	out := entity.MovementOut
	movements, err = svc.GetMovementHistory(ctx, MovementFilter{Type: &out})
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestReconcile(t *testing.T) {
	svc, repo := newTestService()
	ctx := testCtx()

	consistent := StockTotal{
		ProductID:   id.New(),
		SKU:         "BOX-M",
		CachedStock: types.NewQuantityFromInt(10),
		ItemSum:     types.NewQuantityFromInt(10),
		MovementNet: types.NewQuantityFromInt(10),
	}
	drifted := StockTotal{
		ProductID:   id.New(),
		SKU:         "BOX-L",
		CachedStock: types.NewQuantityFromInt(10),
		ItemSum:     types.NewQuantityFromInt(9),
		MovementNet: types.NewQuantityFromInt(10),
	}
	repo.totals = []StockTotal{consistent, drifted}

	drifts, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, drifted.ProductID, drifts[0].ProductID)
	assert.Equal(t, "BOX-L", drifts[0].SKU)

	fault := drifts[0].Fault()
	assert.Equal(t, apperror.CodeConsistencyFault, fault.Code)
}
