package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/numerator"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/internal/domain/catalogs/location"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	docs  map[id.ID]*PurchaseOrder
	items map[id.ID][]PurchaseOrderItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*PurchaseOrder),
		items: make(map[id.ID][]PurchaseOrderItem),
	}
}

func (r *fakeRepo) Create(_ context.Context, doc *PurchaseOrder) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*PurchaseOrder, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase_order", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(_ context.Context, number string) (*PurchaseOrder, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("purchase_order", number)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) Update(_ context.Context, doc *PurchaseOrder) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, docID id.ID) error {
	delete(r.docs, docID)
	delete(r.items, docID)
	return nil
}

func (r *fakeRepo) GetItems(_ context.Context, docID id.ID) ([]PurchaseOrderItem, error) {
	return r.items[docID], nil
}

func (r *fakeRepo) SaveItems(_ context.Context, docID id.ID, items []PurchaseOrderItem) error {
	r.items[docID] = items
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return domain.ListResult[*PurchaseOrder]{}, nil
}

type receiveCall struct {
	productID  id.ID
	locationID id.ID
	qty        types.Quantity
	reference  string
}

type fakeReceiver struct {
	calls []receiveCall
	err   error
}

func (f *fakeReceiver) Receive(_ context.Context, productID, locationID id.ID, qty types.Quantity, reference string) (entity.StockMovement, error) {
	if f.err != nil {
		return entity.StockMovement{}, f.err
	}
	f.calls = append(f.calls, receiveCall{productID, locationID, qty, reference})
	return entity.NewStockMovement(entity.MovementIn, productID, nil, &locationID, qty, reference, "tester"), nil
}

type fakeLocations struct {
	loc *location.Location
}

func (f *fakeLocations) GetDefaultForWarehouse(_ context.Context, _ id.ID) (*location.Location, error) {
	if f.loc == nil {
		return nil, apperror.NewNotFound("location", "default")
	}
	return f.loc, nil
}

type fakeNumerator struct{}

func (fakeNumerator) GetNextNumber(_ context.Context, cfg numerator.Config, _ time.Time) (string, error) {
	return cfg.Prefix + "-2026-00001", nil
}

func (fakeNumerator) SetNextNumber(_ context.Context, _ numerator.Config, _ time.Time, _ int64) error {
	return nil
}

func defaultLocation() *location.Location {
	loc := &location.Location{}
	loc.ID = id.New()
	return loc
}

func newTestService(receiver *fakeReceiver, loc *location.Location) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, receiver, &fakeLocations{loc: loc}, fakeNumerator{}, fakeTxManager{})
	return svc, repo
}

func newConfirmedOrder(t *testing.T, svc *Service, lines ...id.ID) *PurchaseOrder {
	t.Helper()
	ctx := context.Background()

	doc := NewPurchaseOrder(id.New())
	for _, productID := range lines {
		require.NoError(t, doc.AddItem(productID, types.NewQuantityFromInt(10), types.MustMoney("3")))
	}
	require.NoError(t, svc.Create(ctx, doc))

	doc, err := svc.Advance(ctx, doc.ID, StatusSent)
	require.NoError(t, err)
	doc, err = svc.Advance(ctx, doc.ID, StatusConfirmed)
	require.NoError(t, err)
	return doc
}

func TestCreateAssignsNumber(t *testing.T) {
	svc, repo := newTestService(&fakeReceiver{}, defaultLocation())

	doc := NewPurchaseOrder(id.New())
	require.NoError(t, doc.AddItem(id.New(), types.NewQuantityFromInt(1), types.MustMoney("2")))
	require.NoError(t, svc.Create(context.Background(), doc))

	assert.Equal(t, "PO-2026-00001", doc.Number)
	assert.Len(t, repo.items[doc.ID], 1)
}

func TestReceiveBooksAllLines(t *testing.T) {
	receiver := &fakeReceiver{}
	loc := defaultLocation()
	svc, _ := newTestService(receiver, loc)

	productA, productB := id.New(), id.New()
	doc := newConfirmedOrder(t, svc, productA, productB)

	received, err := svc.Receive(context.Background(), doc.ID, id.New())
	require.NoError(t, err)

	assert.Equal(t, StatusReceived, received.Status)
	require.NotNil(t, received.ReceivedDate)
	require.Len(t, receiver.calls, 2)
	for _, call := range receiver.calls {
		assert.Equal(t, loc.ID, call.locationID)
		assert.Equal(t, doc.Number, call.reference)
		assert.Equal(t, types.NewQuantityFromInt(10), call.qty)
	}
	for _, item := range received.Items {
		assert.Equal(t, item.Quantity, item.ReceivedQty)
	}
}

func TestReceiveSkipsBookedLines(t *testing.T) {
	receiver := &fakeReceiver{}
	svc, repo := newTestService(receiver, defaultLocation())

	productA, productB := id.New(), id.New()
	doc := newConfirmedOrder(t, svc, productA, productB)

	// first line was already partially booked by an earlier receipt
	items := repo.items[doc.ID]
	items[0].ReceivedQty = types.NewQuantityFromInt(6)
	items[1].ReceivedQty = items[1].Quantity
	repo.items[doc.ID] = items

	received, err := svc.Receive(context.Background(), doc.ID, id.New())
	require.NoError(t, err)

	// only the outstanding remainder of the first line moves
	require.Len(t, receiver.calls, 1)
	assert.Equal(t, items[0].ProductID, receiver.calls[0].productID)
	assert.Equal(t, types.NewQuantityFromInt(4), receiver.calls[0].qty)
	assert.True(t, received.IsFullyReceived())
}

func TestReceiveRequiresConfirmedOrPartial(t *testing.T) {
	receiver := &fakeReceiver{}
	svc, _ := newTestService(receiver, defaultLocation())

	doc := NewPurchaseOrder(id.New())
	require.NoError(t, doc.AddItem(id.New(), types.NewQuantityFromInt(1), types.MustMoney("1")))
	require.NoError(t, svc.Create(context.Background(), doc))

	_, err := svc.Receive(context.Background(), doc.ID, id.New())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
	assert.Empty(t, receiver.calls)
}

func TestReceiveFromPartial(t *testing.T) {
	receiver := &fakeReceiver{}
	svc, _ := newTestService(receiver, defaultLocation())

	doc := newConfirmedOrder(t, svc, id.New())
	_, err := svc.Advance(context.Background(), doc.ID, StatusPartial)
	require.NoError(t, err)

	received, err := svc.Receive(context.Background(), doc.ID, id.New())
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, received.Status)
}

func TestReceiveAgainIsIllegal(t *testing.T) {
	receiver := &fakeReceiver{}
	svc, _ := newTestService(receiver, defaultLocation())

	doc := newConfirmedOrder(t, svc, id.New())
	_, err := svc.Receive(context.Background(), doc.ID, id.New())
	require.NoError(t, err)

	_, err = svc.Receive(context.Background(), doc.ID, id.New())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
	assert.Len(t, receiver.calls, 1)
}

func TestDeleteRequiresDraft(t *testing.T) {
	svc, repo := newTestService(&fakeReceiver{}, defaultLocation())
	ctx := context.Background()

	draft := NewPurchaseOrder(id.New())
	require.NoError(t, svc.Create(ctx, draft))
	require.NoError(t, svc.Delete(ctx, draft.ID))
	_, ok := repo.docs[draft.ID]
	assert.False(t, ok)

	confirmed := newConfirmedOrder(t, svc, id.New())
	require.Error(t, svc.Delete(ctx, confirmed.ID))
}
