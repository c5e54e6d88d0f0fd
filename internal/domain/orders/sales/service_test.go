package sales

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
	"stockroom/internal/domain/ledger"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	docs    map[id.ID]*SalesOrder
	items   map[id.ID][]SalesOrderItem
	updates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*SalesOrder),
		items: make(map[id.ID][]SalesOrderItem),
	}
}

func (r *fakeRepo) Create(_ context.Context, doc *SalesOrder) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*SalesOrder, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("sales_order", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(_ context.Context, number string) (*SalesOrder, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("sales_order", number)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*SalesOrder, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) Update(_ context.Context, doc *SalesOrder) error {
	r.docs[doc.ID] = doc
	r.updates++
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, docID id.ID) error {
	delete(r.docs, docID)
	delete(r.items, docID)
	return nil
}

func (r *fakeRepo) GetItems(_ context.Context, docID id.ID) ([]SalesOrderItem, error) {
	return r.items[docID], nil
}

func (r *fakeRepo) SaveItems(_ context.Context, docID id.ID, items []SalesOrderItem) error {
	r.items[docID] = items
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*SalesOrder], error) {
	return domain.ListResult[*SalesOrder]{}, nil
}

type issueCall struct {
	productID  id.ID
	locationID id.ID
	qty        types.Quantity
	reference  string
}

type fakeIssuer struct {
	availabilityErr error
	issued          []issueCall
}

func (f *fakeIssuer) CheckAvailability(_ context.Context, _ []ledger.AvailabilityRequest) error {
	return f.availabilityErr
}

func (f *fakeIssuer) Issue(_ context.Context, productID, locationID id.ID, qty types.Quantity, reference string) (entity.StockMovement, error) {
	f.issued = append(f.issued, issueCall{productID, locationID, qty, reference})
	return entity.NewStockMovement(entity.MovementOut, productID, &locationID, nil, qty, reference, "tester"), nil
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

type fakeNumerator struct {
	next int64
}

func (f *fakeNumerator) GetNextNumber(_ context.Context, cfg numerator.Config, _ time.Time) (string, error) {
	f.next++
	return cfg.Prefix + "-2026-00001", nil
}

func (f *fakeNumerator) SetNextNumber(_ context.Context, _ numerator.Config, _ time.Time, _ int64) error {
	return nil
}

func defaultLocation() *location.Location {
	loc := &location.Location{}
	loc.ID = id.New()
	return loc
}

func newTestService(issuer *fakeIssuer, loc *location.Location) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, issuer, &fakeLocations{loc: loc}, &fakeNumerator{}, fakeTxManager{})
	return svc, repo
}

func newConfirmedOrder(t *testing.T, svc *Service, lines ...id.ID) *SalesOrder {
	t.Helper()
	ctx := context.Background()

	doc := NewSalesOrder(id.New())
	for _, productID := range lines {
		require.NoError(t, doc.AddItem(productID, types.NewQuantityFromInt(2), types.MustMoney("10")))
	}
	require.NoError(t, svc.Create(ctx, doc))

	doc, err := svc.Advance(ctx, doc.ID, StatusPending)
	require.NoError(t, err)
	doc, err = svc.Advance(ctx, doc.ID, StatusConfirmed)
	require.NoError(t, err)
	return doc
}

func TestCreateAssignsNumber(t *testing.T) {
	svc, repo := newTestService(&fakeIssuer{}, defaultLocation())

	doc := NewSalesOrder(id.New())
	require.NoError(t, doc.AddItem(id.New(), types.NewQuantityFromInt(1), types.MustMoney("5")))
	require.NoError(t, svc.Create(context.Background(), doc))

	assert.Equal(t, "SO-2026-00001", doc.Number)
	assert.Len(t, repo.items[doc.ID], 1)
}

func TestShipIssuesEveryLine(t *testing.T) {
	issuer := &fakeIssuer{}
	loc := defaultLocation()
	svc, _ := newTestService(issuer, loc)

	productA, productB := id.New(), id.New()
	doc := newConfirmedOrder(t, svc, productA, productB)

	shipped, err := svc.Ship(context.Background(), doc.ID, id.New())
	require.NoError(t, err)

	assert.Equal(t, StatusShipped, shipped.Status)
	require.NotNil(t, shipped.ShippedDate)
	require.Len(t, issuer.issued, 2)
	for _, call := range issuer.issued {
		assert.Equal(t, loc.ID, call.locationID)
		assert.Equal(t, doc.Number, call.reference)
		assert.Equal(t, types.NewQuantityFromInt(2), call.qty)
	}
}

func TestShipAbortsOnShortage(t *testing.T) {
	productID := id.New()
	issuer := &fakeIssuer{
		availabilityErr: apperror.NewInsufficientStock(productID.String(), 2, 1),
	}
	svc, repo := newTestService(issuer, defaultLocation())

	doc := newConfirmedOrder(t, svc, productID, id.New())
	updatesBefore := repo.updates

	_, err := svc.Ship(context.Background(), doc.ID, id.New())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	// nothing issued and nothing written when the availability check fails
	assert.Empty(t, issuer.issued)
	assert.Equal(t, updatesBefore, repo.updates)
	current, err := svc.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, current.Status)
}

func TestShipRequiresConfirmed(t *testing.T) {
	issuer := &fakeIssuer{}
	svc, _ := newTestService(issuer, defaultLocation())

	doc := NewSalesOrder(id.New())
	require.NoError(t, doc.AddItem(id.New(), types.NewQuantityFromInt(1), types.MustMoney("1")))
	require.NoError(t, svc.Create(context.Background(), doc))

	_, err := svc.Ship(context.Background(), doc.ID, id.New())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
	assert.Empty(t, issuer.issued)
}

func TestDeleteRequiresDraft(t *testing.T) {
	svc, repo := newTestService(&fakeIssuer{}, defaultLocation())
	doc := newConfirmedOrder(t, svc, id.New())

	err := svc.Delete(context.Background(), doc.ID)
	require.Error(t, err)
	_, ok := repo.docs[doc.ID]
	assert.True(t, ok)
}

func TestAddItemPersistsMergedLines(t *testing.T) {
	svc, repo := newTestService(&fakeIssuer{}, defaultLocation())
	ctx := context.Background()

	productID := id.New()
	doc := NewSalesOrder(id.New())
	require.NoError(t, doc.AddItem(productID, types.NewQuantityFromInt(2), types.MustMoney("10")))
	require.NoError(t, svc.Create(ctx, doc))

	updated, err := svc.AddItem(ctx, doc.ID, productID, types.NewQuantityFromInt(3), types.MustMoney("10"))
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, types.NewQuantityFromInt(5), updated.Items[0].Quantity)
	assert.True(t, updated.Total.Equal(types.MustMoney("50")), "total = %s", updated.Total)
	assert.Len(t, repo.items[doc.ID], 1)
}
