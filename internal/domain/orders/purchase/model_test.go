package purchase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

func TestAddItemMergesDuplicateProduct(t *testing.T) {
	order := NewPurchaseOrder(id.New())
	productID := id.New()

	require.NoError(t, order.AddItem(productID, types.NewQuantityFromInt(5), types.MustMoney("2.00")))
	require.NoError(t, order.AddItem(productID, types.NewQuantityFromInt(3), types.MustMoney("2.50")))

	require.Len(t, order.Items, 1)
	assert.Equal(t, types.NewQuantityFromInt(8), order.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitCost.Equal(types.MustMoney("2.50")))
	assert.True(t, order.Total.Equal(types.MustMoney("20.00")), "total = %s", order.Total)
}

func TestAddItemValidation(t *testing.T) {
	order := NewPurchaseOrder(id.New())

	tests := []struct {
		name      string
		productID id.ID
		qty       types.Quantity
		cost      types.Money
	}{
		{"nil product", id.Nil(), types.NewQuantityFromInt(1), types.MustMoney("1")},
		{"zero quantity", id.New(), 0, types.MustMoney("1")},
		{"negative cost", id.New(), types.NewQuantityFromInt(1), types.MustMoney("-1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := order.AddItem(tt.productID, tt.qty, tt.cost)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestLineMutationsRequireDraft(t *testing.T) {
	order := NewPurchaseOrder(id.New())
	productID := id.New()
	require.NoError(t, order.AddItem(productID, types.NewQuantityFromInt(1), types.MustMoney("1")))
	require.NoError(t, order.Advance(StatusSent))

	for name, err := range map[string]error{
		"add":    order.AddItem(id.New(), types.NewQuantityFromInt(1), types.MustMoney("1")),
		"update": order.UpdateItem(productID, types.NewQuantityFromInt(2), types.MustMoney("1")),
		"remove": order.RemoveItem(productID),
	} {
		require.Error(t, err, name)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok, name)
		assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code, name)
	}
}

func TestRemoveItemRenumbersLines(t *testing.T) {
	order := NewPurchaseOrder(id.New())
	first, second, third := id.New(), id.New(), id.New()
	require.NoError(t, order.AddItem(first, types.NewQuantityFromInt(1), types.MustMoney("1")))
	require.NoError(t, order.AddItem(second, types.NewQuantityFromInt(2), types.MustMoney("2")))
	require.NoError(t, order.AddItem(third, types.NewQuantityFromInt(3), types.MustMoney("3")))

	require.NoError(t, order.RemoveItem(second))

	require.Len(t, order.Items, 2)
	assert.Equal(t, 1, order.Items[0].LineNo)
	assert.Equal(t, 2, order.Items[1].LineNo)
	assert.Equal(t, third, order.Items[1].ProductID)
	assert.True(t, order.Total.Equal(types.MustMoney("10")), "total = %s", order.Total)
}

func TestLifecycle(t *testing.T) {
	order := NewPurchaseOrder(id.New())

	require.NoError(t, order.Advance(StatusSent))
	require.NoError(t, order.Advance(StatusConfirmed))
	require.NoError(t, order.Advance(StatusPartial))
	require.NoError(t, order.Advance(StatusReceived))
	require.NotNil(t, order.ReceivedDate)

	err := order.Advance(StatusCancelled)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
	assert.Equal(t, StatusReceived, order.Status)
}

func TestLifecycleSkipIllegal(t *testing.T) {
	order := NewPurchaseOrder(id.New())

	err := order.Advance(StatusReceived)
	require.Error(t, err)
	assert.Equal(t, StatusDraft, order.Status)
}

func TestOutstanding(t *testing.T) {
	item := PurchaseOrderItem{
		Quantity:    types.NewQuantityFromInt(10),
		ReceivedQty: types.NewQuantityFromInt(4),
	}
	assert.Equal(t, types.NewQuantityFromInt(6), item.Outstanding())

	item.ReceivedQty = types.NewQuantityFromInt(10)
	assert.Equal(t, types.Quantity(0), item.Outstanding())

	// an over-received line never reports negative outstanding
	item.ReceivedQty = types.NewQuantityFromInt(12)
	assert.Equal(t, types.Quantity(0), item.Outstanding())
}

func TestIsFullyReceived(t *testing.T) {
	order := NewPurchaseOrder(id.New())
	require.NoError(t, order.AddItem(id.New(), types.NewQuantityFromInt(5), types.MustMoney("1")))
	require.NoError(t, order.AddItem(id.New(), types.NewQuantityFromInt(3), types.MustMoney("1")))

	assert.False(t, order.IsFullyReceived())

	order.Items[0].ReceivedQty = order.Items[0].Quantity
	assert.False(t, order.IsFullyReceived())

	order.Items[1].ReceivedQty = order.Items[1].Quantity
	assert.True(t, order.IsFullyReceived())
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	order := NewPurchaseOrder(id.New())
	require.NoError(t, order.AddItem(id.New(), types.NewQuantityFromInt(2), types.MustMoney("3")))
	require.NoError(t, order.Validate(ctx))

	order.SupplierID = id.Nil()
	require.Error(t, order.Validate(ctx))

	order.SupplierID = id.New()
	order.Items[0].ReceivedQty = types.NewQuantityFromInt(3)
	require.Error(t, order.Validate(ctx))
}
