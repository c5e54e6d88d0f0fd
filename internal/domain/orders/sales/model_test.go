package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

func TestAddItemLegalInPending(t *testing.T) {
	order := NewSalesOrder(id.New())
	require.NoError(t, order.Advance(StatusPending))

	require.NoError(t, order.AddItem(id.New(), types.NewQuantityFromInt(2), types.MustMoney("9.99")))
	require.Len(t, order.Items, 1)
	assert.True(t, order.Total.Equal(types.MustMoney("19.98")), "total = %s", order.Total)
}

func TestAddItemIllegalAfterConfirm(t *testing.T) {
	order := NewSalesOrder(id.New())
	productID := id.New()
	require.NoError(t, order.AddItem(productID, types.NewQuantityFromInt(1), types.MustMoney("1")))
	require.NoError(t, order.Advance(StatusPending))
	require.NoError(t, order.Advance(StatusConfirmed))

	err := order.AddItem(id.New(), types.NewQuantityFromInt(1), types.MustMoney("1"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)

	err = order.RemoveItem(productID)
	require.Error(t, err)
}

func TestAddItemMergesDuplicateProduct(t *testing.T) {
	order := NewSalesOrder(id.New())
	productID := id.New()

	require.NoError(t, order.AddItem(productID, types.NewQuantityFromInt(2), types.MustMoney("5")))
	require.NoError(t, order.AddItem(productID, types.NewQuantityFromInt(3), types.MustMoney("4")))

	require.Len(t, order.Items, 1)
	assert.Equal(t, types.NewQuantityFromInt(5), order.Items[0].Quantity)
	assert.True(t, order.Total.Equal(types.MustMoney("20")), "total = %s", order.Total)
}

func TestAdvanceStampsDates(t *testing.T) {
	order := NewSalesOrder(id.New())

	require.NoError(t, order.Advance(StatusPending))
	require.NoError(t, order.Advance(StatusConfirmed))
	assert.Nil(t, order.ShippedDate)

	require.NoError(t, order.Advance(StatusShipped))
	require.NotNil(t, order.ShippedDate)

	require.NoError(t, order.Advance(StatusDelivered))
	require.NotNil(t, order.DeliveredDate)

	err := order.Advance(StatusCancelled)
	require.Error(t, err)
	assert.Equal(t, StatusDelivered, order.Status)
}

func TestLifecycleTerminalStates(t *testing.T) {
	assert.True(t, Lifecycle.IsTerminal(StatusDelivered))
	assert.True(t, Lifecycle.IsTerminal(StatusCancelled))
	assert.False(t, Lifecycle.IsTerminal(StatusShipped))
}
