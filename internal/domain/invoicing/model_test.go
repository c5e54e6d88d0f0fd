package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

func mustSend(t *testing.T, inv *Invoice) {
	t.Helper()
	require.NoError(t, inv.Advance(StatusSent))
}

func TestAddItemFreezesTaxMath(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())

	require.NoError(t, inv.AddItem("packing boxes", types.NewQuantityFromInt(10), types.MustMoney("10"), types.MustMoney("20")))

	require.Len(t, inv.Items, 1)
	item := inv.Items[0]
	assert.True(t, item.TaxAmount.Equal(types.MustMoney("20")), "tax = %s", item.TaxAmount)
	assert.True(t, item.Total.Equal(types.MustMoney("120")), "line total = %s", item.Total)

	assert.True(t, inv.Subtotal.Equal(types.MustMoney("100")))
	assert.True(t, inv.TaxAmount.Equal(types.MustMoney("20")))
	assert.True(t, inv.Total.Equal(types.MustMoney("120")))
	assert.True(t, inv.AmountDue.Equal(types.MustMoney("120")))
}

func TestDiscountReducesTotal(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	require.NoError(t, inv.AddItem("boxes", types.NewQuantityFromInt(10), types.MustMoney("10"), types.ZeroMoney()))

	inv.Discount = types.MustMoney("15")
	inv.RecalculateTotals()

	assert.True(t, inv.Total.Equal(types.MustMoney("85")), "total = %s", inv.Total)
	assert.True(t, inv.AmountDue.Equal(types.MustMoney("85")))
}

func TestAddItemRequiresDraft(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	mustSend(t, inv)

	err := inv.AddItem("late line", types.NewQuantityFromInt(1), types.MustMoney("1"), types.ZeroMoney())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
}

func TestPaymentFlow(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	require.NoError(t, inv.AddItem("boxes", types.NewQuantityFromInt(1), types.MustMoney("100"), types.ZeroMoney()))
	mustSend(t, inv)

	_, err := inv.RecordPayment(types.MustMoney("60"), MethodCard, "TX-1", HoldPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(types.MustMoney("60")))
	assert.True(t, inv.AmountDue.Equal(types.MustMoney("40")))
	assert.Nil(t, inv.PaidDate)

	_, err = inv.RecordPayment(types.MustMoney("40"), MethodTransfer, "TX-2", HoldPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, inv.Status)
	assert.True(t, inv.AmountDue.Equal(types.ZeroMoney()))
	require.NotNil(t, inv.PaidDate)
}

func TestOverpaymentClampsAmountDue(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	require.NoError(t, inv.AddItem("boxes", types.NewQuantityFromInt(1), types.MustMoney("50"), types.ZeroMoney()))
	mustSend(t, inv)

	_, err := inv.RecordPayment(types.MustMoney("70"), MethodCash, "TX-1", HoldPaid)
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(types.MustMoney("70")))
	assert.True(t, inv.AmountDue.Equal(types.ZeroMoney()))
}

func TestRecordPaymentValidation(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	require.NoError(t, inv.AddItem("boxes", types.NewQuantityFromInt(1), types.MustMoney("10"), types.ZeroMoney()))

	// draft invoices take no payments
	_, err := inv.RecordPayment(types.MustMoney("10"), MethodCash, "TX-1", HoldPaid)
	require.Error(t, err)

	mustSend(t, inv)
	_, err = inv.RecordPayment(types.MustMoney("-1"), MethodCash, "TX-2", HoldPaid)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestVoidPaymentHoldPaid(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	require.NoError(t, inv.AddItem("boxes", types.NewQuantityFromInt(1), types.MustMoney("100"), types.ZeroMoney()))
	mustSend(t, inv)

	payment, err := inv.RecordPayment(types.MustMoney("100"), MethodCard, "TX-1", HoldPaid)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)

	require.NoError(t, inv.VoidPayment(payment.ID, HoldPaid))

	// amounts reopen but the status holds
	assert.Equal(t, StatusPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(types.ZeroMoney()))
	assert.True(t, inv.AmountDue.Equal(types.MustMoney("100")))
}

func TestVoidPaymentRevertOnShortfall(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	require.NoError(t, inv.AddItem("boxes", types.NewQuantityFromInt(1), types.MustMoney("100"), types.ZeroMoney()))
	mustSend(t, inv)

	first, err := inv.RecordPayment(types.MustMoney("60"), MethodCard, "TX-1", RevertOnShortfall)
	require.NoError(t, err)
	_, err = inv.RecordPayment(types.MustMoney("40"), MethodCard, "TX-2", RevertOnShortfall)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)

	require.NoError(t, inv.VoidPayment(first.ID, RevertOnShortfall))

	assert.Equal(t, StatusPartial, inv.Status)
	assert.Nil(t, inv.PaidDate)
	assert.True(t, inv.AmountDue.Equal(types.MustMoney("60")))
}

func TestVoidUnknownPayment(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	mustSend(t, inv)

	err := inv.VoidPayment(id.New(), HoldPaid)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestVoidPaymentOnFrozenInvoice(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	require.NoError(t, inv.Advance(StatusCancelled))

	err := inv.VoidPayment(id.New(), HoldPaid)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
}

func TestFrozenInvoiceSkipsRecalculation(t *testing.T) {
	inv := NewInvoice(TypeSales, id.New())
	require.NoError(t, inv.AddItem("boxes", types.NewQuantityFromInt(1), types.MustMoney("100"), types.ZeroMoney()))
	mustSend(t, inv)
	require.NoError(t, inv.Advance(StatusCancelled))

	before := inv.Total
	inv.Discount = types.MustMoney("50")
	inv.RecalculateTotals()
	assert.True(t, inv.Total.Equal(before))
}

func TestMarkOverdue(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	makeSent := func(due *time.Time) *Invoice {
		inv := NewInvoice(TypeSales, id.New())
		require.NoError(t, inv.AddItem("boxes", types.NewQuantityFromInt(1), types.MustMoney("10"), types.ZeroMoney()))
		inv.DueDate = due
		mustSend(t, inv)
		return inv
	}

	inv := makeSent(&past)
	assert.True(t, inv.MarkOverdue(now))
	assert.Equal(t, StatusOverdue, inv.Status)

	// second sweep is a no-op
	assert.False(t, inv.MarkOverdue(now))

	assert.False(t, makeSent(&future).MarkOverdue(now))
	assert.False(t, makeSent(nil).MarkOverdue(now))

	paid := makeSent(&past)
	_, err := paid.RecordPayment(types.MustMoney("10"), MethodCash, "TX-1", HoldPaid)
	require.NoError(t, err)
	assert.False(t, paid.MarkOverdue(now))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	inv := NewInvoice(TypeSales, id.New())
	require.NoError(t, inv.Validate(ctx))

	inv.Type = InvoiceType("BARTER")
	require.Error(t, inv.Validate(ctx))

	inv.Type = TypePurchase
	inv.CounterpartyID = id.Nil()
	require.Error(t, inv.Validate(ctx))

	inv.CounterpartyID = id.New()
	inv.Discount = types.MustMoney("-1")
	require.Error(t, inv.Validate(ctx))
}
