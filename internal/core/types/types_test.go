package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityConstructors(t *testing.T) {
	assert.Equal(t, Quantity(50_000), NewQuantityFromInt(5))
	assert.Equal(t, Quantity(25_000), NewQuantityFromFloat64(2.5))
	assert.Equal(t, Quantity(1), NewQuantityFromFloat64(0.0001))
	assert.Equal(t, Quantity(12_345), NewQuantityFromInt64Scaled(12_345))

	// Sub-scale fractions round to the nearest representable value.
	assert.Equal(t, Quantity(1), NewQuantityFromFloat64(0.00006))
	assert.Equal(t, Quantity(0), NewQuantityFromFloat64(0.00004))
}

func TestQuantityPredicates(t *testing.T) {
	assert.True(t, NewQuantityFromInt(1).IsPositive())
	assert.True(t, NewQuantityFromInt(-1).IsNegative())
	assert.True(t, Quantity(0).IsZero())
	assert.Equal(t, NewQuantityFromInt(-3), NewQuantityFromInt(3).Neg())
	assert.Equal(t, NewQuantityFromInt(3), NewQuantityFromInt(-3).Abs())
}

func TestQuantityString(t *testing.T) {
	tests := []struct {
		q    Quantity
		want string
	}{
		{NewQuantityFromInt(5), "5.0000"},
		{NewQuantityFromFloat64(2.5), "2.5000"},
		{Quantity(1), "0.0001"},
		{NewQuantityFromFloat64(-1.25), "-1.2500"},
		{Quantity(0), "0.0000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.q.String())
	}
}

func TestQuantityJSON(t *testing.T) {
	data, err := json.Marshal(NewQuantityFromFloat64(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5000", string(data), "quantity marshals as a bare number")

	var q Quantity
	require.NoError(t, json.Unmarshal([]byte("3.25"), &q))
	assert.Equal(t, NewQuantityFromFloat64(3.25), q)

	require.NoError(t, json.Unmarshal([]byte(`"7"`), &q))
	assert.Equal(t, NewQuantityFromInt(7), q)
}

func TestQuantityDecimal(t *testing.T) {
	d := NewQuantityFromFloat64(2.5).Decimal()
	assert.True(t, d.Equal(NewMoney(2.5)))
}

func TestMoneyHelpers(t *testing.T) {
	m, err := NewMoneyFromString("19.99")
	require.NoError(t, err)
	assert.True(t, m.Equal(MustMoney("19.99")))
	assert.True(t, ZeroMoney().IsZero())

	_, err = NewMoneyFromString("not-a-number")
	assert.Error(t, err)
}
