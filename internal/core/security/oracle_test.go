package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultOracle(t *testing.T) *CELOracle {
	t.Helper()
	o, err := NewCELOracle(DefaultRules())
	require.NoError(t, err)
	return o
}

func TestAdminShortCircuit(t *testing.T) {
	o := newDefaultOracle(t)
	ctx := context.Background()

	assert.True(t, o.Allowed(ctx, []string{AdminRole}, "product.delete"))
	assert.True(t, o.Allowed(ctx, []string{AdminRole}, "action.nobody.declared"))
}

func TestDefaultRules(t *testing.T) {
	o := newDefaultOracle(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		roles  []string
		action string
		want   bool
	}{
		{"inventory reads products", []string{"inventory"}, "product.read", true},
		{"inventory moves stock", []string{"inventory"}, "stock.transfer", true},
		{"sales cannot move stock", []string{"sales"}, "stock.issue", false},
		{"purchasing receives orders", []string{"purchasing"}, "purchase_order.receive", true},
		{"sales ships orders", []string{"sales"}, "sales_order.ship", true},
		{"purchasing cannot ship sales orders", []string{"purchasing"}, "sales_order.ship", false},
		{"accounting records payments", []string{"accounting"}, "invoice.payment", true},
		{"inventory cannot touch invoices", []string{"inventory"}, "invoice.create", false},
		{"any role reads reports", []string{"sales"}, "report.stock_on_hand", true},
		{"no roles no reports", []string{}, "report.low_stock", false},
		{"manager spans modules", []string{"manager"}, "purchase_order.create", true},
		{"unknown action denied", []string{"inventory"}, "unknown.action", false},
		{"multiple roles union", []string{"sales", "inventory"}, "stock.read", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.Allowed(ctx, tt.roles, tt.action))
		})
	}
}

func TestExactRuleBeatsNothing(t *testing.T) {
	rules := []Rule{
		{Pattern: "doc.post", Expr: `"poster" in roles`},
	}
	o, err := NewCELOracle(rules)
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, o.Allowed(ctx, []string{"poster"}, "doc.post"))
	assert.False(t, o.Allowed(ctx, []string{"poster"}, "doc.unpost"), "exact pattern does not match other actions")
}

func TestBrokenRuleFailsCompile(t *testing.T) {
	_, err := NewCELOracle([]Rule{{Pattern: "x.*", Expr: `this is not CEL`}})
	assert.Error(t, err)
}
