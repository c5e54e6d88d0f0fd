// Package security provides the permission oracle gating every mutating
// operation. The role matrix is expressed as CEL rules so deployments can
// override the defaults without recompiling.
package security

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"stockroom/pkg/logger"
)

// Oracle answers allowed(role, action) questions. Every mutating operation
// is gated by it before the domain service is invoked.
type Oracle interface {
	Allowed(ctx context.Context, roles []string, action string) bool
}

// Rule binds an action pattern to a CEL expression over the caller's roles.
// Pattern is either an exact action name ("purchase_order.receive") or a
// prefix wildcard ("purchase_order.*").
type Rule struct {
	Pattern string
	Expr    string
}

// DefaultRules returns the built-in permission matrix.
// Admin short-circuits in Allowed, so rules only describe the other roles.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "product.*", Expr: `"inventory" in roles || "manager" in roles`},
		{Pattern: "warehouse.*", Expr: `"inventory" in roles || "manager" in roles`},
		{Pattern: "location.*", Expr: `"inventory" in roles || "manager" in roles`},
		{Pattern: "counterparty.*", Expr: `"sales" in roles || "purchasing" in roles || "manager" in roles`},
		{Pattern: "stock.*", Expr: `"inventory" in roles || "manager" in roles`},
		{Pattern: "purchase_order.*", Expr: `"purchasing" in roles || "manager" in roles`},
		{Pattern: "sales_order.*", Expr: `"sales" in roles || "manager" in roles`},
		{Pattern: "invoice.*", Expr: `"accounting" in roles || "manager" in roles`},
		{Pattern: "report.*", Expr: `roles.size() > 0`},
	}
}

// AdminRole always passes every permission check.
const AdminRole = "admin"

type compiledRule struct {
	pattern string
	prefix  bool
	program cel.Program
}

// CELOracle evaluates permission rules written as CEL expressions.
// Rules are compiled once at construction; evaluation is lock-free.
type CELOracle struct {
	rules []compiledRule

	mu       sync.Mutex
	warnOnce map[string]struct{}
}

// NewCELOracle compiles the given rules. Compilation errors fail fast:
// a broken permission matrix must not boot.
func NewCELOracle(rules []Rule) (*CELOracle, error) {
	env, err := cel.NewEnv(
		cel.Variable("roles", cel.ListType(cel.StringType)),
		cel.Variable("action", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	o := &CELOracle{
		rules:    make([]compiledRule, 0, len(rules)),
		warnOnce: make(map[string]struct{}),
	}
	for _, r := range rules {
		ast, issues := env.Compile(r.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Pattern, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %q: %w", r.Pattern, err)
		}
		o.rules = append(o.rules, compiledRule{
			pattern: strings.TrimSuffix(r.Pattern, "*"),
			prefix:  strings.HasSuffix(r.Pattern, "*"),
			program: prg,
		})
	}
	return o, nil
}

// Allowed evaluates the first rule matching action. No matching rule means
// deny. Admins are allowed everything.
func (o *CELOracle) Allowed(ctx context.Context, roles []string, action string) bool {
	for _, r := range roles {
		if r == AdminRole {
			return true
		}
	}

	for _, rule := range o.rules {
		if !rule.matches(action) {
			continue
		}
		out, _, err := rule.program.Eval(map[string]any{
			"roles":  roles,
			"action": action,
		})
		if err != nil {
			o.warnEvalError(ctx, action, err)
			return false
		}
		allowed, ok := out.Value().(bool)
		return ok && allowed
	}

	return false
}

func (r compiledRule) matches(action string) bool {
	if r.prefix {
		return strings.HasPrefix(action, r.pattern)
	}
	return action == r.pattern
}

// warnEvalError logs each failing action once to avoid log floods on a
// hot, permanently broken rule.
func (o *CELOracle) warnEvalError(ctx context.Context, action string, err error) {
	o.mu.Lock()
	_, seen := o.warnOnce[action]
	o.warnOnce[action] = struct{}{}
	o.mu.Unlock()
	if !seen {
		logger.Warn(ctx, "permission rule evaluation failed", "action", action, "error", err)
	}
}

var _ Oracle = (*CELOracle)(nil)
