// Package permit decides whether panel actions are allowed: reading a
// source, invoking a tool, exporting a transcript. A rule table answers
// most queries; rules may defer to an interactive approver.
package permit

import (
	"context"
	"path"
)

// Decision is the outcome of a permission check.
type Decision uint8

const (
	// Deny rejects the action.
	Deny Decision = iota
	// Allow permits the action.
	Allow
	// Ask defers to interactive approval.
	Ask
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Ask:
		return "ask"
	default:
		return "deny"
	}
}

// Query names the action under consideration. Resource uses a path-like
// form, e.g. "notebook/nb_1/source/src_3".
type Query struct {
	Actor    string
	Action   string // "read", "write", "tool", "export"
	Resource string
}

// Checker answers permission queries.
type Checker interface {
	Check(ctx context.Context, q Query) (Decision, error)
}

// Approver resolves Ask decisions interactively, e.g. by prompting in the
// panel. Approve blocks until the user answers or ctx is canceled.
type Approver interface {
	Approve(ctx context.Context, q Query) (bool, error)
}

// Rule matches queries by action and resource glob (path.Match syntax).
// Empty fields match anything.
type Rule struct {
	Action   string
	Resource string
	Decision Decision
}

// RuleChecker evaluates rules in order; the first match wins. Unmatched
// queries get the configured default.
type RuleChecker struct {
	Rules   []Rule
	Default Decision
}

func (c *RuleChecker) Check(ctx context.Context, q Query) (Decision, error) {
	for _, r := range c.Rules {
		if r.Action != "" && r.Action != q.Action {
			continue
		}
		if r.Resource != "" {
			ok, err := path.Match(r.Resource, q.Resource)
			if err != nil || !ok {
				continue
			}
		}
		return r.Decision, nil
	}
	return c.Default, nil
}

// Resolve runs a check and settles Ask through the approver. A nil
// approver turns Ask into Deny.
func Resolve(ctx context.Context, c Checker, a Approver, q Query) (bool, error) {
	d, err := c.Check(ctx, q)
	if err != nil {
		return false, err
	}
	switch d {
	case Allow:
		return true, nil
	case Ask:
		if a == nil {
			return false, nil
		}
		return a.Approve(ctx, q)
	}
	return false, nil
}

type fixed Decision

func (f fixed) Check(ctx context.Context, q Query) (Decision, error) {
	return Decision(f), nil
}

// AllowAll permits everything. Test helper.
func AllowAll() Checker { return fixed(Allow) }

// DenyAll rejects everything. Test helper.
func DenyAll() Checker { return fixed(Deny) }

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, q Query) (bool, error)

func (f ApproverFunc) Approve(ctx context.Context, q Query) (bool, error) {
	return f(ctx, q)
}
