// Package txn defines the transaction boundary consumed by the interception
// pipeline: begin a scope before an operation, commit on normal return, roll
// back on error. The pipeline owns the boundary; business code only sees the
// scope through the context.
package txn

import (
	"context"
	"fmt"
)

// Scope is one open transaction boundary.
type Scope any

// Manager opens and settles transaction scopes.
type Manager interface {
	Begin(ctx context.Context) (Scope, error)
	Commit(scope Scope) error
	Rollback(scope Scope) error
}

// Error marks a failure of the boundary itself (begin/commit/rollback), as
// opposed to a failure of the operation running inside it. Boundary failures
// are never routed through exception translation — they always propagate.
type Error struct {
	Op  string // "begin" | "commit" | "rollback"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("txn: %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ── Context plumbing ──────────────────────────────────────────────────────────

type ctxKey struct{}

// NewContext returns ctx carrying an open scope. The transactional wrapper
// installs it so nested intercepted operations can detect the ambient
// boundary and join it instead of opening a second one.
func NewContext(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, scope)
}

// FromContext returns the ambient scope, if any.
func FromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(ctxKey{}).(Scope)
	if !ok || scope == nil {
		return nil, false
	}
	return scope, true
}
