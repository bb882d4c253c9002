package intercept

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/km-arc/go-ioc/txn"
)

// Operation is the uniform shape of an interceptable controller operation.
// The request value is whatever the delivery adapter hands over: an
// *httpd.Request for HTTP, the job payload for the queue, the argument list
// for the console.
type Operation func(ctx context.Context, req any) (any, error)

// Wrapper decorates an Operation with cross-cutting behavior.
type Wrapper func(next Operation) Operation

// ExceptionHandler is the error-translation hook. Controllers implement it;
// the default (controller.Base) re-raises unchanged.
type ExceptionHandler interface {
	HandleException(ctx context.Context, err error) (any, error)
}

// ── Pipeline ──────────────────────────────────────────────────────────────────

// Pipeline wraps a controller's operations with a fixed, deterministic chain:
//
//	error translation            (outermost — covers everything below)
//	  transaction + trace span   (only when a txn.Manager / tracer is configured)
//	    the operation itself
//
// One Pipeline belongs to one controller instance. Wrap caches by operation
// name, so wrapping is applied exactly once per operation per instance —
// re-wrapping never stacks. The wrappers themselves keep no per-call state.
type Pipeline struct {
	name    string
	handler ExceptionHandler
	txns    txn.Manager
	tracer  trace.Tracer

	mu      sync.Mutex
	wrapped map[string]Operation
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTransactions makes the pipeline transaction-aware: every wrapped
// operation runs inside a scope that commits on success and rolls back on
// error.
func WithTransactions(mgr txn.Manager) Option {
	return func(p *Pipeline) { p.txns = mgr }
}

// WithTracer emits a span named "<controller>.<operation>" around every
// wrapped operation, whatever the outcome.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = tracer }
}

// New builds the pipeline for one controller instance. name tags trace spans
// and should be the controller's name.
func New(name string, handler ExceptionHandler, opts ...Option) *Pipeline {
	p := &Pipeline{
		name:    name,
		handler: handler,
		wrapped: make(map[string]Operation),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the controller name the pipeline was built for.
func (p *Pipeline) Name() string { return p.name }

// Wrap returns op decorated with the pipeline's chain. Calling Wrap again
// with the same name returns the already-wrapped operation.
func (p *Pipeline) Wrap(name string, op Operation) Operation {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.wrapped[name]; ok {
		return w
	}

	w := op
	if p.txns != nil || p.tracer != nil {
		w = p.boundary(name)(w)
	}
	w = p.translate(w)

	p.wrapped[name] = w
	return w
}

// ── Wrappers ──────────────────────────────────────────────────────────────────

// translate is the outermost wrapper: failures of the inner chain go through
// the controller's HandleException hook instead of propagating raw. Boundary
// failures (*txn.Error) are exempt — a failed commit must never be mapped
// into a success.
func (p *Pipeline) translate(next Operation) Operation {
	return func(ctx context.Context, req any) (any, error) {
		out, err := next(ctx, req)
		if err == nil {
			return out, nil
		}
		var boundary *txn.Error
		if errors.As(err, &boundary) {
			return nil, err
		}
		return p.handler.HandleException(ctx, err)
	}
}

// boundary opens the transaction scope and the trace span around the inner
// operation. When the context already carries an open scope the wrapper joins
// it: commit and rollback stay with the outermost boundary.
func (p *Pipeline) boundary(op string) Wrapper {
	tracer := p.tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	spanName := p.name + "." + op

	return func(next Operation) Operation {
		return func(ctx context.Context, req any) (any, error) {
			ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(
				attribute.String("controller", p.name),
				attribute.String("operation", op),
			))
			defer span.End()

			out, err := p.runInScope(ctx, req, next)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return out, err
		}
	}
}

func (p *Pipeline) runInScope(ctx context.Context, req any, next Operation) (any, error) {
	if p.txns == nil {
		return next(ctx, req)
	}
	if _, ok := txn.FromContext(ctx); ok {
		// Nested intercepted call inside an open boundary — join it.
		return next(ctx, req)
	}

	scope, err := p.txns.Begin(ctx)
	if err != nil {
		return nil, asBoundaryError("begin", err)
	}

	out, err := next(txn.NewContext(ctx, scope), req)
	if err != nil {
		if rbErr := p.txns.Rollback(scope); rbErr != nil {
			// The boundary itself failed; the domain error rides along as
			// cause but must not be offered for mapping.
			return nil, asBoundaryError("rollback", errors.Join(rbErr, err))
		}
		return nil, err
	}

	if err := p.txns.Commit(scope); err != nil {
		return nil, asBoundaryError("commit", err)
	}
	return out, nil
}

// asBoundaryError guarantees boundary failures are recognizable by the
// translation wrapper even when a Manager returns plain errors.
func asBoundaryError(op string, err error) error {
	var boundary *txn.Error
	if errors.As(err, &boundary) {
		return err
	}
	return &txn.Error{Op: op, Err: err}
}
