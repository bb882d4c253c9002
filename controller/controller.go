// Package controller defines the contract between constructed controllers and
// the delivery mechanisms that invoke them. A controller declares its
// dependencies through its constructor (the container supplies them), wraps
// its public operations through an intercept.Pipeline, and attaches them to a
// Registrar — HTTP router, task queue or console, the controller does not
// care which.
package controller

import (
	"context"

	"github.com/km-arc/go-ioc/intercept"
)

// Metadata describes how a delivery adapter should expose an operation.
// Adapters read what applies to them and ignore the rest.
type Metadata struct {
	// Method and Path drive HTTP registration (GET /users/{id}).
	Method string
	Path   string

	// Summary is a human-readable one-liner (console help, logs).
	Summary string
}

// Registrar is any delivery mechanism that can attach a named operation.
//
//	// HTTP: routing.Router
//	// queue: queue.Worker
//	// CLI:   console.Kernel
type Registrar interface {
	AddRoute(name string, op intercept.Operation, meta Metadata)
}

// Controller is the capability every registered controller satisfies.
type Controller interface {
	// Register attaches the controller's wrapped operations to the registrar.
	// Safe to call once per controller instance per registrar; the pipeline's
	// wrap-once cache keeps repeated calls from stacking wrappers.
	Register(r Registrar)

	// HandleException maps a domain error to a delivery-appropriate result.
	// Unmapped kinds must be delegated down the override chain, ending at the
	// default re-raise.
	HandleException(ctx context.Context, err error) (any, error)
}

// Base is the embeddable default: HandleException re-raises unchanged.
// Concrete controllers override it, pattern-match the kinds they know, and
// delegate the rest:
//
//	func (c *UserController) HandleException(ctx context.Context, err error) (any, error) {
//	    if apperr.Is(err, apperr.KindNotFound) {
//	        return httpd.ErrorResult(http.StatusNotFound, apperr.Message(err)), nil
//	    }
//	    return c.Base.HandleException(ctx, err)
//	}
type Base struct{}

// HandleException re-raises the error unchanged.
func (Base) HandleException(_ context.Context, err error) (any, error) {
	return nil, err
}
