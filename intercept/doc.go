// Package intercept wraps controller operations with cross-cutting behavior
// the operation's own code never sees: error translation, transaction
// boundaries and trace spans.
//
// Wrapping is explicit decoration, applied at controller-construction time —
// there is no runtime enumeration of methods. A controller builds one
// Pipeline for itself and wraps each public operation as it registers it:
//
//	func NewUserController(users *UserService, mgr txn.Manager, tracer trace.Tracer) *UserController {
//	    c := &UserController{users: users}
//	    c.pipe = intercept.New("UserController", c,
//	        intercept.WithTransactions(mgr),
//	        intercept.WithTracer(tracer),
//	    )
//	    return c
//	}
//
//	func (c *UserController) Register(r controller.Registrar) {
//	    r.AddRoute("users.show", c.pipe.Wrap("Show", c.show),
//	        controller.Metadata{Method: "GET", Path: "/users/{id}"})
//	}
//
// Unexported methods like show stay untouched — only what passes through
// Wrap is intercepted.
//
// # Wrapping order
//
// The chain is fixed: error translation is always outermost, so every wrapper
// beneath it is covered by exception mapping. The transactional wrapper sits
// inside it; a rolled-back operation error therefore still reaches the
// controller's HandleException hook, while a commit or rollback failure
// (*txn.Error) bypasses translation entirely and propagates.
package intercept
