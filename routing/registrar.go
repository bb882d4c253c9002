package routing

import (
	"net/http"

	"github.com/km-arc/go-ioc/controller"
	"github.com/km-arc/go-ioc/httpd"
	"github.com/km-arc/go-ioc/intercept"
)

// AddRoute attaches a wrapped operation under the route described by meta.
// The operation receives a *httpd.Request; its outcome is rendered through
// the standard JSON envelopes. Only errors that escaped the operation's
// pipeline reach WriteError, so what leaks here is the generic taxonomy
// mapping, never raw internals.
func (r *Router) AddRoute(name string, op intercept.Operation, meta controller.Metadata) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		res := httpd.NewResponse(w)
		out, err := op(req.Context(), httpd.NewRequest(req))
		if err != nil {
			res.WriteError(err)
			return
		}
		res.WriteResult(out)
	}

	method := meta.Method
	if method == "" {
		method = http.MethodGet
	}
	path := meta.Path
	if path == "" {
		path = "/" + name
	}
	r.mux.Method(method, path, http.HandlerFunc(handler))
}
