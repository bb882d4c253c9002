// Package httpd provides the request and response helpers the HTTP delivery
// adapter is built on.
//
// # Request
//
// Request wraps *http.Request with a fluent API mirroring Laravel's
// Illuminate\Http\Request. It is the value intercepted operations receive as
// their request argument when invoked over HTTP.
//
//	req := in.(*httpd.Request)
//
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	id    := req.Param("id")        // chi route param
//	page  := req.Query("page", "1")
//	token := req.BearerToken()
//
// # Response
//
// Response wraps http.ResponseWriter. The HTTP registrar renders operation
// outcomes through WriteResult and escaped errors through WriteError:
//
//	res.Success(data)              // 200 {"data": ...}
//	res.Created(data)              // 201 {"data": ...}
//	res.NoContent()                // 204
//	res.Error(404, "not here")     // {"message": "not here"}
//
// Result lets an operation (or an exception-handler override) choose its own
// status:
//
//	return httpd.CreatedResult(user), nil
//	return httpd.ErrorResult(http.StatusNotFound, "user missing"), nil
package httpd
