package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/km-arc/go-ioc/apperr"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with Laravel-style helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// ── JSON responses ────────────────────────────────────────────────────────────

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Created sends 201 JSON: {"data": v}
func (res *Response) Created(v any) {
	res.JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.w.WriteHeader(http.StatusNoContent)
}

// Error sends a JSON error response.
//
//	res.Error(http.StatusNotFound, "Resource not found")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// ── Operation results ─────────────────────────────────────────────────────────

// Result is a delivery-shaped operation outcome: an explicit status plus the
// body to encode. Operations (and HandleException overrides) return it when
// the default 200 envelope is not what they mean.
type Result struct {
	Status int
	Body   any
}

// ErrorResult builds a Result carrying the standard error envelope. The usual
// producer is a HandleException override mapping a domain error:
//
//	return httpd.ErrorResult(http.StatusNotFound, apperr.Message(err)), nil
func ErrorResult(status int, message string) *Result {
	return &Result{Status: status, Body: envelope{"message": message}}
}

// CreatedResult builds a 201 Result with the standard data envelope.
func CreatedResult(v any) *Result {
	return &Result{Status: http.StatusCreated, Body: envelope{"data": v}}
}

// WriteResult renders an operation outcome:
//
//   - *Result          → its status and body verbatim
//   - nil              → 204
//   - anything else    → 200 {"data": v}
func (res *Response) WriteResult(out any) {
	switch v := out.(type) {
	case *Result:
		res.JSON(v.Status, v.Body)
	case nil:
		res.NoContent()
	default:
		res.Success(v)
	}
}

// WriteError renders an error that escaped translation, using the domain
// error taxonomy for status and message. Raw internals never leak: anything
// unclassified becomes a generic 500.
func (res *Response) WriteError(err error) {
	res.Error(apperr.HTTPStatus(err), apperr.Message(err))
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any
