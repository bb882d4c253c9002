package routing_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/km-arc/go-ioc/apperr"
	"github.com/km-arc/go-ioc/controller"
	"github.com/km-arc/go-ioc/httpd"
	"github.com/km-arc/go-ioc/routing"
)

func TestRouter_Get_MatchesMethodAndPath(t *testing.T) {
	r := routing.New(nil)
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("pong"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	if rec.Body.String() != "pong" {
		t.Errorf("body: got %q, want pong", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/ping", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /ping: got %d, want 405", rec.Code)
	}
}

func TestRouter_Prefix_NestsRoutes(t *testing.T) {
	r := routing.New(nil)
	r.Prefix("/api", func(api *routing.Router) {
		api.Get("/users", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/users: got %d, want 200", rec.Code)
	}
}

func TestRouter_Param_ReadsRouteParams(t *testing.T) {
	r := routing.New(nil)
	r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(routing.Param(req, "id")))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/users/42", nil))
	if rec.Body.String() != "42" {
		t.Errorf("param: got %q, want 42", rec.Body.String())
	}
}

func TestRouter_Middleware_RunsAroundHandlers(t *testing.T) {
	r := routing.New(nil)
	r.Middleware(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Touched", "yes")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("X-Touched") != "yes" {
		t.Error("middleware did not run")
	}
}

// ── AddRoute (Registrar) ─────────────────────────────────────────────────────

func TestAddRoute_SuccessRendersDataEnvelope(t *testing.T) {
	r := routing.New(nil)
	r.AddRoute("users.show", func(ctx context.Context, in any) (any, error) {
		req := in.(*httpd.Request)
		return map[string]string{"id": req.Param("id")}, nil
	}, controller.Metadata{Method: "GET", Path: "/users/{id}"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/users/7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data"`) || !strings.Contains(rec.Body.String(), `"7"`) {
		t.Errorf("body: %s, want a data envelope with the route param", rec.Body.String())
	}
}

func TestAddRoute_ResultControlsStatus(t *testing.T) {
	r := routing.New(nil)
	r.AddRoute("users.store", func(ctx context.Context, in any) (any, error) {
		return httpd.CreatedResult(map[string]int{"id": 1}), nil
	}, controller.Metadata{Method: "POST", Path: "/users"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/users", nil))
	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rec.Code)
	}
}

func TestAddRoute_EscapedErrorMapsThroughTaxonomy(t *testing.T) {
	r := routing.New(nil)
	r.AddRoute("users.show", func(ctx context.Context, in any) (any, error) {
		return nil, apperr.NotFound("no such user")
	}, controller.Metadata{Method: "GET", Path: "/users/{id}"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/users/404", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no such user") {
		t.Errorf("body: %s", rec.Body.String())
	}
}

func TestAddRoute_DefaultsToGetAndName(t *testing.T) {
	r := routing.New(nil)
	r.AddRoute("health", func(ctx context.Context, in any) (any, error) {
		return "ok", nil
	}, controller.Metadata{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}
