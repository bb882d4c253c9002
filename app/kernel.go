// Package app assembles the container, the provider registry and the delivery
// adapters into a runnable application, the way Laravel's bootstrap/app.php
// wires Illuminate\Foundation\Application.
package app

import (
	"context"
	"fmt"
	"net/http"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/km-arc/go-ioc/config"
	"github.com/km-arc/go-ioc/container"
	"github.com/km-arc/go-ioc/controller"
	"github.com/km-arc/go-ioc/providers"
	"github.com/km-arc/go-ioc/queue"
	"github.com/km-arc/go-ioc/routing"
)

// Application is the top-level application container. It embeds the IoC
// Container and the ProviderRegistry so user code can call app.Bind(),
// app.Singleton(), app.Describe() and app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates and bootstraps the application. The core providers register in
// dependency order: configuration first, then logging and telemetry, then
// persistence, then the delivery adapters.
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.LoggingServiceProvider{
		Env:   config.Get("APP_ENV", "local"),
		Debug: config.GetBool("APP_DEBUG", false),
	})
	registry.Register(&providers.TelemetryServiceProvider{
		ServiceName: config.Get("APP_NAME", "app"),
	})
	registry.Register(&providers.DatabaseServiceProvider{
		DSN: config.Get("DB_DSN", ""),
	})
	registry.Register(&providers.RoutingServiceProvider{})
	registry.Register(&providers.QueueServiceProvider{
		PoolSize: config.GetInt("QUEUE_POOL_SIZE", 8),
	})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all registered providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// ── Core accessors ───────────────────────────────────────────────────────────

// Router resolves the HTTP router.
func (a *Application) Router() *routing.Router {
	return container.MustMake[*routing.Router](a.Container, "router")
}

// Logger resolves the structured logger.
func (a *Application) Logger() *zap.Logger {
	return container.MustMake[*zap.Logger](a.Container, "logger")
}

// DB resolves the database connection.
func (a *Application) DB() *gorm.DB {
	return container.MustMake[*gorm.DB](a.Container, "db")
}

// Queue resolves the background worker pool.
func (a *Application) Queue() *queue.Worker {
	return container.MustMake[*queue.Worker](a.Container, "queue")
}

// ── Controllers ──────────────────────────────────────────────────────────────

// MountHTTP resolves each controller key from the container and registers its
// operations on the router. Controllers are described or bound beforehand;
// the container builds them with their dependency graph on first mount.
func (a *Application) MountHTTP(keys ...string) error {
	router := a.Router()
	for _, key := range keys {
		ctrl, err := container.Make[controller.Controller](a.Container, key)
		if err != nil {
			return fmt.Errorf("app: mounting [%s]: %w", key, err)
		}
		ctrl.Register(router)
	}
	return nil
}

// ── Run ──────────────────────────────────────────────────────────────────────

// Run boots the application (if needed) and starts the HTTP server on
// APP_PORT (default 8000). It blocks until the server exits.
func (a *Application) Run() error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	addr := ":" + config.Get("APP_PORT", "8000")
	log := a.Logger()
	log.Info("server starting",
		zap.String("addr", addr),
		zap.String("env", a.Environment()),
	)
	return http.ListenAndServe(addr, a.Router())
}

// Shutdown releases resources held by long-lived services. Only services that
// were actually resolved are touched.
func (a *Application) Shutdown(ctx context.Context) {
	if a.Resolved("queue") {
		a.Queue().Release()
	}
	if a.Resolved("tracer.provider") {
		tp := container.MustMake[*sdktrace.TracerProvider](a.Container, "tracer.provider")
		_ = tp.Shutdown(ctx)
	}
}

// ── Environment ──────────────────────────────────────────────────────────────

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return config.Get("APP_ENV", "local") }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
