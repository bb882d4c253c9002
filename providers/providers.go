// Package providers bundles the framework-level service providers an
// application registers before its own. The registration order mirrors the
// boot sequence: configuration first, then logging, telemetry, persistence,
// and finally the delivery adapters that depend on all of the above.
package providers

import (
	"fmt"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/km-arc/go-ioc/config"
	"github.com/km-arc/go-ioc/container"
	"github.com/km-arc/go-ioc/logging"
	"github.com/km-arc/go-ioc/queue"
	"github.com/km-arc/go-ioc/routing"
	"github.com/km-arc/go-ioc/txn"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads .env files and installs the environment settings
// loader, so every settings prototype described on the container is filled
// from the process environment.
//
// Bound abstracts: none — it wires the loader, settings types bind themselves
// through their descriptors.
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	config.LoadEnvFiles(p.EnvFiles...)
	app.UseSettingsLoader(config.LoadInto)
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider registers the structured logger.
//
// Bound abstracts:
//   - "logger" → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Env   string // "production" selects the JSON encoder; anything else, console
	Debug bool
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	env, debug := p.Env, p.Debug
	app.Singleton("logger", func(r *container.Resolver) (any, error) {
		return logging.New(env, debug)
	})
	app.Alias("logger", "log")
}

// ── TelemetryServiceProvider ──────────────────────────────────────────────────

// TelemetryServiceProvider registers the tracer the interception pipelines
// open their operation spans on.
//
// Bound abstracts:
//   - "tracer.provider" → *sdktrace.TracerProvider
//   - "tracer"          → trace.Tracer
type TelemetryServiceProvider struct {
	container.BaseProvider
	ServiceName string
}

func (p *TelemetryServiceProvider) Register(app *container.Container) {
	name := p.ServiceName
	if name == "" {
		name = "app"
	}
	app.Singleton("tracer.provider", func(r *container.Resolver) (any, error) {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, nil
	})
	app.Singleton("tracer", func(r *container.Resolver) (any, error) {
		tp, err := container.Dep[*sdktrace.TracerProvider](r, "tracer.provider")
		if err != nil {
			return nil, err
		}
		return tp.Tracer(name), nil
	})
}

// ── DatabaseServiceProvider ───────────────────────────────────────────────────

// DatabaseServiceProvider registers the gorm connection and the transaction
// manager the interception boundaries begin and commit on.
//
// Bound abstracts:
//   - "db"          → *gorm.DB
//   - "txn.manager" → txn.Manager
type DatabaseServiceProvider struct {
	container.BaseProvider
	DSN string // sqlite DSN, default: file::memory:?cache=shared
}

func (p *DatabaseServiceProvider) Register(app *container.Container) {
	dsn := p.DSN
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	app.Singleton("db", func(r *container.Resolver) (any, error) {
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("providers: opening database: %w", err)
		}
		return db, nil
	})
	app.Singleton("txn.manager", func(r *container.Resolver) (any, error) {
		db, err := container.Dep[*gorm.DB](r, "db")
		if err != nil {
			return nil, err
		}
		return txn.NewGormManager(db), nil
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router, wired with the structured
// request logger.
//
// Bound abstracts:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(r *container.Resolver) (any, error) {
		log, err := container.Dep[*zap.Logger](r, "logger")
		if err != nil {
			return nil, err
		}
		return routing.New(log), nil
	})
}

// ── QueueServiceProvider ──────────────────────────────────────────────────────

// QueueServiceProvider registers the background worker pool.
//
// Bound abstracts:
//   - "queue" → *queue.Worker
type QueueServiceProvider struct {
	container.BaseProvider
	PoolSize int // default: 8
}

func (p *QueueServiceProvider) Register(app *container.Container) {
	size := p.PoolSize
	if size <= 0 {
		size = 8
	}
	app.Singleton("queue", func(r *container.Resolver) (any, error) {
		log, err := container.Dep[*zap.Logger](r, "logger")
		if err != nil {
			return nil, err
		}
		return queue.NewWorker(size, log)
	})
}
