package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/km-arc/go-ioc/container"
	"github.com/km-arc/go-ioc/providers"
	"github.com/km-arc/go-ioc/queue"
	"github.com/km-arc/go-ioc/routing"
	"github.com/km-arc/go-ioc/txn"
)

func registry(t *testing.T) (*container.Container, *container.ProviderRegistry) {
	t.Helper()
	app := container.New()
	return app, container.NewProviderRegistry(app)
}

func TestLoggingProvider_BindsLogger(t *testing.T) {
	app, reg := registry(t)
	reg.Register(&providers.LoggingServiceProvider{Env: "testing", Debug: true})

	log, err := container.Make[*zap.Logger](app, "logger")
	require.NoError(t, err)
	assert.NotNil(t, log)

	// alias points at the same singleton
	same, err := container.Make[*zap.Logger](app, "log")
	require.NoError(t, err)
	assert.Same(t, log, same)
}

func TestConfigProvider_InstallsSettingsLoader(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "30")

	app, reg := registry(t)
	reg.Register(&providers.ConfigServiceProvider{})

	require.NoError(t, app.RegisterSettings(&cacheSettings{}))
	got, err := container.Make[*cacheSettings](app, container.TypeKey(&cacheSettings{}))
	require.NoError(t, err)
	assert.Equal(t, 30, got.TTLSeconds)
}

type cacheSettings struct {
	TTLSeconds int `env:"TTL_SECONDS" default:"60"`
}

func (*cacheSettings) EnvPrefix() string { return "CACHE" }

func TestDatabaseProvider_BindsConnectionAndManager(t *testing.T) {
	app, reg := registry(t)
	reg.Register(&providers.DatabaseServiceProvider{DSN: "file::memory:"})

	db, err := container.Make[*gorm.DB](app, "db")
	require.NoError(t, err)
	assert.NotNil(t, db)

	mgr, err := container.Make[txn.Manager](app, "txn.manager")
	require.NoError(t, err)
	assert.NotNil(t, mgr)
}

func TestRoutingProvider_BindsRouterWithLogger(t *testing.T) {
	app, reg := registry(t)
	reg.Register(&providers.LoggingServiceProvider{Env: "testing"})
	reg.Register(&providers.RoutingServiceProvider{})

	r, err := container.Make[*routing.Router](app, "router")
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestQueueProvider_BindsWorker(t *testing.T) {
	app, reg := registry(t)
	reg.Register(&providers.LoggingServiceProvider{Env: "testing"})
	reg.Register(&providers.QueueServiceProvider{PoolSize: 2})

	w, err := container.Make[*queue.Worker](app, "queue")
	require.NoError(t, err)
	require.NotNil(t, w)
	w.Release()
}

func TestTelemetryProvider_BindsTracer(t *testing.T) {
	app, reg := registry(t)
	reg.Register(&providers.TelemetryServiceProvider{ServiceName: "tests"})

	tr, err := app.Resolve("tracer")
	require.NoError(t, err)
	assert.NotNil(t, tr)
}
