package container_test

import (
	"testing"

	"github.com/km-arc/go-ioc/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

type eagerProvider struct {
	container.BaseProvider
	registerCalled bool
	bootCalled     bool
}

func (p *eagerProvider) Register(app *container.Container) {
	p.registerCalled = true
	app.Singleton("eager-svc", func(*container.Resolver) (any, error) { return "eager", nil })
}

func (p *eagerProvider) Boot(app *container.Container) error {
	p.bootCalled = true
	return nil
}

// deferredProvider is lazy — only registered when "deferred-svc" is first resolved.
type deferredProvider struct {
	container.BaseProvider
	registerCalled bool
}

func (p *deferredProvider) Register(app *container.Container) {
	p.registerCalled = true
	app.Singleton("deferred-svc", func(*container.Resolver) (any, error) {
		return &service{name: "deferred-value"}, nil
	})
}

func (p *deferredProvider) IsDeferred() bool   { return true }
func (p *deferredProvider) Provides() []string { return []string{"deferred-svc"} }

// multiProvider registers multiple abstracts.
type multiProvider struct {
	container.BaseProvider
}

func (p *multiProvider) Register(app *container.Container) {
	app.Singleton("alpha", func(*container.Resolver) (any, error) { return "α", nil })
	app.Singleton("beta", func(*container.Resolver) (any, error) { return "β", nil })
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_EagerProvider_RegisterCalled(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	reg.Register(p)

	if !p.registerCalled {
		t.Error("Register() should be called immediately for eager providers")
	}
}

func TestRegistry_EagerProvider_BootCalledAfterBoot(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	reg.Register(p)

	if p.bootCalled {
		t.Error("Boot() should NOT be called before registry.Boot()")
	}

	if err := reg.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	if !p.bootCalled {
		t.Error("Boot() should be called after registry.Boot()")
	}
}

func TestRegistry_EagerProvider_ServiceResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Register(&eagerProvider{})
	if err := reg.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	got := container.MustMake[string](c, "eager-svc")
	if got != "eager" {
		t.Errorf("eager-svc: got %q, want 'eager'", got)
	}
}

func TestRegistry_Boot_IdempotentCallsAreIgnored(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	reg.Register(&eagerProvider{})

	_ = reg.Boot()
	_ = reg.Boot() // second call should be no-op

	if !reg.Booted() {
		t.Error("Booted() should be true after Boot()")
	}
}

func TestRegistry_DuplicateRegister_Ignored(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	reg.Register(p)
	reg.Register(p) // second register of same instance

	if !p.registerCalled {
		t.Error("provider should have been registered once")
	}
	if len(reg.Providers()) != 1 {
		t.Errorf("Providers(): got %d, want 1", len(reg.Providers()))
	}
}

// ── Deferred providers ────────────────────────────────────────────────────────

func TestRegistry_DeferredProvider_NotRegisteredEagerly(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	reg.Register(p)
	_ = reg.Boot()

	if p.registerCalled {
		t.Error("deferred provider Register() should not be called until Resolve()")
	}
}

func TestRegistry_DeferredProvider_RegisteredOnFirstResolve(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	reg.Register(&deferredProvider{})
	_ = reg.Boot()

	got, err := container.Make[*service](c, "deferred-svc")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if got.name != "deferred-value" {
		t.Errorf("deferred-svc: got %q, want 'deferred-value'", got.name)
	}
}

func TestRegistry_DeferredProvider_SingletonScopeSurvivesLazyLoad(t *testing.T) {
	// The placeholder binding is transient, but the provider rebinds the
	// abstract as a singleton during lazy load. The cached result must follow
	// the real binding's scope.
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Register(&deferredProvider{})
	_ = reg.Boot()

	first, _ := container.Make[*service](c, "deferred-svc")
	second, _ := container.Make[*service](c, "deferred-svc")
	if first != second {
		t.Error("lazily loaded singleton should resolve to the identical instance")
	}
}

// ── Multiple providers ────────────────────────────────────────────────────────

func TestRegistry_MultipleProviders_AllServicesResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Register(&multiProvider{})
	reg.Register(&eagerProvider{})
	if err := reg.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	if got := container.MustMake[string](c, "alpha"); got != "α" {
		t.Errorf("alpha: got %q, want 'α'", got)
	}
	if got := container.MustMake[string](c, "beta"); got != "β" {
		t.Errorf("beta: got %q, want 'β'", got)
	}
	if got := container.MustMake[string](c, "eager-svc"); got != "eager" {
		t.Errorf("eager-svc: got %q, want 'eager'", got)
	}
}

// ── BaseProvider defaults ─────────────────────────────────────────────────────

func TestBaseProvider_Defaults(t *testing.T) {
	var p container.BaseProvider
	c := container.New()

	if err := p.Boot(c); err != nil {
		t.Errorf("BaseProvider.Boot: %v", err)
	}
	if p.IsDeferred() {
		t.Error("BaseProvider.IsDeferred() should be false")
	}
	if len(p.Provides()) != 0 {
		t.Error("BaseProvider.Provides() should return empty slice")
	}
}

// ── Boot after registration (late provider) ───────────────────────────────────

func TestRegistry_RegisterAfterBoot_BootsImmediately(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	_ = reg.Boot() // boot before registering

	p := &eagerProvider{}
	reg.Register(p)

	if !p.bootCalled {
		t.Error("provider registered after Boot() should be booted immediately")
	}
}
