package container

import (
	"fmt"
	"reflect"
	"sync"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Scope is the lifetime policy of a registration.
type Scope int

const (
	// Singleton — one shared instance, cached after first resolution.
	Singleton Scope = iota
	// Transient — a new instance on every resolution.
	Transient
)

func (s Scope) String() string {
	if s == Transient {
		return "transient"
	}
	return "singleton"
}

// Factory builds a concrete value. It receives the Resolver of the current
// resolution request so nested lookups share one cycle-detection context.
type Factory func(r *Resolver) (any, error)

// binding holds a registered factory and its lifetime scope.
type binding struct {
	factory Factory
	scope   Scope
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container — mirrors Laravel's
// Illuminate\Container\Container, with two departures: every resolution
// returns an error instead of panicking, and unregistered keys are
// auto-registered from their declared Descriptor (see descriptor.go).
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Resolve (method and generic helper)
//   - Auto-registration with cycle detection
//   - Contextual binding (when A needs B, give it C)
//   - Environment-settings auto-registration (see settings.go)
type Container struct {
	mu sync.RWMutex

	// buildMu serializes the read-check-construct-register sequence so two
	// concurrent resolutions of one key cannot mint two singletons. The
	// cached-instance fast path does not take it.
	buildMu sync.Mutex

	// abstract → binding
	bindings map[string]*binding

	// abstract → resolved singleton instance
	instances map[string]any

	// alias → abstract (canonical key)
	aliases map[string]string

	// abstract → declared dependency descriptor
	descriptors map[string]*Descriptor

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	// fills EnvironmentSettings prototypes from the environment
	settingsLoader SettingsLoader
}

// New creates an empty container.
func New() *Container {
	c := &Container{
		bindings:    make(map[string]*binding),
		instances:   make(map[string]any),
		aliases:     make(map[string]string),
		descriptors: make(map[string]*Descriptor),
		contextual:  make(map[string]map[string]Factory),
	}
	// Bind the container to itself — like Laravel's $app->instance()
	c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Resolve) factory.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(r *container.Resolver) (any, error) {
//	    db, err := container.Dep[*gorm.DB](r, "db")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &GormUserRepository{DB: db}, nil
//	})
func (c *Container) Bind(abstract string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind(abstract, factory, Transient)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
func (c *Container) Singleton(abstract string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind(abstract, factory, Singleton)
}

// Instance registers a pre-built value as a resolved singleton.
//
//	// Laravel: $app->instance(Config::class, $config)
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.instances[key] = instance
}

// bind is the internal registration helper (must hold mu).
func (c *Container) bind(abstract string, factory Factory, scope Scope) {
	key := c.canonical(abstract)

	// Drop any existing singleton instance so it is rebuilt with the new factory
	delete(c.instances, key)

	c.bindings[key] = &binding{factory: factory, scope: scope}
}

// Alias registers an alternative name for an abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.aliases[alias] = c.canonical(abstract)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns the instance registered under abstract, constructing it
// (and, for unregistered keys, auto-registering it) on first use.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Resolve("UserRepository")
func (c *Container) Resolve(abstract string) (any, error) {
	key := c.canonical(abstract)

	// Fast path: cached singleton, no build lock needed.
	c.mu.RLock()
	inst, ok := c.instances[key]
	c.mu.RUnlock()
	if ok {
		return inst, nil
	}

	c.buildMu.Lock()
	defer c.buildMu.Unlock()
	return c.resolve(key, &resolutionContext{})
}

// MustResolve is Resolve that panics on error. Intended for bootstrap code
// where a failed resolution is fatal anyway.
func (c *Container) MustResolve(abstract string) any {
	inst, err := c.Resolve(abstract)
	if err != nil {
		panic(err)
	}
	return inst
}

// resolve is the internal resolver. It runs with buildMu held and threads the
// per-request resolutionContext through every nested lookup.
func (c *Container) resolve(abstract string, rc *resolutionContext) (any, error) {
	key := c.canonical(abstract)

	// Re-check the instance cache: another caller may have built the
	// singleton between our fast-path check and taking buildMu.
	c.mu.RLock()
	inst, ok := c.instances[key]
	c.mu.RUnlock()
	if ok {
		return inst, nil
	}

	// Contextual binding: the immediate parent on the build stack may have
	// declared its own factory for this abstract.
	if parent, ok := rc.top(); ok {
		if f := c.contextualFactory(parent, key); f != nil {
			return c.runFactory(key, f, Transient, rc, false)
		}
	}

	c.mu.RLock()
	b, ok := c.bindings[key]
	c.mu.RUnlock()
	if ok {
		return c.runFactory(key, b.factory, b.scope, rc, true)
	}

	// Unregistered — derive a registration from the declared descriptor.
	return c.autoRegister(key, rc)
}

// runFactory executes a factory under cycle detection, optionally caching the
// result. The scope is re-read from the live binding after the factory runs:
// deferred providers replace the placeholder binding during execution and the
// replacement's scope is the one that counts.
func (c *Container) runFactory(key string, f Factory, scope Scope, rc *resolutionContext, cacheable bool) (any, error) {
	if err := rc.push(key); err != nil {
		return nil, err
	}
	inst, err := f(&Resolver{c: c, rc: rc})
	rc.pop()
	if err != nil {
		return nil, fmt.Errorf("container: building [%s]: %w", key, err)
	}

	if cacheable {
		c.mu.Lock()
		if b, ok := c.bindings[key]; ok {
			scope = b.scope
		}
		if scope == Singleton {
			c.instances[key] = inst
		}
		c.mu.Unlock()
	}
	return inst, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered or resolved.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Resolved returns true if the abstract has been resolved at least once.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes all registrations for an abstract (binding, instance and
// descriptor). Mostly useful in tests.
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
	delete(c.descriptors, key)
}

// canonical resolves an alias to its canonical key (must hold mu or be
// called from a context that tolerates a racy alias read).
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Resolver ──────────────────────────────────────────────────────────────────

// Resolver is the container view handed to factories. Lookups made through it
// join the cycle-detection context of the resolution request that invoked the
// factory, so a factory chain A → B → A is reported as a cycle instead of
// recursing forever.
type Resolver struct {
	c  *Container
	rc *resolutionContext
}

// Resolve resolves a dependency within the current resolution request.
func (r *Resolver) Resolve(abstract string) (any, error) {
	return r.c.resolve(abstract, r.rc)
}

// Container returns the owning container (for registrations, not lookups).
func (r *Resolver) Container() *Container { return r.c }

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, the stable lookup key
// for type-identity registrations.
//
//	key := container.TypeKey((*UserService)(nil))  // "myapp/services.UserService"
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Make is a generic helper that calls Resolve and type-asserts the result.
//
//	repo, err := container.Make[*GormUserRepository](c, "UserRepository")
func Make[T any](c *Container, abstract string) (T, error) {
	var zero T
	inst, err := c.Resolve(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("container: Make[%T]: [%s] resolved to %T", zero, abstract, inst)
	}
	return typed, nil
}

// MustMake is Make that panics on error — for bootstrap code.
func MustMake[T any](c *Container, abstract string) T {
	typed, err := Make[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return typed
}

// Dep resolves a typed dependency inside a factory.
//
//	c.Singleton("mailer", func(r *container.Resolver) (any, error) {
//	    cfg, err := container.Dep[*MailSettings](r, "settings.mail")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return mail.NewSMTP(cfg), nil
//	})
func Dep[T any](r *Resolver, abstract string) (T, error) {
	var zero T
	inst, err := r.Resolve(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("container: Dep[%T]: [%s] resolved to %T", zero, abstract, inst)
	}
	return typed, nil
}
