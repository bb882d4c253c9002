// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container with auto-registration, for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, pre-built
// instances, aliases, contextual bindings and service providers — and, unlike
// a plain registration table, it can resolve types that were never explicitly
// bound: any type declared through a Descriptor is auto-registered on first
// resolution, its dependency graph resolved recursively and the derived
// record committed back to the table.
//
// Because Go has no runtime constructor reflection worth trusting, the
// descriptor table is explicit: each auto-registrable type supplies its
// ordered dependency list and a build function up front. The resolver walks
// that table instead of inspecting signatures.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Declare: c.MustDescribe(...), c.RegisterSettings(...), providers
//  3. Boot: registry.Boot()        — safe to resolve everything after this
//  4. Serve requests
//
// # Bindings
//
//	// Transient — new instance every Resolve()
//	c.Bind("Clock", func(r *container.Resolver) (any, error) { return clock.New(), nil })
//
//	// Singleton — created once, reused
//	c.Singleton("cache", func(r *container.Resolver) (any, error) {
//	    cfg, err := container.Dep[*CacheSettings](r, "settings.cache")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return cache.New(cfg), nil
//	})
//
//	// Pre-built value
//	c.Instance("config", myConfig)
//
//	// Alias
//	c.Alias("cache", "cacheManager")
//
// # Resolving
//
//	// Untyped
//	raw, err := c.Resolve("cache")
//
//	// Generic (preferred — no type assertion required)
//	cache, err := container.Make[*Cache](c, "cache")
//
// # Auto-registration
//
//	c.MustDescribe(container.Descriptor{
//	    Key:  "UserService",
//	    Deps: []container.Dependency{{Name: "repo", Key: "UserRepository"}},
//	    Build: func(_ *container.Container, args []any) (any, error) {
//	        return NewUserService(args[0].(UserRepository)), nil
//	    },
//	})
//	svc, err := c.Resolve("UserService") // repo resolved first, both cached
//
// Cycles (A needs B needs A) fail with a CycleError naming the full chain;
// a missing required dependency fails with an UnresolvableError. Neither
// leaves a partial singleton behind.
//
// # Settings
//
// Types implementing EnvironmentSettings are loaded from the environment
// instead of constructed:
//
//	type MailSettings struct {
//	    Host string `env:"HOST" default:"localhost"`
//	}
//	func (*MailSettings) EnvPrefix() string { return "MAIL" }
//
//	c.RegisterSettings(&MailSettings{})
//
// # Concurrency
//
// Resolve is safe to call concurrently. Construction is serialized behind a
// build lock so a singleton key never yields two instances; cached singletons
// are returned on a read-locked fast path.
package container
