package container

// ── Dependency descriptors ────────────────────────────────────────────────────

// Dependency is one constructor parameter of a described type: the lookup key
// it must be resolved from, plus an optional default used when resolution of
// an optional dependency fails.
type Dependency struct {
	// Name is the constructor parameter name, used in diagnostics.
	Name string

	// Key is the lookup key of the required dependency.
	Key string

	// Optional marks a parameter with a default: if resolution of Key fails,
	// Default is supplied instead of propagating the failure.
	Optional bool

	// Default is the value used when an Optional dependency cannot be
	// resolved (or declares no Key at all).
	Default any
}

// Descriptor declares how an unregistered type is constructed: an ordered
// dependency list and a build function receiving the resolved values
// positionally. It replaces constructor reflection — every auto-registrable
// type supplies its descriptor up front via Describe.
//
//	c.Describe(container.Descriptor{
//	    Key:  "UserService",
//	    Deps: []container.Dependency{{Name: "repo", Key: "UserRepository"}},
//	    Build: func(_ *container.Container, args []any) (any, error) {
//	        return NewUserService(args[0].(UserRepository)), nil
//	    },
//	})
//
// A Descriptor with a nil Build must carry a Prototype implementing
// EnvironmentSettings; the resolver then auto-registers it with a factory
// that loads the prototype from the environment (see settings.go).
type Descriptor struct {
	// Key is the lookup key the descriptor is registered under.
	Key string

	// Deps are the constructor parameters, in positional order.
	Deps []Dependency

	// Build constructs the instance from the resolved dependency values,
	// supplied in Deps order.
	Build func(c *Container, args []any) (any, error)

	// Prototype is the settings instance to fill from the environment when
	// Build is nil. Must implement EnvironmentSettings.
	Prototype any
}

// Describe declares a descriptor so the key can be auto-registered on first
// resolution. Invalid descriptors fail immediately — a parameter without a
// resolvable key and without a default is a configuration error, not
// something to skip at resolve time.
func (c *Container) Describe(d Descriptor) error {
	if d.Key == "" {
		return &DescriptorError{Key: d.Key, Reason: "empty lookup key"}
	}
	if d.Build == nil {
		if _, ok := d.Prototype.(EnvironmentSettings); !ok {
			return &DescriptorError{Key: d.Key, Reason: "no Build function and no EnvironmentSettings prototype"}
		}
	}
	for _, dep := range d.Deps {
		if dep.Key == "" && !dep.Optional {
			return &DescriptorError{
				Key:    d.Key,
				Reason: "parameter [" + dep.Name + "] has no lookup key and no default",
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(d.Key)
	if _, exists := c.descriptors[key]; exists {
		return &DescriptorError{Key: d.Key, Reason: "already described"}
	}
	c.descriptors[key] = &d
	return nil
}

// MustDescribe is Describe that panics on error — for init-time declaration
// tables where a bad descriptor should abort startup.
func (c *Container) MustDescribe(d Descriptor) {
	if err := c.Describe(d); err != nil {
		panic(err)
	}
}

// ── Auto-registration ─────────────────────────────────────────────────────────

// autoRegister derives a registration for an unregistered key from its
// descriptor, resolves the dependency graph bottom-up, and commits the
// derived record before returning the instance. Auto-registered records are
// always singletons. Runs with buildMu held.
func (c *Container) autoRegister(key string, rc *resolutionContext) (any, error) {
	c.mu.RLock()
	d, ok := c.descriptors[key]
	c.mu.RUnlock()
	if !ok {
		return nil, &UnresolvableError{Key: key, Chain: rc.chain()}
	}

	if err := rc.push(key); err != nil {
		return nil, err
	}
	defer rc.pop()

	factory := c.derivedFactory(d)
	inst, err := factory(&Resolver{c: c, rc: rc})
	if err != nil {
		return nil, err
	}

	// Commit the derived record. The instance cache makes repeat resolutions
	// hit the fast path; the binding keeps the registration table complete.
	c.mu.Lock()
	c.bindings[key] = &binding{factory: factory, scope: Singleton}
	c.instances[key] = inst
	c.mu.Unlock()

	return inst, nil
}

// derivedFactory turns a descriptor into a Factory. Settings prototypes get
// an environment-loading factory; everything else resolves its dependency
// list and builds positionally.
func (c *Container) derivedFactory(d *Descriptor) Factory {
	if d.Build == nil {
		return c.settingsFactory(d)
	}
	return func(r *Resolver) (any, error) {
		args := make([]any, len(d.Deps))
		for i, dep := range d.Deps {
			if dep.Key == "" {
				args[i] = dep.Default
				continue
			}
			v, err := r.Resolve(dep.Key)
			if err != nil {
				if dep.Optional {
					args[i] = dep.Default
					continue
				}
				return nil, err
			}
			args[i] = v
		}
		return d.Build(r.Container(), args)
	}
}
