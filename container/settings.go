package container

import "fmt"

// ── Environment settings ──────────────────────────────────────────────────────

// EnvironmentSettings is the capability marker for externally configured
// settings objects. Types implementing it are auto-registered with a factory
// that loads them from the environment instead of recursive construction —
// the resolver checks the capability, never the type name.
//
//	type MailSettings struct {
//	    Host string `env:"HOST" default:"localhost"`
//	    Port int    `env:"PORT" default:"587"`
//	}
//
//	func (*MailSettings) EnvPrefix() string { return "MAIL" }
type EnvironmentSettings interface {
	// EnvPrefix returns the environment-variable prefix the settings are
	// loaded under (e.g. "MAIL" → MAIL_HOST, MAIL_PORT).
	EnvPrefix() string
}

// SettingsLoader fills target from environment variables scoped by prefix.
// The framework default is config.LoadInto, installed by the config service
// provider; tests install stubs.
type SettingsLoader func(prefix string, target any) error

// UseSettingsLoader installs the loader used by settings factories.
func (c *Container) UseSettingsLoader(l SettingsLoader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settingsLoader = l
}

// RegisterSettings declares a settings prototype for auto-registration under
// its type key. The prototype itself becomes the singleton once loaded.
//
//	c.RegisterSettings(&MailSettings{})
func (c *Container) RegisterSettings(proto EnvironmentSettings) error {
	return c.Describe(Descriptor{Key: TypeKey(proto), Prototype: proto})
}

// settingsFactory builds the environment-loading factory for a settings
// descriptor. Settings are singletons, so the prototype is filled in place
// and returned — no cloning.
func (c *Container) settingsFactory(d *Descriptor) Factory {
	return func(r *Resolver) (any, error) {
		settings, ok := d.Prototype.(EnvironmentSettings)
		if !ok {
			// Describe validates this; reaching here means the descriptor
			// was mutated after declaration.
			return nil, &DescriptorError{Key: d.Key, Reason: "prototype does not implement EnvironmentSettings"}
		}

		r.c.mu.RLock()
		load := r.c.settingsLoader
		r.c.mu.RUnlock()
		if load == nil {
			return nil, fmt.Errorf("no settings loader installed (call UseSettingsLoader first)")
		}

		if err := load(settings.EnvPrefix(), settings); err != nil {
			return nil, fmt.Errorf("loading settings for prefix %q: %w", settings.EnvPrefix(), err)
		}
		return settings, nil
	}
}
