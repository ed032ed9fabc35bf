// Package extension provides the Forge extension adapter for Storefront.
//
// It implements the forge.Extension interface to integrate Storefront
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.storefront" or
// "storefront" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/store"
	"github.com/xraph/storefront/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "storefront"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Multi-tenant commerce engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Storefront as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *storefront.Storefront
	store      store.Store
	engineOpts []storefront.Option
}

// New creates a new Storefront Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Storefront instance.
// This is nil until Register is called.
func (e *Extension) Engine() *storefront.Storefront { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the storefront engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts := e.buildEngineOpts()

	eng := storefront.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*storefront.Storefront, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("storefront: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("storefront: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs storefront.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []storefront.Option {
	opts := make([]storefront.Option, 0, len(e.engineOpts)+4)

	// DisableMigrate skips schema migration only; the engine still starts
	// so plugins initialize and the expiry sweep runs.
	if e.config.DisableMigrate {
		opts = append(opts, storefront.WithoutMigrate())
	}
	if e.config.BillExpiry > 0 {
		opts = append(opts, storefront.WithBillExpiry(e.config.BillExpiry))
	}
	if e.config.SweepInterval > 0 {
		opts = append(opts, storefront.WithSweepInterval(e.config.SweepInterval))
	}
	if e.config.WebhookSecret != "" {
		opts = append(opts, storefront.WithWebhookSecret(e.config.WebhookSecret))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("storefront: configuration is required but not found in config files; " +
				"ensure 'extensions.storefront' or 'storefront' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("storefront: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("bill_expiry", e.config.BillExpiry),
		forge.F("sweep_interval", e.config.SweepInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.storefront" first (namespaced pattern).
	if cm.IsSet("extensions.storefront") {
		if err := cm.Bind("extensions.storefront", &cfg); err == nil {
			e.Logger().Debug("storefront: loaded config from file",
				forge.F("key", "extensions.storefront"),
			)
			return cfg, true
		}
		e.Logger().Warn("storefront: failed to bind extensions.storefront config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "storefront" key.
	if cm.IsSet("storefront") {
		if err := cm.Bind("storefront", &cfg); err == nil {
			e.Logger().Debug("storefront: loaded config from file",
				forge.F("key", "storefront"),
			)
			return cfg, true
		}
		e.Logger().Warn("storefront: failed to bind storefront config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BillExpiry == 0 {
		cfg.BillExpiry = defaults.BillExpiry
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.WebhookSecret == "" && programmaticConfig.WebhookSecret != "" {
		yamlConfig.WebhookSecret = programmaticConfig.WebhookSecret
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.BillExpiry == 0 && programmaticConfig.BillExpiry != 0 {
		yamlConfig.BillExpiry = programmaticConfig.BillExpiry
	}
	if yamlConfig.SweepInterval == 0 && programmaticConfig.SweepInterval != 0 {
		yamlConfig.SweepInterval = programmaticConfig.SweepInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
