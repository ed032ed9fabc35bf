package extension

import (
	"time"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/payment"
	"github.com/xraph/storefront/plugin"
	"github.com/xraph/storefront/storage"
	"github.com/xraph/storefront/store"
)

// Option configures the Storefront Forge extension.
type Option func(*Extension)

// WithStore sets the store for the storefront engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a storefront.Option through to the underlying engine.
func WithEngineOption(opt storefront.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a storefront plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, storefront.WithPlugin(p))
	}
}

// WithGateway sets the payment gateway for the engine.
func WithGateway(g payment.Gateway) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, storefront.WithGateway(g))
	}
}

// WithUploader sets the object storage uploader for the engine.
func WithUploader(u storage.Uploader) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, storefront.WithUploader(u))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for storefront routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithBillExpiry sets how long pending bills stay payable.
func WithBillExpiry(d time.Duration) Option {
	return func(e *Extension) { e.config.BillExpiry = d }
}

// WithSweepInterval sets how often overdue pending bills are expired.
func WithSweepInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.SweepInterval = d }
}

// WithWebhookSecret sets the shared secret for webhook signature verification.
func WithWebhookSecret(secret string) Option {
	return func(e *Extension) { e.config.WebhookSecret = secret }
}
