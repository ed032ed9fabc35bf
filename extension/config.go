package extension

import "time"

// Config holds the Storefront extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.storefront" or "storefront" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for storefront routes (default: "/storefront").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// BillExpiry is how long a pending bill stays payable before the sweep
	// marks it expired (default: 2h).
	BillExpiry time.Duration `json:"bill_expiry" mapstructure:"bill_expiry" yaml:"bill_expiry"`

	// SweepInterval is how frequently overdue pending bills are expired.
	// Zero disables the sweep (default: 1m).
	SweepInterval time.Duration `json:"sweep_interval" mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// WebhookSecret is the shared secret used to verify payment webhook
	// signatures. Unsigned payloads are accepted when empty.
	WebhookSecret string `json:"webhook_secret" mapstructure:"webhook_secret" yaml:"webhook_secret"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BillExpiry:    2 * time.Hour,
		SweepInterval: time.Minute,
	}
}
