// Package plugin provides an extensible plugin system for Storefront.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Account hooks
// ──────────────────────────────────────────────────

// OnUserCreated is called when a new user is created.
type OnUserCreated interface {
	Plugin
	OnUserCreated(ctx context.Context, user interface{}) error
}

// OnMembershipGranted is called when a membership role grant is created
// or renewed.
type OnMembershipGranted interface {
	Plugin
	OnMembershipGranted(ctx context.Context, grant interface{}) error
}

// OnBalanceChanged is called after a ledger entry updates a balance.
type OnBalanceChanged interface {
	Plugin
	OnBalanceChanged(ctx context.Context, balance interface{}, amount int64) error
}

// ──────────────────────────────────────────────────
// Workspace hooks
// ──────────────────────────────────────────────────

// OnWorkspaceProvisioned is called when a workspace is provisioned with
// its default roles and bindings.
type OnWorkspaceProvisioned interface {
	Plugin
	OnWorkspaceProvisioned(ctx context.Context, ws interface{}) error
}

// ──────────────────────────────────────────────────
// Catalog hooks
// ──────────────────────────────────────────────────

// OnProductCreated is called when a new product is created.
type OnProductCreated interface {
	Plugin
	OnProductCreated(ctx context.Context, product interface{}) error
}

// OnProductArchived is called when a product is soft-deleted.
type OnProductArchived interface {
	Plugin
	OnProductArchived(ctx context.Context, productID string) error
}

// OnCatalogSynced is called after a gateway catalog sync attempt.
type OnCatalogSynced interface {
	Plugin
	OnCatalogSynced(ctx context.Context, products, variants int, err error) error
}

// ──────────────────────────────────────────────────
// Checkout hooks
// ──────────────────────────────────────────────────

// OnCartItemAdded is called when a product is added to a cart.
type OnCartItemAdded interface {
	Plugin
	OnCartItemAdded(ctx context.Context, item interface{}) error
}

// OnBillCreated is called when a checkout snapshot is created.
type OnBillCreated interface {
	Plugin
	OnBillCreated(ctx context.Context, bill interface{}) error
}

// OnBillPaid is called when a bill settles.
type OnBillPaid interface {
	Plugin
	OnBillPaid(ctx context.Context, bill interface{}) error
}

// OnBillRefunded is called when a bill is refunded.
type OnBillRefunded interface {
	Plugin
	OnBillRefunded(ctx context.Context, bill interface{}) error
}

// OnBillsExpired is called after the expiry sweep flips overdue bills.
type OnBillsExpired interface {
	Plugin
	OnBillsExpired(ctx context.Context, count int, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnWebhookReceived is called when a gateway webhook arrives, before
// settlement runs.
type OnWebhookReceived interface {
	Plugin
	OnWebhookReceived(ctx context.Context, eventName string, payload []byte) error
}

// GatewayPlugin provides a payment gateway implementation.
type GatewayPlugin interface {
	Plugin
	Gateway() interface{} // Returns payment.Gateway
}

// ──────────────────────────────────────────────────
// Upload hooks
// ──────────────────────────────────────────────────

// OnFileUploaded is called after upload metadata is recorded.
type OnFileUploaded interface {
	Plugin
	OnFileUploaded(ctx context.Context, file interface{}) error
}
