package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onUserCreated          []OnUserCreated
	onMembershipGranted    []OnMembershipGranted
	onBalanceChanged       []OnBalanceChanged
	onWorkspaceProvisioned []OnWorkspaceProvisioned
	onProductCreated       []OnProductCreated
	onProductArchived      []OnProductArchived
	onCatalogSynced        []OnCatalogSynced
	onCartItemAdded        []OnCartItemAdded
	onBillCreated          []OnBillCreated
	onBillPaid             []OnBillPaid
	onBillRefunded         []OnBillRefunded
	onBillsExpired         []OnBillsExpired
	onWebhookReceived      []OnWebhookReceived
	onFileUploaded         []OnFileUploaded
	gateways               []GatewayPlugin
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnUserCreated); ok {
		r.onUserCreated = append(r.onUserCreated, v)
	}
	if v, ok := p.(OnMembershipGranted); ok {
		r.onMembershipGranted = append(r.onMembershipGranted, v)
	}
	if v, ok := p.(OnBalanceChanged); ok {
		r.onBalanceChanged = append(r.onBalanceChanged, v)
	}
	if v, ok := p.(OnWorkspaceProvisioned); ok {
		r.onWorkspaceProvisioned = append(r.onWorkspaceProvisioned, v)
	}
	if v, ok := p.(OnProductCreated); ok {
		r.onProductCreated = append(r.onProductCreated, v)
	}
	if v, ok := p.(OnProductArchived); ok {
		r.onProductArchived = append(r.onProductArchived, v)
	}
	if v, ok := p.(OnCatalogSynced); ok {
		r.onCatalogSynced = append(r.onCatalogSynced, v)
	}
	if v, ok := p.(OnCartItemAdded); ok {
		r.onCartItemAdded = append(r.onCartItemAdded, v)
	}
	if v, ok := p.(OnBillCreated); ok {
		r.onBillCreated = append(r.onBillCreated, v)
	}
	if v, ok := p.(OnBillPaid); ok {
		r.onBillPaid = append(r.onBillPaid, v)
	}
	if v, ok := p.(OnBillRefunded); ok {
		r.onBillRefunded = append(r.onBillRefunded, v)
	}
	if v, ok := p.(OnBillsExpired); ok {
		r.onBillsExpired = append(r.onBillsExpired, v)
	}
	if v, ok := p.(OnWebhookReceived); ok {
		r.onWebhookReceived = append(r.onWebhookReceived, v)
	}
	if v, ok := p.(OnFileUploaded); ok {
		r.onFileUploaded = append(r.onFileUploaded, v)
	}
	if v, ok := p.(GatewayPlugin); ok {
		r.gateways = append(r.gateways, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnUserCreated)(nil)).Elem(), "OnUserCreated")
	checkInterface(reflect.TypeOf((*OnMembershipGranted)(nil)).Elem(), "OnMembershipGranted")
	checkInterface(reflect.TypeOf((*OnBalanceChanged)(nil)).Elem(), "OnBalanceChanged")
	checkInterface(reflect.TypeOf((*OnWorkspaceProvisioned)(nil)).Elem(), "OnWorkspaceProvisioned")
	checkInterface(reflect.TypeOf((*OnBillCreated)(nil)).Elem(), "OnBillCreated")
	checkInterface(reflect.TypeOf((*OnBillPaid)(nil)).Elem(), "OnBillPaid")
	checkInterface(reflect.TypeOf((*OnWebhookReceived)(nil)).Elem(), "OnWebhookReceived")
	checkInterface(reflect.TypeOf((*GatewayPlugin)(nil)).Elem(), "Gateway")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// GetGateways returns all registered gateway plugins.
func (r *Registry) GetGateways() []GatewayPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]GatewayPlugin, len(r.gateways))
	copy(result, r.gateways)
	return result
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitUserCreated emits a user created event.
func (r *Registry) EmitUserCreated(ctx context.Context, user interface{}) {
	r.mu.RLock()
	plugins := r.onUserCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUserCreated(ctx, user)
		}); err != nil {
			r.logger.Warn("plugin OnUserCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMembershipGranted emits a membership granted event.
func (r *Registry) EmitMembershipGranted(ctx context.Context, grant interface{}) {
	r.mu.RLock()
	plugins := r.onMembershipGranted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMembershipGranted(ctx, grant)
		}); err != nil {
			r.logger.Warn("plugin OnMembershipGranted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBalanceChanged emits a balance changed event.
func (r *Registry) EmitBalanceChanged(ctx context.Context, balance interface{}, amount int64) {
	r.mu.RLock()
	plugins := r.onBalanceChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBalanceChanged(ctx, balance, amount)
		}); err != nil {
			r.logger.Warn("plugin OnBalanceChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWorkspaceProvisioned emits a workspace provisioned event.
func (r *Registry) EmitWorkspaceProvisioned(ctx context.Context, ws interface{}) {
	r.mu.RLock()
	plugins := r.onWorkspaceProvisioned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWorkspaceProvisioned(ctx, ws)
		}); err != nil {
			r.logger.Warn("plugin OnWorkspaceProvisioned failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProductCreated emits a product created event.
func (r *Registry) EmitProductCreated(ctx context.Context, product interface{}) {
	r.mu.RLock()
	plugins := r.onProductCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProductCreated(ctx, product)
		}); err != nil {
			r.logger.Warn("plugin OnProductCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitProductArchived emits a product archived event.
func (r *Registry) EmitProductArchived(ctx context.Context, productID string) {
	r.mu.RLock()
	plugins := r.onProductArchived
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnProductArchived(ctx, productID)
		}); err != nil {
			r.logger.Warn("plugin OnProductArchived failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCatalogSynced emits a catalog synced event.
func (r *Registry) EmitCatalogSynced(ctx context.Context, products, variants int, syncErr error) {
	r.mu.RLock()
	plugins := r.onCatalogSynced
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCatalogSynced(ctx, products, variants, syncErr)
		}); err != nil {
			r.logger.Warn("plugin OnCatalogSynced failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCartItemAdded emits a cart item added event.
func (r *Registry) EmitCartItemAdded(ctx context.Context, item interface{}) {
	r.mu.RLock()
	plugins := r.onCartItemAdded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCartItemAdded(ctx, item)
		}); err != nil {
			r.logger.Warn("plugin OnCartItemAdded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillCreated emits a bill created event.
func (r *Registry) EmitBillCreated(ctx context.Context, bill interface{}) {
	r.mu.RLock()
	plugins := r.onBillCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillCreated(ctx, bill)
		}); err != nil {
			r.logger.Warn("plugin OnBillCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillPaid emits a bill paid event.
func (r *Registry) EmitBillPaid(ctx context.Context, bill interface{}) {
	r.mu.RLock()
	plugins := r.onBillPaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillPaid(ctx, bill)
		}); err != nil {
			r.logger.Warn("plugin OnBillPaid failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillRefunded emits a bill refunded event.
func (r *Registry) EmitBillRefunded(ctx context.Context, bill interface{}) {
	r.mu.RLock()
	plugins := r.onBillRefunded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillRefunded(ctx, bill)
		}); err != nil {
			r.logger.Warn("plugin OnBillRefunded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillsExpired emits a bills expired event after the sweep.
func (r *Registry) EmitBillsExpired(ctx context.Context, count int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onBillsExpired
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillsExpired(ctx, count, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnBillsExpired failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWebhookReceived emits a webhook received event.
func (r *Registry) EmitWebhookReceived(ctx context.Context, eventName string, payload []byte) {
	r.mu.RLock()
	plugins := r.onWebhookReceived
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWebhookReceived(ctx, eventName, payload)
		}); err != nil {
			r.logger.Warn("plugin OnWebhookReceived failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFileUploaded emits a file uploaded event.
func (r *Registry) EmitFileUploaded(ctx context.Context, file interface{}) {
	r.mu.RLock()
	plugins := r.onFileUploaded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFileUploaded(ctx, file)
		}); err != nil {
			r.logger.Warn("plugin OnFileUploaded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the checkout pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
