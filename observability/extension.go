// Package observability provides a metrics extension for Storefront that
// records lifecycle event counts via an injected MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/storefront/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnUserCreated          = (*MetricsExtension)(nil)
	_ plugin.OnMembershipGranted    = (*MetricsExtension)(nil)
	_ plugin.OnBalanceChanged       = (*MetricsExtension)(nil)
	_ plugin.OnWorkspaceProvisioned = (*MetricsExtension)(nil)
	_ plugin.OnProductCreated       = (*MetricsExtension)(nil)
	_ plugin.OnProductArchived      = (*MetricsExtension)(nil)
	_ plugin.OnCatalogSynced        = (*MetricsExtension)(nil)
	_ plugin.OnCartItemAdded        = (*MetricsExtension)(nil)
	_ plugin.OnBillCreated          = (*MetricsExtension)(nil)
	_ plugin.OnBillPaid             = (*MetricsExtension)(nil)
	_ plugin.OnBillRefunded         = (*MetricsExtension)(nil)
	_ plugin.OnBillsExpired         = (*MetricsExtension)(nil)
	_ plugin.OnWebhookReceived      = (*MetricsExtension)(nil)
	_ plugin.OnFileUploaded         = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Storefront plugin to automatically track commerce metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Account metrics
	UsersCreated       Counter
	MembershipsGranted Counter
	BalanceChanges     Counter
	BalanceDelta       Histogram

	// Workspace metrics
	WorkspacesProvisioned Counter

	// Catalog metrics
	ProductsCreated   Counter
	ProductsArchived  Counter
	CatalogSyncOK     Counter
	CatalogSyncFailed Counter

	// Checkout metrics
	CartItemsAdded Counter
	BillsCreated   Counter
	BillsPaid      Counter
	BillsRefunded  Counter
	BillsExpired   Counter
	ExpirySweepMs  Histogram

	// Payment metrics
	WebhooksReceived Counter

	// Storage metrics
	FilesUploaded Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Account metrics
		UsersCreated:       factory.Counter("storefront.users.created"),
		MembershipsGranted: factory.Counter("storefront.memberships.granted"),
		BalanceChanges:     factory.Counter("storefront.balance.changes"),
		BalanceDelta:       factory.Histogram("storefront.balance.delta"),

		// Workspace metrics
		WorkspacesProvisioned: factory.Counter("storefront.workspaces.provisioned"),

		// Catalog metrics
		ProductsCreated:   factory.Counter("storefront.products.created"),
		ProductsArchived:  factory.Counter("storefront.products.archived"),
		CatalogSyncOK:     factory.Counter("storefront.catalog.sync.success"),
		CatalogSyncFailed: factory.Counter("storefront.catalog.sync.failure"),

		// Checkout metrics
		CartItemsAdded: factory.Counter("storefront.cart.items.added"),
		BillsCreated:   factory.Counter("storefront.bills.created"),
		BillsPaid:      factory.Counter("storefront.bills.paid"),
		BillsRefunded:  factory.Counter("storefront.bills.refunded"),
		BillsExpired:   factory.Counter("storefront.bills.expired"),
		ExpirySweepMs:  factory.Histogram("storefront.bills.sweep.latency_ms"),

		// Payment metrics
		WebhooksReceived: factory.Counter("storefront.webhooks.received"),

		// Storage metrics
		FilesUploaded: factory.Counter("storefront.files.uploaded"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Account lifecycle hooks
// ──────────────────────────────────────────────────

// OnUserCreated implements plugin.OnUserCreated.
func (m *MetricsExtension) OnUserCreated(_ context.Context, _ interface{}) error {
	m.UsersCreated.Inc()
	return nil
}

// OnMembershipGranted implements plugin.OnMembershipGranted.
func (m *MetricsExtension) OnMembershipGranted(_ context.Context, _ interface{}) error {
	m.MembershipsGranted.Inc()
	return nil
}

// OnBalanceChanged implements plugin.OnBalanceChanged.
func (m *MetricsExtension) OnBalanceChanged(_ context.Context, _ interface{}, amount int64) error {
	m.BalanceChanges.Inc()
	m.BalanceDelta.Observe(float64(amount))
	return nil
}

// ──────────────────────────────────────────────────
// Workspace lifecycle hooks
// ──────────────────────────────────────────────────

// OnWorkspaceProvisioned implements plugin.OnWorkspaceProvisioned.
func (m *MetricsExtension) OnWorkspaceProvisioned(_ context.Context, _ interface{}) error {
	m.WorkspacesProvisioned.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Catalog lifecycle hooks
// ──────────────────────────────────────────────────

// OnProductCreated implements plugin.OnProductCreated.
func (m *MetricsExtension) OnProductCreated(_ context.Context, _ interface{}) error {
	m.ProductsCreated.Inc()
	return nil
}

// OnProductArchived implements plugin.OnProductArchived.
func (m *MetricsExtension) OnProductArchived(_ context.Context, _ string) error {
	m.ProductsArchived.Inc()
	return nil
}

// OnCatalogSynced implements plugin.OnCatalogSynced.
func (m *MetricsExtension) OnCatalogSynced(_ context.Context, _, _ int, err error) error {
	if err != nil {
		m.CatalogSyncFailed.Inc()
		return nil
	}
	m.CatalogSyncOK.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Checkout lifecycle hooks
// ──────────────────────────────────────────────────

// OnCartItemAdded implements plugin.OnCartItemAdded.
func (m *MetricsExtension) OnCartItemAdded(_ context.Context, _ interface{}) error {
	m.CartItemsAdded.Inc()
	return nil
}

// OnBillCreated implements plugin.OnBillCreated.
func (m *MetricsExtension) OnBillCreated(_ context.Context, _ interface{}) error {
	m.BillsCreated.Inc()
	return nil
}

// OnBillPaid implements plugin.OnBillPaid.
func (m *MetricsExtension) OnBillPaid(_ context.Context, _ interface{}) error {
	m.BillsPaid.Inc()
	return nil
}

// OnBillRefunded implements plugin.OnBillRefunded.
func (m *MetricsExtension) OnBillRefunded(_ context.Context, _ interface{}) error {
	m.BillsRefunded.Inc()
	return nil
}

// OnBillsExpired implements plugin.OnBillsExpired.
func (m *MetricsExtension) OnBillsExpired(_ context.Context, count int, elapsed time.Duration) error {
	m.BillsExpired.Add(float64(count))
	m.ExpirySweepMs.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnWebhookReceived implements plugin.OnWebhookReceived.
func (m *MetricsExtension) OnWebhookReceived(_ context.Context, _ string, _ []byte) error {
	m.WebhooksReceived.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Upload lifecycle hooks
// ──────────────────────────────────────────────────

// OnFileUploaded implements plugin.OnFileUploaded.
func (m *MetricsExtension) OnFileUploaded(_ context.Context, _ interface{}) error {
	m.FilesUploaded.Inc()
	return nil
}
