// Package audithook bridges Storefront lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/storefront/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnUserCreated          = (*Extension)(nil)
	_ plugin.OnMembershipGranted    = (*Extension)(nil)
	_ plugin.OnBalanceChanged       = (*Extension)(nil)
	_ plugin.OnWorkspaceProvisioned = (*Extension)(nil)
	_ plugin.OnProductCreated       = (*Extension)(nil)
	_ plugin.OnProductArchived      = (*Extension)(nil)
	_ plugin.OnCatalogSynced        = (*Extension)(nil)
	_ plugin.OnCartItemAdded        = (*Extension)(nil)
	_ plugin.OnBillCreated          = (*Extension)(nil)
	_ plugin.OnBillPaid             = (*Extension)(nil)
	_ plugin.OnBillRefunded         = (*Extension)(nil)
	_ plugin.OnBillsExpired         = (*Extension)(nil)
	_ plugin.OnWebhookReceived      = (*Extension)(nil)
	_ plugin.OnFileUploaded         = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Storefront lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Account lifecycle hooks
// ──────────────────────────────────────────────────

// OnUserCreated implements plugin.OnUserCreated.
func (e *Extension) OnUserCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionUserCreated, SeverityInfo, OutcomeSuccess,
		ResourceUser, "", CategoryAccount, nil,
		"event", "user_created",
	)
}

// OnMembershipGranted implements plugin.OnMembershipGranted.
func (e *Extension) OnMembershipGranted(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionMembershipGranted, SeverityInfo, OutcomeSuccess,
		ResourceUser, "", CategoryAccount, nil,
		"event", "membership_granted",
	)
}

// OnBalanceChanged implements plugin.OnBalanceChanged.
func (e *Extension) OnBalanceChanged(ctx context.Context, _ interface{}, amount int64) error {
	severity := SeverityInfo
	if amount < 0 {
		severity = SeverityWarning
	}
	return e.record(ctx, ActionBalanceChanged, severity, OutcomeSuccess,
		ResourceBalance, "", CategoryAccount, nil,
		"event", "balance_changed",
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Workspace lifecycle hooks
// ──────────────────────────────────────────────────

// OnWorkspaceProvisioned implements plugin.OnWorkspaceProvisioned.
func (e *Extension) OnWorkspaceProvisioned(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionWorkspaceProvisioned, SeverityInfo, OutcomeSuccess,
		ResourceWorkspace, "", CategoryWorkspace, nil,
		"event", "workspace_provisioned",
	)
}

// ──────────────────────────────────────────────────
// Catalog lifecycle hooks
// ──────────────────────────────────────────────────

// OnProductCreated implements plugin.OnProductCreated.
func (e *Extension) OnProductCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionProductCreated, SeverityInfo, OutcomeSuccess,
		ResourceProduct, "", CategoryCatalog, nil,
		"event", "product_created",
	)
}

// OnProductArchived implements plugin.OnProductArchived.
func (e *Extension) OnProductArchived(ctx context.Context, productID string) error {
	return e.record(ctx, ActionProductArchived, SeverityInfo, OutcomeSuccess,
		ResourceProduct, productID, CategoryCatalog, nil,
		"product_id", productID,
	)
}

// OnCatalogSynced implements plugin.OnCatalogSynced.
func (e *Extension) OnCatalogSynced(ctx context.Context, products, variants int, err error) error {
	severity := SeverityInfo
	outcome := OutcomeSuccess
	if err != nil {
		severity = SeverityError
		outcome = OutcomeFailure
	}
	return e.record(ctx, ActionCatalogSynced, severity, outcome,
		ResourceProduct, "", CategoryCatalog, err,
		"products", products,
		"variants", variants,
	)
}

// ──────────────────────────────────────────────────
// Checkout lifecycle hooks
// ──────────────────────────────────────────────────

// OnCartItemAdded implements plugin.OnCartItemAdded.
func (e *Extension) OnCartItemAdded(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionCartItemAdded, SeverityInfo, OutcomeSuccess,
		ResourceCart, "", CategoryCheckout, nil,
		"event", "cart_item_added",
	)
}

// OnBillCreated implements plugin.OnBillCreated.
func (e *Extension) OnBillCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBillCreated, SeverityInfo, OutcomeSuccess,
		ResourceBill, "", CategoryCheckout, nil,
		"event", "bill_created",
	)
}

// OnBillPaid implements plugin.OnBillPaid.
func (e *Extension) OnBillPaid(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBillPaid, SeverityInfo, OutcomeSuccess,
		ResourceBill, "", CategoryPayment, nil,
		"event", "bill_paid",
	)
}

// OnBillRefunded implements plugin.OnBillRefunded.
func (e *Extension) OnBillRefunded(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBillRefunded, SeverityWarning, OutcomeSuccess,
		ResourceBill, "", CategoryPayment, nil,
		"event", "bill_refunded",
	)
}

// OnBillsExpired implements plugin.OnBillsExpired.
func (e *Extension) OnBillsExpired(ctx context.Context, count int, elapsed time.Duration) error {
	return e.record(ctx, ActionBillsExpired, SeverityInfo, OutcomeSuccess,
		ResourceBill, "", CategoryCheckout, nil,
		"count", count,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Payment lifecycle hooks
// ──────────────────────────────────────────────────

// OnWebhookReceived implements plugin.OnWebhookReceived.
func (e *Extension) OnWebhookReceived(ctx context.Context, eventName string, _ []byte) error {
	return e.record(ctx, ActionWebhookReceived, SeverityInfo, OutcomeSuccess,
		ResourceWebhook, "", CategoryPayment, nil,
		"event_name", eventName,
	)
}

// ──────────────────────────────────────────────────
// Upload lifecycle hooks
// ──────────────────────────────────────────────────

// OnFileUploaded implements plugin.OnFileUploaded.
func (e *Extension) OnFileUploaded(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionFileUploaded, SeverityInfo, OutcomeSuccess,
		ResourceFile, "", CategoryStorage, nil,
		"event", "file_uploaded",
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
