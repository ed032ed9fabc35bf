package audithook

// Action constants for audit events.
const (
	// Account actions
	ActionUserCreated       = "user.created"
	ActionMembershipGranted = "membership.granted"
	ActionBalanceChanged    = "balance.changed"

	// Workspace actions
	ActionWorkspaceProvisioned = "workspace.provisioned"

	// Catalog actions
	ActionProductCreated  = "product.created"
	ActionProductArchived = "product.archived"
	ActionCatalogSynced   = "catalog.synced"

	// Checkout actions
	ActionCartItemAdded = "cart.item_added"
	ActionBillCreated   = "bill.created"
	ActionBillPaid      = "bill.paid"
	ActionBillRefunded  = "bill.refunded"
	ActionBillsExpired  = "bills.expired"

	// Payment actions
	ActionWebhookReceived = "webhook.received"

	// Upload actions
	ActionFileUploaded = "file.uploaded"
)

// Resource constants for audit events.
const (
	ResourceUser      = "user"
	ResourceWorkspace = "workspace"
	ResourceProduct   = "product"
	ResourceCart      = "cart"
	ResourceBill      = "bill"
	ResourceBalance   = "balance"
	ResourceWebhook   = "webhook"
	ResourceFile      = "file"
)

// Category constants for audit events.
const (
	CategoryAccount   = "account"
	CategoryWorkspace = "workspace"
	CategoryCatalog   = "catalog"
	CategoryCheckout  = "checkout"
	CategoryPayment   = "payment"
	CategoryStorage   = "storage"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
