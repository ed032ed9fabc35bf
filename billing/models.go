// Package billing holds bills (checkout snapshots) and their paid
// product lines.
package billing

import (
	"time"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRefunded Status = "refunded"
	StatusExpired  Status = "expired"
)

// DefaultExpiry is how long a pending bill stays payable.
const DefaultExpiry = 2 * time.Hour

// Bill is an immutable snapshot of cart contents at checkout time.
// Only the payment-status fields change after creation.
type Bill struct {
	types.Entity
	ID           id.BillID      `json:"id"`
	UserID       id.UserID      `json:"user_id"`
	Total        types.Money    `json:"total"`
	Status       Status         `json:"status"`
	ExpiresAt    time.Time      `json:"expires_at"`
	PaidAt       *time.Time     `json:"paid_at,omitempty"`
	RefundedAt   *time.Time     `json:"refunded_at,omitempty"`
	PaymentRef   string         `json:"payment_ref,omitempty"`
	PaidProducts []*PaidProduct `json:"paid_products"`
}

// IsExpired reports whether the bill passed its expiry while unpaid.
func (b *Bill) IsExpired(now time.Time) bool {
	return b.Status == StatusPending && now.After(b.ExpiresAt)
}

// PaidProduct links a bill to one purchased product, one row per cart
// item folded into the bill. Product id, owner, and optional workspace
// are captured at checkout for later entitlement resolution.
// FulfilledAt records when the line's entitlements were applied, so a
// retried settlement delivery applies each line at most once.
type PaidProduct struct {
	types.Entity
	ID          id.PaidProductID `json:"id"`
	BillID      id.BillID        `json:"bill_id"`
	ProductID   id.ProductID     `json:"product_id"`
	OwnerID     id.UserID        `json:"owner_id"`
	WorkspaceID id.WorkspaceID   `json:"workspace_id,omitempty"`
	FulfilledAt *time.Time       `json:"fulfilled_at,omitempty"`
}

// Fulfilled reports whether the line's entitlements have been applied.
func (pp *PaidProduct) Fulfilled() bool { return pp.FulfilledAt != nil }
