package billing

import (
	"context"
	"time"

	"github.com/xraph/storefront/id"
)

type Store interface {
	// CreateBill persists the bill with its paid products and deletes
	// the consumed cart items, all in one atomic unit.
	CreateBill(ctx context.Context, b *Bill, consumedCartItems []id.CartItemID) error
	GetBill(ctx context.Context, billID id.BillID) (*Bill, error)
	ListBills(ctx context.Context, userID id.UserID, opts ListOpts) ([]*Bill, int, error)
	ListPaidProducts(ctx context.Context, billID id.BillID) ([]*PaidProduct, error)

	// MarkBillPaid transitions a pending bill to paid. Returns the
	// updated bill; bills that are not pending are left untouched.
	MarkBillPaid(ctx context.Context, billID id.BillID, paidAt time.Time, paymentRef string) (*Bill, error)
	MarkBillRefunded(ctx context.Context, billID id.BillID, refundedAt time.Time) (*Bill, error)
	// ExpireBills marks every pending bill whose expiry is before the
	// cutoff as expired, returning how many rows changed.
	ExpireBills(ctx context.Context, cutoff time.Time) (int, error)
}

type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
