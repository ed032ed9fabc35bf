package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/cart"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/payment"
	"github.com/xraph/storefront/types"
)

// ──────────────────────────────────────────────────
// Cart
// ──────────────────────────────────────────────────

// AddCartItem stages a product selection in the user's cart.
func (sf *Storefront) AddCartItem(ctx context.Context, userID id.UserID, productID id.ProductID, workspaceID id.WorkspaceID) (*cart.Item, error) {
	if productID.IsNil() {
		return nil, ValidationError{Field: "product_id", Message: "is required"}
	}

	product, err := sf.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	if !product.Active {
		return nil, fmt.Errorf("add cart item: %w", ErrProductArchived)
	}

	item := &cart.Item{
		Entity:      types.NewEntity(),
		ID:          id.NewCartItemID(),
		UserID:      userID,
		ProductID:   productID,
		WorkspaceID: workspaceID,
	}
	if err := sf.store.AddCartItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	sf.plugins.EmitCartItemAdded(ctx, item)
	return item, nil
}

// ListCart returns one page of the user's cart as typed lines (item plus
// product summary), newest first.
func (sf *Storefront) ListCart(ctx context.Context, userID id.UserID, page types.Page) ([]cart.Line, types.Pagination, error) {
	items, total, err := sf.store.ListCartItems(ctx, userID, cart.ListOpts{
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, types.Pagination{}, fmt.Errorf("list cart: %w", err)
	}

	lines := make([]cart.Line, 0, len(items))
	for _, item := range items {
		product, err := sf.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, types.Pagination{}, fmt.Errorf("list cart: %w", err)
		}
		lines = append(lines, cart.Line{
			Item:    item,
			Product: cart.SummarizeProduct(product),
		})
	}

	return lines, types.NewPagination(page, total), nil
}

// RemoveCartItem removes one of the user's cart items.
func (sf *Storefront) RemoveCartItem(ctx context.Context, userID id.UserID, itemID id.CartItemID) error {
	if err := sf.store.RemoveCartItem(ctx, userID, itemID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Checkout
// ──────────────────────────────────────────────────

// CreateBill snapshots the given cart items into a bill: total and
// currency are captured from the products, one paid product is written
// per item, and the consumed items are deleted. Persistence is a single
// atomic store operation; a failure leaves the cart untouched.
func (sf *Storefront) CreateBill(ctx context.Context, userID id.UserID, itemIDs []id.CartItemID, workspaceID id.WorkspaceID) (*billing.Bill, error) {
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("create bill: %w", ErrEmptyCart)
	}
	seen := make(map[id.CartItemID]struct{}, len(itemIDs))
	for _, itemID := range itemIDs {
		if _, dup := seen[itemID]; dup {
			return nil, ValidationError{Field: "cart_item_ids", Message: "contains duplicates"}
		}
		seen[itemID] = struct{}{}
	}

	items, err := sf.store.GetCartItems(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}
	for _, item := range items {
		if item.UserID != userID {
			return nil, fmt.Errorf("create bill: %w", ErrCartItemNotFound)
		}
	}

	productIDs := make([]id.ProductID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}
	products, err := sf.store.GetProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}

	// Prices are captured now; the bill never re-reads them.
	prices := make([]types.Money, len(products))
	for i, p := range products {
		if i > 0 && !p.Price.SameCurrency(prices[0]) {
			return nil, fmt.Errorf("create bill: %w: %s != %s",
				ErrCurrencyMismatch, prices[0].Currency, p.Price.Currency)
		}
		prices[i] = p.Price
	}
	total := types.Sum(prices...)

	now := time.Now().UTC()
	bill := &billing.Bill{
		Entity:    types.NewEntity(),
		ID:        id.NewBillID(),
		UserID:    userID,
		Total:     total,
		Status:    billing.StatusPending,
		ExpiresAt: now.Add(sf.billExpiry),
	}
	for _, item := range items {
		wsID := item.WorkspaceID
		if wsID.IsNil() {
			wsID = workspaceID
		}
		bill.PaidProducts = append(bill.PaidProducts, &billing.PaidProduct{
			Entity:      types.NewEntity(),
			ID:          id.NewPaidProductID(),
			BillID:      bill.ID,
			ProductID:   item.ProductID,
			OwnerID:     userID,
			WorkspaceID: wsID,
		})
	}

	if err := sf.store.CreateBill(ctx, bill, itemIDs); err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}

	sf.plugins.EmitBillCreated(ctx, bill)

	sf.logger.Info("bill created",
		"bill_id", bill.ID.String(),
		"user_id", userID.String(),
		"total", bill.Total.String(),
		"items", len(bill.PaidProducts),
	)

	return bill, nil
}

// GetBill retrieves a bill with its paid products.
func (sf *Storefront) GetBill(ctx context.Context, billID id.BillID) (*billing.Bill, error) {
	return sf.store.GetBill(ctx, billID)
}

// ListBills returns one page of a user's bills, newest first.
func (sf *Storefront) ListBills(ctx context.Context, userID id.UserID, page types.Page) ([]*billing.Bill, types.Pagination, error) {
	bills, total, err := sf.store.ListBills(ctx, userID, billing.ListOpts{
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, types.Pagination{}, fmt.Errorf("list bills: %w", err)
	}
	return bills, types.NewPagination(page, total), nil
}

// CreateCheckout creates a hosted-checkout session for a pending bill
// against a gateway variant and returns the checkout URL. The user and
// bill ids ride along as custom data and come back in the webhook.
func (sf *Storefront) CreateCheckout(ctx context.Context, userID id.UserID, billID id.BillID, variantExternalID, redirectURL string, embed bool) (string, error) {
	if sf.gateway == nil {
		return "", fmt.Errorf("create checkout: %w", ErrGatewayNotConfigured)
	}

	if _, err := sf.store.GetGatewayVariant(ctx, variantExternalID); err != nil {
		return "", fmt.Errorf("create checkout: %w", err)
	}

	bill, err := sf.store.GetBill(ctx, billID)
	if err != nil {
		return "", fmt.Errorf("create checkout: %w", err)
	}
	if bill.Status != billing.StatusPending {
		return "", fmt.Errorf("create checkout: %w", ErrBillNotPending)
	}
	if bill.IsExpired(time.Now().UTC()) {
		return "", fmt.Errorf("create checkout: %w", ErrBillExpired)
	}

	url, err := sf.gateway.CreateCheckout(ctx, payment.CheckoutParams{
		VariantID:   variantExternalID,
		RedirectURL: redirectURL,
		Embed:       embed,
		CustomData: map[string]string{
			"user_id": userID.String(),
			"bill_id": billID.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create checkout: %w", err)
	}
	return url, nil
}
