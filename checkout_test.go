package storefront_test

import (
	"errors"
	"testing"
	"time"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

func TestCreateBillSnapshotsCart(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	p1, err := sf.CreateProduct(ctx, "Starter", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	p2, err := sf.CreateProduct(ctx, "Pro", "", types.USD(4900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	i1, err := sf.AddCartItem(ctx, user.ID, p1.ID, id.Nil)
	if err != nil {
		t.Fatalf("add cart item: %v", err)
	}
	i2, err := sf.AddCartItem(ctx, user.ID, p2.ID, id.Nil)
	if err != nil {
		t.Fatalf("add cart item: %v", err)
	}

	before := time.Now().UTC()
	bill, err := sf.CreateBill(ctx, user.ID, []id.CartItemID{i1.ID, i2.ID}, id.Nil)
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	if !bill.Total.Equal(types.USD(5800)) {
		t.Errorf("expected total $58.00, got %s", bill.Total)
	}
	if bill.Status != billing.StatusPending {
		t.Errorf("expected status %q, got %q", billing.StatusPending, bill.Status)
	}
	if len(bill.PaidProducts) != 2 {
		t.Fatalf("expected 2 paid products, got %d", len(bill.PaidProducts))
	}

	// Expiry window is anchored at creation time.
	lo := before.Add(billing.DefaultExpiry - time.Minute)
	hi := time.Now().UTC().Add(billing.DefaultExpiry + time.Minute)
	if bill.ExpiresAt.Before(lo) || bill.ExpiresAt.After(hi) {
		t.Errorf("expires_at %v outside expected window [%v, %v]", bill.ExpiresAt, lo, hi)
	}

	// The consumed items are gone from the cart.
	lines, pag, err := sf.ListCart(ctx, user.ID, types.Page{})
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(lines) != 0 || pag.TotalCount != 0 {
		t.Errorf("expected empty cart after checkout, got %d items", pag.TotalCount)
	}
}

func TestCreateBillCurrencyMismatch(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	usd, err := sf.CreateProduct(ctx, "Dollar Pack", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	eur, err := sf.CreateProduct(ctx, "Euro Pack", "", types.EUR(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	i1, err := sf.AddCartItem(ctx, user.ID, usd.ID, id.Nil)
	if err != nil {
		t.Fatalf("add cart item: %v", err)
	}
	i2, err := sf.AddCartItem(ctx, user.ID, eur.ID, id.Nil)
	if err != nil {
		t.Fatalf("add cart item: %v", err)
	}

	_, err = sf.CreateBill(ctx, user.ID, []id.CartItemID{i1.ID, i2.ID}, id.Nil)
	if !errors.Is(err, storefront.ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if !storefront.IsValidation(err) {
		t.Errorf("expected currency mismatch to classify as validation, got %v", err)
	}

	// The failed checkout must not have touched the cart.
	_, pag, err := sf.ListCart(ctx, user.ID, types.Page{})
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if pag.TotalCount != 2 {
		t.Errorf("expected cart untouched with 2 items, got %d", pag.TotalCount)
	}
}

func TestCreateBillRejectsDuplicateItems(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	product, err := sf.CreateProduct(ctx, "Pack", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	item, err := sf.AddCartItem(ctx, user.ID, product.ID, id.Nil)
	if err != nil {
		t.Fatalf("add cart item: %v", err)
	}

	// The same item listed twice must not produce a doubled bill.
	_, err = sf.CreateBill(ctx, user.ID, []id.CartItemID{item.ID, item.ID}, id.Nil)
	if !storefront.IsValidation(err) {
		t.Fatalf("expected validation error for duplicate items, got %v", err)
	}

	// The failed checkout must not have touched the cart.
	_, pag, err := sf.ListCart(ctx, user.ID, types.Page{})
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if pag.TotalCount != 1 {
		t.Errorf("expected cart untouched with 1 item, got %d", pag.TotalCount)
	}
}

func TestCreateBillEmptyCart(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err = sf.CreateBill(ctx, user.ID, nil, id.Nil)
	if !errors.Is(err, storefront.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCreateBillRejectsForeignItems(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	owner, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	other, err := sf.CreateUser(ctx, "Grace", "grace@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	product, err := sf.CreateProduct(ctx, "Pack", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	item, err := sf.AddCartItem(ctx, owner.ID, product.ID, id.Nil)
	if err != nil {
		t.Fatalf("add cart item: %v", err)
	}

	_, err = sf.CreateBill(ctx, other.ID, []id.CartItemID{item.ID}, id.Nil)
	if !errors.Is(err, storefront.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestAddCartItemArchivedProduct(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	product, err := sf.CreateProduct(ctx, "Old Pack", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := sf.ArchiveProduct(ctx, product.ID); err != nil {
		t.Fatalf("archive product: %v", err)
	}

	_, err = sf.AddCartItem(ctx, user.ID, product.ID, id.Nil)
	if !errors.Is(err, storefront.ErrProductArchived) {
		t.Fatalf("expected ErrProductArchived, got %v", err)
	}
}

func TestRemoveCartItem(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	product, err := sf.CreateProduct(ctx, "Pack", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	item, err := sf.AddCartItem(ctx, user.ID, product.ID, id.Nil)
	if err != nil {
		t.Fatalf("add cart item: %v", err)
	}

	if err := sf.RemoveCartItem(ctx, user.ID, item.ID); err != nil {
		t.Fatalf("remove cart item: %v", err)
	}
	if err := sf.RemoveCartItem(ctx, user.ID, item.ID); !errors.Is(err, storefront.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound on second remove, got %v", err)
	}
}

func TestListBills(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	product, err := sf.CreateProduct(ctx, "Pack", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	for i := 0; i < 3; i++ {
		item, err := sf.AddCartItem(ctx, user.ID, product.ID, id.Nil)
		if err != nil {
			t.Fatalf("add cart item: %v", err)
		}
		if _, err := sf.CreateBill(ctx, user.ID, []id.CartItemID{item.ID}, id.Nil); err != nil {
			t.Fatalf("create bill: %v", err)
		}
	}

	bills, pag, err := sf.ListBills(ctx, user.ID, types.Page{Number: 1, Size: 2})
	if err != nil {
		t.Fatalf("list bills: %v", err)
	}
	if len(bills) != 2 {
		t.Errorf("expected 2 bills on first page, got %d", len(bills))
	}
	if pag.TotalCount != 3 || pag.TotalPages != 2 {
		t.Errorf("expected 3 bills over 2 pages, got %d over %d", pag.TotalCount, pag.TotalPages)
	}
}

func TestRecordCashTransactionTypes(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	balance, err := sf.RecordCashTransaction(ctx, user.ID, account.CashCredits, 1000)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if balance.Balance != 1000 {
		t.Errorf("expected balance 1000, got %d", balance.Balance)
	}

	balance, err = sf.RecordCashTransaction(ctx, user.ID, account.CashCredits, -300)
	if err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	if balance.Balance != 700 {
		t.Errorf("expected balance 700, got %d", balance.Balance)
	}

	txns, err := sf.ListCashTransactions(ctx, user.ID, account.ListOpts{})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(txns))
	}

	// The type is derived from the sign, never supplied by callers.
	kinds := map[account.TransactionType]int{}
	for _, txn := range txns {
		kinds[txn.Type]++
	}
	if kinds[account.TransactionDeposit] != 1 || kinds[account.TransactionWithdrawal] != 1 {
		t.Errorf("expected one deposit and one withdrawal, got %v", kinds)
	}
}
