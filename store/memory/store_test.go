package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/cart"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

func newUser(t *testing.T, s *Store) *account.User {
	t.Helper()
	u := &account.User{
		Entity: types.NewEntity(),
		ID:     id.NewUserID(),
		Name:   "Ada",
		Email:  id.NewUserID().String() + "@example.com",
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func newCartItem(t *testing.T, s *Store, userID id.UserID) *cart.Item {
	t.Helper()
	item := &cart.Item{
		Entity:    types.NewEntity(),
		ID:        id.NewCartItemID(),
		UserID:    userID,
		ProductID: id.NewProductID(),
	}
	if err := s.AddCartItem(context.Background(), item); err != nil {
		t.Fatalf("add cart item: %v", err)
	}
	return item
}

func pendingBill(userID id.UserID) *billing.Bill {
	return &billing.Bill{
		Entity:    types.NewEntity(),
		ID:        id.NewBillID(),
		UserID:    userID,
		Total:     types.USD(900),
		Status:    billing.StatusPending,
		ExpiresAt: time.Now().UTC().Add(billing.DefaultExpiry),
	}
}

func TestCreateBillConsumesCart(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser(t, s)
	item := newCartItem(t, s, u.ID)

	if err := s.CreateBill(ctx, pendingBill(u.ID), []id.CartItemID{item.ID}); err != nil {
		t.Fatalf("create bill: %v", err)
	}

	if _, err := s.GetCartItems(ctx, []id.CartItemID{item.ID}); !errors.Is(err, storefront.ErrCartItemNotFound) {
		t.Fatalf("expected consumed item to be gone, got %v", err)
	}
}

func TestCreateBillIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser(t, s)
	item := newCartItem(t, s, u.ID)

	// One consumed item does not exist: nothing may be written.
	b := pendingBill(u.ID)
	err := s.CreateBill(ctx, b, []id.CartItemID{item.ID, id.NewCartItemID()})
	if !errors.Is(err, storefront.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}

	if _, err := s.GetBill(ctx, b.ID); !errors.Is(err, storefront.ErrBillNotFound) {
		t.Errorf("expected no bill after failed checkout, got %v", err)
	}
	if _, err := s.GetCartItems(ctx, []id.CartItemID{item.ID}); err != nil {
		t.Errorf("expected surviving cart item, got %v", err)
	}
}

func TestMarkPaidProductFulfilled(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser(t, s)

	b := pendingBill(u.ID)
	line := &billing.PaidProduct{
		Entity:    types.NewEntity(),
		ID:        id.NewPaidProductID(),
		BillID:    b.ID,
		ProductID: id.NewProductID(),
		OwnerID:   u.ID,
	}
	b.PaidProducts = []*billing.PaidProduct{line}
	if err := s.CreateBill(ctx, b, nil); err != nil {
		t.Fatalf("create bill: %v", err)
	}

	at := time.Now().UTC()
	if err := s.MarkPaidProductFulfilled(ctx, line.ID, at); err != nil {
		t.Fatalf("mark fulfilled: %v", err)
	}

	got, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if len(got.PaidProducts) != 1 || !got.PaidProducts[0].Fulfilled() {
		t.Errorf("expected fulfilled line, got %+v", got.PaidProducts)
	}

	if err := s.MarkPaidProductFulfilled(ctx, id.NewPaidProductID(), at); !errors.Is(err, storefront.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound for unknown line, got %v", err)
	}
}

func TestMarkBillPaidGuardsStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser(t, s)

	b := pendingBill(u.ID)
	if err := s.CreateBill(ctx, b, nil); err != nil {
		t.Fatalf("create bill: %v", err)
	}

	now := time.Now().UTC()
	if _, err := s.MarkBillPaid(ctx, b.ID, now, "order_1"); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := s.MarkBillPaid(ctx, b.ID, now, "order_2"); !errors.Is(err, storefront.ErrBillNotPending) {
		t.Fatalf("expected ErrBillNotPending on second settle, got %v", err)
	}

	got, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if got.PaymentRef != "order_1" {
		t.Errorf("replay overwrote payment ref: %q", got.PaymentRef)
	}
}

func TestMarkBillRefundedRequiresPaid(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser(t, s)

	b := pendingBill(u.ID)
	if err := s.CreateBill(ctx, b, nil); err != nil {
		t.Fatalf("create bill: %v", err)
	}

	if _, err := s.MarkBillRefunded(ctx, b.ID, time.Now().UTC()); !errors.Is(err, storefront.ErrBillNotPending) {
		t.Fatalf("expected ErrBillNotPending refunding a pending bill, got %v", err)
	}

	if _, err := s.MarkBillPaid(ctx, b.ID, time.Now().UTC(), "order_1"); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	refunded, err := s.MarkBillRefunded(ctx, b.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("mark refunded: %v", err)
	}
	if refunded.Status != billing.StatusRefunded || refunded.RefundedAt == nil {
		t.Errorf("refund not recorded: %+v", refunded)
	}
}

func TestUpsertUserRoleKeyedByUserAndRole(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser(t, s)

	roleID := id.NewRoleID()
	now := time.Now().UTC()

	first := &account.UserRole{
		Entity:    types.NewEntity(),
		ID:        id.NewUserRoleID(),
		UserID:    u.ID,
		RoleID:    roleID,
		StartDate: now,
		EndDate:   now.Add(24 * time.Hour),
	}
	if _, err := s.UpsertUserRole(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	renewed := &account.UserRole{
		Entity:    types.NewEntity(),
		ID:        id.NewUserRoleID(),
		UserID:    u.ID,
		RoleID:    roleID,
		StartDate: now.Add(time.Hour),
		EndDate:   now.Add(48 * time.Hour),
	}
	got, err := s.UpsertUserRole(ctx, renewed)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	// The existing row is updated in place, not duplicated.
	if got.ID != first.ID {
		t.Errorf("expected original grant row %s, got %s", first.ID, got.ID)
	}
	if !got.EndDate.Equal(renewed.EndDate) || !got.StartDate.Equal(renewed.StartDate) {
		t.Errorf("window not reset: %+v", got)
	}

	grants, err := s.ListUserRoles(ctx, u.ID)
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 1 {
		t.Errorf("expected 1 grant row, got %d", len(grants))
	}
}

func TestRecordCashTransactionRequiresUser(t *testing.T) {
	ctx := context.Background()
	s := New()

	txn := &account.CashTransaction{
		Entity: types.NewEntity(),
		ID:     id.NewCashTransactionID(),
		UserID: id.NewUserID(),
		Type:   account.TransactionDeposit,
		Cash:   account.CashCredits,
		Amount: 100,
	}
	if _, err := s.RecordCashTransaction(ctx, txn); !errors.Is(err, storefront.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestBalancesArePartitionedByCashType(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := newUser(t, s)

	deposit := func(cash account.CashType, amount int64) {
		t.Helper()
		txn := &account.CashTransaction{
			Entity: types.NewEntity(),
			ID:     id.NewCashTransactionID(),
			UserID: u.ID,
			Type:   account.TransactionTypeFor(amount),
			Cash:   cash,
			Amount: amount,
		}
		if _, err := s.RecordCashTransaction(ctx, txn); err != nil {
			t.Fatalf("record transaction: %v", err)
		}
	}

	deposit(account.CashCredits, 1000)
	deposit("POINTS", 50)

	credits, err := s.GetUserBalance(ctx, u.ID, account.CashCredits)
	if err != nil {
		t.Fatalf("get credits: %v", err)
	}
	if credits.Balance != 1000 {
		t.Errorf("expected 1000 credits, got %d", credits.Balance)
	}

	points, err := s.GetUserBalance(ctx, u.ID, "POINTS")
	if err != nil {
		t.Fatalf("get points: %v", err)
	}
	if points.Balance != 50 {
		t.Errorf("expected 50 points, got %d", points.Balance)
	}
}
