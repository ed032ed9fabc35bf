package storefront_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/catalog"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/payment"
	"github.com/xraph/storefront/store/memory"
	"github.com/xraph/storefront/types"
	"github.com/xraph/storefront/workspace"
)

// webhookBody builds a raw gateway delivery for tests.
func webhookBody(t *testing.T, eventName, orderID string, custom map[string]string) []byte {
	t.Helper()

	env := map[string]any{
		"meta": map[string]any{
			"event_name":  eventName,
			"custom_data": custom,
		},
		"data": map[string]any{
			"id": orderID,
			"attributes": map[string]any{
				"status": "paid",
			},
		},
	}
	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal webhook body: %v", err)
	}
	return body
}

// checkoutBill creates a user, carts the given products, and checks out.
func checkoutBill(t *testing.T, sf *storefront.Storefront, ctx context.Context, email string, productIDs ...id.ProductID) (*account.User, *billing.Bill) {
	t.Helper()

	user, err := sf.CreateUser(ctx, "Ada", email)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	itemIDs := make([]id.CartItemID, 0, len(productIDs))
	for _, pid := range productIDs {
		item, err := sf.AddCartItem(ctx, user.ID, pid, id.Nil)
		if err != nil {
			t.Fatalf("add cart item: %v", err)
		}
		itemIDs = append(itemIDs, item.ID)
	}

	bill, err := sf.CreateBill(ctx, user.ID, itemIDs, id.Nil)
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	return user, bill
}

// taggedProduct creates a product carrying the given tags, creating any
// tags that do not exist yet.
func taggedProduct(t *testing.T, sf *storefront.Storefront, ctx context.Context, name string, price types.Money, credits int64, tags ...string) *catalog.Product {
	t.Helper()

	p, err := sf.CreateProduct(ctx, name, "", price, credits)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	for _, tag := range tags {
		if _, err := sf.CreateTag(ctx, tag); err != nil && !errors.Is(err, storefront.ErrDuplicateTag) {
			t.Fatalf("create tag: %v", err)
		}
		if err := sf.TagProduct(ctx, p.ID, tag); err != nil {
			t.Fatalf("tag product: %v", err)
		}
	}
	return p
}

func TestHandleWebhookSettlesBill(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	membership := taggedProduct(t, sf, ctx, "Pro Monthly", types.USD(900), 0, catalog.TagMembership)
	credits := taggedProduct(t, sf, ctx, "Credit Pack", types.USD(500), 500, catalog.TagCash)

	user, bill := checkoutBill(t, sf, ctx, "ada@example.com", membership.ID, credits.ID)

	body := webhookBody(t, payment.EventOrderCreated, "order_1", map[string]string{
		"user_id": user.ID.String(),
		"bill_id": bill.ID.String(),
	})

	event, err := sf.HandleWebhook(ctx, body, "")
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if event.Name != payment.EventOrderCreated {
		t.Errorf("expected event %q, got %q", payment.EventOrderCreated, event.Name)
	}

	got, err := sf.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if got.Status != billing.StatusPaid {
		t.Errorf("expected status %q, got %q", billing.StatusPaid, got.Status)
	}
	if got.PaymentRef != "order_1" {
		t.Errorf("expected payment ref %q, got %q", "order_1", got.PaymentRef)
	}
	if got.PaidAt == nil {
		t.Error("expected paid_at to be set")
	}

	// Membership and credits were fulfilled.
	stat, err := sf.UserStat(ctx, user.ID)
	if err != nil {
		t.Fatalf("user stat: %v", err)
	}
	if !stat.IsPro {
		t.Error("expected pro standing after settlement")
	}
	if stat.Cash != 500 {
		t.Errorf("expected 500 credits, got %d", stat.Cash)
	}
}

func TestHandleWebhookReplayIsNoOp(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	credits := taggedProduct(t, sf, ctx, "Credit Pack", types.USD(500), 500, catalog.TagCash)
	user, bill := checkoutBill(t, sf, ctx, "ada@example.com", credits.ID)

	body := webhookBody(t, payment.EventOrderCreated, "order_1", map[string]string{
		"bill_id": bill.ID.String(),
	})

	if _, err := sf.HandleWebhook(ctx, body, ""); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if _, err := sf.HandleWebhook(ctx, body, ""); err != nil {
		t.Fatalf("replayed delivery: %v", err)
	}

	// The replay must not double-credit.
	balance, err := sf.GetUserBalance(ctx, user.ID, account.CashCredits)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance.Balance != 500 {
		t.Errorf("expected 500 credits after replay, got %d", balance.Balance)
	}
}

func TestHandleWebhookRedeliveryCompletesFailedFulfillment(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	sf := storefront.New(st,
		storefront.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		storefront.WithSweepInterval(0),
	)
	if err := sf.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = sf.Stop() })

	// Seed only the viewer role. Checkout works, but the membership
	// grant will fail on the first delivery because pro is missing.
	if err := st.CreateRole(ctx, &account.Role{
		Entity: types.NewEntity(),
		ID:     id.NewRoleID(),
		Name:   account.RoleViewer,
	}); err != nil {
		t.Fatalf("seed viewer role: %v", err)
	}
	for _, name := range workspace.DefaultPermissions {
		if err := st.CreatePermission(ctx, &workspace.Permission{
			Entity: types.NewEntity(),
			ID:     id.NewPermissionID(),
			Name:   name,
		}); err != nil {
			t.Fatalf("seed permission %q: %v", name, err)
		}
	}

	membership := taggedProduct(t, sf, ctx, "Pro Monthly", types.USD(900), 0, catalog.TagMembership)
	credits := taggedProduct(t, sf, ctx, "Credit Pack", types.USD(500), 500, catalog.TagCash)
	user, bill := checkoutBill(t, sf, ctx, "ada@example.com", membership.ID, credits.ID)

	body := webhookBody(t, payment.EventOrderCreated, "order_1", map[string]string{
		"bill_id": bill.ID.String(),
	})

	if _, err := sf.HandleWebhook(ctx, body, ""); err == nil {
		t.Fatal("expected first delivery to fail without the pro role")
	}

	// The bill settled and the cash line applied despite the failure.
	got, err := sf.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if got.Status != billing.StatusPaid {
		t.Fatalf("expected status %q after first delivery, got %q", billing.StatusPaid, got.Status)
	}
	balance, err := sf.GetUserBalance(ctx, user.ID, account.CashCredits)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance.Balance != 500 {
		t.Fatalf("expected 500 credits after first delivery, got %d", balance.Balance)
	}

	// The operator fixes the configuration and the gateway redelivers.
	if err := sf.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}
	if _, err := sf.HandleWebhook(ctx, body, ""); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	stat, err := sf.UserStat(ctx, user.ID)
	if err != nil {
		t.Fatalf("user stat: %v", err)
	}
	if !stat.IsPro {
		t.Error("expected pro standing after redelivery")
	}
	if stat.Cash != 500 {
		t.Errorf("expected credits applied once, got %d", stat.Cash)
	}

	// A further replay with everything fulfilled is a no-op.
	if _, err := sf.HandleWebhook(ctx, body, ""); err != nil {
		t.Fatalf("replay after completion: %v", err)
	}
	stat, err = sf.UserStat(ctx, user.ID)
	if err != nil {
		t.Fatalf("user stat: %v", err)
	}
	if stat.Cash != 500 {
		t.Errorf("expected credits untouched by replay, got %d", stat.Cash)
	}
}

func TestHandleWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	sf, ctx := newTestStorefront(t, storefront.WithWebhookSecret(secret))

	body := webhookBody(t, payment.EventSubscriptionUpdated, "order_1", nil)

	if _, err := sf.HandleWebhook(ctx, body, "deadbeef"); !errors.Is(err, storefront.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	if _, err := sf.HandleWebhook(ctx, body, payment.Sign(secret, body)); err != nil {
		t.Fatalf("expected valid signature to pass, got %v", err)
	}
}

func TestHandleWebhookRefund(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	product, err := sf.CreateProduct(ctx, "Pack", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	_, bill := checkoutBill(t, sf, ctx, "ada@example.com", product.ID)

	custom := map[string]string{"bill_id": bill.ID.String()}

	if _, err := sf.HandleWebhook(ctx, webhookBody(t, payment.EventOrderCreated, "order_1", custom), ""); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if _, err := sf.HandleWebhook(ctx, webhookBody(t, payment.EventOrderRefunded, "order_1", custom), ""); err != nil {
		t.Fatalf("refund: %v", err)
	}

	got, err := sf.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if got.Status != billing.StatusRefunded {
		t.Errorf("expected status %q, got %q", billing.StatusRefunded, got.Status)
	}
	if got.RefundedAt == nil {
		t.Error("expected refunded_at to be set")
	}
}

func TestHandleWebhookMissingBillID(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	body := webhookBody(t, payment.EventOrderCreated, "order_1", nil)
	if _, err := sf.HandleWebhook(ctx, body, ""); !storefront.IsValidation(err) {
		t.Fatalf("expected validation error for missing bill id, got %v", err)
	}
}

func TestProcessMembershipDurations(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	monthly := taggedProduct(t, sf, ctx, "Pro Monthly", types.USD(900), 0, catalog.TagMembership)
	annual := taggedProduct(t, sf, ctx, "Pro Annual", types.USD(9900), 0, catalog.TagMembership, catalog.TagAnnual)
	plain := taggedProduct(t, sf, ctx, "Credit Pack", types.USD(500), 500, catalog.TagCash)

	grant, err := sf.ProcessMembership(ctx, user.ID, monthly.ID)
	if err != nil {
		t.Fatalf("monthly grant: %v", err)
	}
	if got := grant.EndDate.Sub(grant.StartDate); got != catalog.MonthlyDuration {
		t.Errorf("expected monthly window %v, got %v", catalog.MonthlyDuration, got)
	}

	grant, err = sf.ProcessMembership(ctx, user.ID, annual.ID)
	if err != nil {
		t.Fatalf("annual grant: %v", err)
	}
	if got := grant.EndDate.Sub(grant.StartDate); got != catalog.AnnualDuration {
		t.Errorf("expected annual window %v, got %v", catalog.AnnualDuration, got)
	}

	// Products without a membership tag are a no-op.
	grant, err = sf.ProcessMembership(ctx, user.ID, plain.ID)
	if err != nil {
		t.Fatalf("non-membership product: %v", err)
	}
	if grant != nil {
		t.Errorf("expected nil grant for non-membership product, got %+v", grant)
	}
}

func TestProcessMembershipRenewalDoesNotStack(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	monthly := taggedProduct(t, sf, ctx, "Pro Monthly", types.USD(900), 0, catalog.TagMembership)

	first, err := sf.ProcessMembership(ctx, user.ID, monthly.ID)
	if err != nil {
		t.Fatalf("first grant: %v", err)
	}
	second, err := sf.ProcessMembership(ctx, user.ID, monthly.ID)
	if err != nil {
		t.Fatalf("renewal: %v", err)
	}

	// Renewal resets the window to now + duration instead of extending
	// the previous end date.
	stacked := first.EndDate.Add(catalog.MonthlyDuration - time.Hour)
	if second.EndDate.After(stacked) {
		t.Errorf("renewal stacked: end date %v is past %v", second.EndDate, stacked)
	}
	if got := second.EndDate.Sub(second.StartDate); got != catalog.MonthlyDuration {
		t.Errorf("expected renewed window %v, got %v", catalog.MonthlyDuration, got)
	}
}
