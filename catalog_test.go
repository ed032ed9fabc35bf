package storefront_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/catalog"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/payment"
	"github.com/xraph/storefront/types"
)

// fakeGateway is an in-process payment.Gateway for engine tests.
type fakeGateway struct {
	catalog     []payment.CatalogProduct
	checkoutURL string
	listErr     error
}

func (g *fakeGateway) CreateCheckout(_ context.Context, _ payment.CheckoutParams) (string, error) {
	return g.checkoutURL, nil
}

func (g *fakeGateway) ListCatalog(_ context.Context) ([]payment.CatalogProduct, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.catalog, nil
}

func TestTagLifecycle(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	product, err := sf.CreateProduct(ctx, "Pro Monthly", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := sf.CreateTag(ctx, catalog.TagMembership); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if _, err := sf.CreateTag(ctx, catalog.TagMembership); !errors.Is(err, storefront.ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag, got %v", err)
	}

	if err := sf.TagProduct(ctx, product.ID, catalog.TagMembership); err != nil {
		t.Fatalf("tag product: %v", err)
	}

	tags, err := sf.ProductTags(ctx, product.ID)
	if err != nil {
		t.Fatalf("product tags: %v", err)
	}
	if len(tags) != 1 || tags[0] != catalog.TagMembership {
		t.Errorf("expected [%q], got %v", catalog.TagMembership, tags)
	}

	if err := sf.UntagProduct(ctx, product.ID, catalog.TagMembership); err != nil {
		t.Fatalf("untag product: %v", err)
	}
	if err := sf.UntagProduct(ctx, product.ID, catalog.TagMembership); !errors.Is(err, storefront.ErrProductNotTagged) {
		t.Fatalf("expected ErrProductNotTagged on second untag, got %v", err)
	}
}

func TestArchiveProductHidesFromActiveList(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	keep, err := sf.CreateProduct(ctx, "Keep", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	gone, err := sf.CreateProduct(ctx, "Gone", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := sf.ArchiveProduct(ctx, gone.ID); err != nil {
		t.Fatalf("archive product: %v", err)
	}

	active, err := sf.ListProducts(ctx, true, types.Page{})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != keep.ID {
		t.Errorf("expected only the active product, got %d products", len(active))
	}

	// Archived products stay readable for existing bills.
	got, err := sf.GetProduct(ctx, gone.ID)
	if err != nil {
		t.Fatalf("get archived product: %v", err)
	}
	if got.Active {
		t.Error("expected archived product to be inactive")
	}
}

func TestUpdateProduct(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	product, err := sf.CreateProduct(ctx, "Pack", "old", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	updated, err := sf.UpdateProduct(ctx, product.ID, func(p *catalog.Product) error {
		p.Description = "new"
		p.Price = types.USD(1900)
		return nil
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Description != "new" || !updated.Price.Equal(types.USD(1900)) {
		t.Errorf("mutation not applied: %+v", updated)
	}

	got, err := sf.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Description != "new" {
		t.Errorf("expected persisted description %q, got %q", "new", got.Description)
	}
}

func TestSyncCatalog(t *testing.T) {
	gw := &fakeGateway{
		catalog: []payment.CatalogProduct{
			{
				ExternalID: "gwprod_1",
				Name:       "Pro",
				Slug:       "pro",
				Status:     "published",
				Variants: []payment.CatalogVariant{
					{ExternalID: "gwvar_1", Name: "Monthly", Price: types.USD(900), Interval: "month"},
					{ExternalID: "gwvar_2", Name: "Annual", Price: types.USD(9900), Interval: "year"},
				},
			},
		},
	}
	sf, ctx := newTestStorefront(t, storefront.WithGateway(gw))

	products, variants, err := sf.SyncCatalog(ctx)
	if err != nil {
		t.Fatalf("sync catalog: %v", err)
	}
	if products != 1 || variants != 2 {
		t.Errorf("expected 1 product and 2 variants, got %d and %d", products, variants)
	}

	// Re-syncing upserts by external id instead of duplicating rows.
	if _, _, err := sf.SyncCatalog(ctx); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	mirrored, err := sf.ListGatewayVariants(ctx)
	if err != nil {
		t.Fatalf("list variants: %v", err)
	}
	if len(mirrored) != 2 {
		t.Errorf("expected 2 mirrored variants after re-sync, got %d", len(mirrored))
	}
}

func TestSyncCatalogWithoutGateway(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	_, _, err := sf.SyncCatalog(ctx)
	if !errors.Is(err, storefront.ErrGatewayNotConfigured) {
		t.Fatalf("expected ErrGatewayNotConfigured, got %v", err)
	}
}

func TestCreateCheckout(t *testing.T) {
	gw := &fakeGateway{
		checkoutURL: "https://pay.example.com/checkout/abc",
		catalog: []payment.CatalogProduct{
			{
				ExternalID: "gwprod_1",
				Name:       "Pro",
				Variants: []payment.CatalogVariant{
					{ExternalID: "gwvar_1", Name: "Monthly", Price: types.USD(900)},
				},
			},
		},
	}
	sf, ctx := newTestStorefront(t, storefront.WithGateway(gw))

	if _, _, err := sf.SyncCatalog(ctx); err != nil {
		t.Fatalf("sync catalog: %v", err)
	}

	product, err := sf.CreateProduct(ctx, "Pro Monthly", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	user, bill := checkoutBill(t, sf, ctx, "ada@example.com", product.ID)

	url, err := sf.CreateCheckout(ctx, user.ID, bill.ID, "gwvar_1", "https://app.example.com/done", false)
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if url != gw.checkoutURL {
		t.Errorf("expected %q, got %q", gw.checkoutURL, url)
	}

	// Unknown variant is rejected before touching the gateway.
	if _, err := sf.CreateCheckout(ctx, user.ID, bill.ID, "gwvar_missing", "", false); !errors.Is(err, storefront.ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}
}

func TestCreateCheckoutSettledBill(t *testing.T) {
	gw := &fakeGateway{
		checkoutURL: "https://pay.example.com/checkout/abc",
		catalog: []payment.CatalogProduct{
			{ExternalID: "gwprod_1", Variants: []payment.CatalogVariant{{ExternalID: "gwvar_1"}}},
		},
	}
	sf, ctx := newTestStorefront(t, storefront.WithGateway(gw))

	if _, _, err := sf.SyncCatalog(ctx); err != nil {
		t.Fatalf("sync catalog: %v", err)
	}

	product, err := sf.CreateProduct(ctx, "Pack", "", types.USD(900), 0)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	_, bill := checkoutBill(t, sf, ctx, "ada@example.com", product.ID)

	body := webhookBody(t, payment.EventOrderCreated, "order_1", map[string]string{
		"bill_id": bill.ID.String(),
	})
	if _, err := sf.HandleWebhook(ctx, body, ""); err != nil {
		t.Fatalf("settle: %v", err)
	}

	_, err = sf.CreateCheckout(ctx, id.NewUserID(), bill.ID, "gwvar_1", "", false)
	if !errors.Is(err, storefront.ErrBillNotPending) {
		t.Fatalf("expected ErrBillNotPending for settled bill, got %v", err)
	}
}
