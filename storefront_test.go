package storefront_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/store"
	"github.com/xraph/storefront/store/memory"
	"github.com/xraph/storefront/types"
)

// newTestStorefront builds a started engine over a fresh memory store
// with the default roles and permissions seeded.
func newTestStorefront(t *testing.T, opts ...storefront.Option) (*storefront.Storefront, context.Context) {
	t.Helper()
	sf, ctx, _ := newTestStorefrontWithStore(t, opts...)
	return sf, ctx
}

func newTestStorefrontWithStore(t *testing.T, opts ...storefront.Option) (*storefront.Storefront, context.Context, *memory.Store) {
	t.Helper()

	ctx := context.Background()
	st := memory.New()

	base := []storefront.Option{
		storefront.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		storefront.WithSweepInterval(0),
	}
	sf := storefront.New(st, append(base, opts...)...)

	if err := sf.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = sf.Stop() })

	if err := sf.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}

	return sf, ctx, st
}

func TestStartStop(t *testing.T) {
	ctx := context.Background()
	sf := storefront.New(memory.New(),
		storefront.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		storefront.WithSweepInterval(0),
	)
	if err := sf.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sf.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

// migrateCountingStore records Migrate calls passing through to the
// wrapped store.
type migrateCountingStore struct {
	store.Store
	migrations int
}

func (s *migrateCountingStore) Migrate(ctx context.Context) error {
	s.migrations++
	return s.Store.Migrate(ctx)
}

func TestStartWithoutMigrate(t *testing.T) {
	ctx := context.Background()
	st := &migrateCountingStore{Store: memory.New()}

	sf := storefront.New(st,
		storefront.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		storefront.WithSweepInterval(0),
		storefront.WithoutMigrate(),
	)
	if err := sf.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = sf.Stop() })

	if st.migrations != 0 {
		t.Errorf("expected no migration, got %d", st.migrations)
	}

	// The engine is live: seeding and reads work against the store.
	if err := sf.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}
	if _, err := sf.CreateUser(ctx, "Ada", "ada@example.com"); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func TestExpireBills(t *testing.T) {
	// Negative expiry makes every new bill overdue immediately.
	sf, ctx, st := newTestStorefrontWithStore(t, storefront.WithBillExpiry(-time.Minute))

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
	bill, err := sf.CreateBill(ctx, user.ID, []id.CartItemID{item.ID}, id.Nil)
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	count, err := st.ExpireBills(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("expire bills: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 expired bill, got %d", count)
	}

	got, err := sf.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if got.Status != billing.StatusExpired {
		t.Errorf("expected status %q, got %q", billing.StatusExpired, got.Status)
	}

	// A second sweep finds nothing pending.
	count, err = st.ExpireBills(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("expire bills again: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 expired bills on second sweep, got %d", count)
	}
}
