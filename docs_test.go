package storefront_test

import (
	"context"
	"log"
	"log/slog"
	"testing"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/store/memory"
	"github.com/xraph/storefront/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Initialize Storefront
		sf := storefront.New(store,
			storefront.WithLogger(slog.Default()),
			storefront.WithSweepInterval(0), // no background sweep in tests
		)

		// Start the engine
		ctx := context.Background()
		if err := sf.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer sf.Stop()

		// Seed the default roles and permissions a fresh store needs
		if err := sf.SeedDefaults(ctx); err != nil {
			t.Fatal(err)
		}

		// Create a user (binds the viewer role and provisions a workspace)
		user, err := sf.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
		if err != nil {
			t.Fatal(err)
		}

		// Add a product to the catalog
		product, err := sf.CreateProduct(ctx, "Pro Pack", "Monthly pro access",
			types.USD(4900), // $49.00
			500,             // credits granted on purchase
		)
		if err != nil {
			t.Fatal(err)
		}

		// Stage the product in the user's cart
		item, err := sf.AddCartItem(ctx, user.ID, product.ID, id.Nil)
		if err != nil {
			t.Fatal(err)
		}

		// Checkout: snapshot the cart into a pending bill
		bill, err := sf.CreateBill(ctx, user.ID, []id.CartItemID{item.ID}, id.Nil)
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("Bill created: %s total %s\n", bill.ID, bill.Total.String())

		// Top up the user's credit balance through the ledger
		balance, err := sf.RecordCashTransaction(ctx, user.ID, account.CashCredits, 5000)
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("Balance: %d %s\n", balance.Balance, balance.Cash)

		// Dashboard summary
		stat, err := sf.UserStat(ctx, user.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stat.Cash != 5000 {
			t.Fatalf("expected balance 5000, got %d", stat.Cash)
		}
	})

	// Test Money type examples
	t.Run("MoneyExamples", func(t *testing.T) {
		// Constructors
		_ = types.USD(4900)   // $49.00
		_ = types.EUR(9900)   // €99.00
		_ = types.VND(15000)  // ₫15000
		_ = types.Zero("usd") // $0.00

		// Arithmetic
		m1 := types.USD(100)
		m2 := types.USD(200)
		_ = m1.Add(m2)     // $3.00
		_ = m1.Multiply(3) // $3.00
		_ = m1.Negate()    // -$1.00

		// Comparison
		if m1.LessThan(m2) {
			// m1 is less than m2
		}

		// Formatting
		_ = m1.String()      // "$1.00"
		_ = m1.FormatMajor() // "1.00"
	})
}
