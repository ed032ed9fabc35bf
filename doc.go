// Package storefront provides a composable multi-tenant commerce engine for Go applications.
//
// Storefront is designed as a library, not a service. Import it directly into your
// Go application for maximum performance and flexibility. It provides:
//
//   - Cart to bill checkout with atomic snapshots and currency enforcement
//   - Payment gateway integration with signed webhook settlement (Stripe built-in)
//   - Membership grants with role-based access and expiry
//   - Append-only cash transaction ledger with per-user balances
//   - Workspace provisioning with a static role and permission matrix
//   - Product catalog with tags, variants, and gateway sync
//   - Pluggable lifecycle hooks for audit trails and metrics
//
// # Quick Start
//
// Create a storefront instance with your preferred store:
//
//	import (
//	    "github.com/xraph/storefront"
//	    "github.com/xraph/storefront/store/postgres"
//	)
//
//	// db is the application's configured *grove.DB
//	store := postgres.New(db)
//
//	// Create storefront
//	sf := storefront.New(store)
//
//	// Start the engine (runs migrations, begins the expiry sweeper)
//	if err := sf.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sf.Stop()
//
// # Core Concepts
//
// Carts accumulate product selections per user:
//
//	item, err := sf.AddCartItem(ctx, userID, productID, workspaceID)
//
// Checkout snapshots the selected items into a pending bill and clears them
// from the cart in one atomic step:
//
//	bill, err := sf.CreateBill(ctx, userID, itemIDs, workspaceID)
//
// Payment settlement arrives through the gateway webhook and marks the bill
// paid, granting memberships for the purchased products:
//
//	event, err := sf.HandleWebhook(ctx, payload, signature)
//
// Balances move through the append-only transaction ledger:
//
//	balance, err := sf.RecordCashTransaction(ctx, userID, account.CashCredits, 5000)
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest currency
// unit (cents for USD, whole dong for VND). A bill only ever contains items of
// a single currency; mixed-currency checkouts fail before any write happens.
//
// # Integration
//
// Storefront integrates with the Forgery ecosystem:
//
//   - Forge: application extension with config-driven wiring
//   - Chronicle: audit trail via the audit_hook plugin
//   - go-utils: production metrics via the observability plugin
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	user_01h2xcejqtf2nbrexx3vqjhp41  // User ID
//	bill_01h2xcejqtf2nbrexx3vqjhp41  // Bill ID
//	prod_01h455vb4pex5vsknk084sn02q  // Product ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package storefront
