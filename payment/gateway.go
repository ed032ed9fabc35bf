// Package payment defines the payment-gateway collaborator: checkout
// creation, catalog listing for sync, and webhook event parsing.
package payment

import (
	"context"

	"github.com/xraph/storefront/types"
)

// CheckoutParams describes one hosted-checkout session request.
type CheckoutParams struct {
	// VariantID is the gateway's variant (price point) identifier.
	VariantID string
	// RedirectURL is where the gateway sends the buyer after payment.
	RedirectURL string
	// Embed requests an embeddable checkout overlay instead of a full
	// redirect page.
	Embed bool
	// CustomData is echoed back verbatim in webhook payloads. The
	// engine stores user and bill identifiers here for settlement.
	CustomData map[string]string
}

// CatalogProduct is a product record as the gateway reports it.
type CatalogProduct struct {
	ExternalID string
	Name       string
	Slug       string
	Status     string
	Variants   []CatalogVariant
}

// CatalogVariant is a purchasable price point as the gateway reports it.
type CatalogVariant struct {
	ExternalID string
	Name       string
	Price      types.Money
	Interval   string
}

// Gateway is the narrow interface the engine needs from a payment
// provider. Implementations translate provider errors into their own
// domain errors; the engine does not retry.
type Gateway interface {
	// CreateCheckout returns a hosted-checkout URL for the variant.
	CreateCheckout(ctx context.Context, params CheckoutParams) (string, error)
	// ListCatalog returns the gateway's current product catalog for sync.
	ListCatalog(ctx context.Context) ([]CatalogProduct, error)
}
