// Package stripe adapts Stripe as a payment.Gateway using hosted
// checkout sessions.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/xraph/storefront/payment"
	"github.com/xraph/storefront/types"
)

// Domain errors surfaced instead of raw stripe-go errors.
var (
	ErrCheckoutFailed = errors.New("stripe: checkout creation failed")
	ErrProviderDown   = errors.New("stripe: provider unavailable")
)

// Gateway implements payment.Gateway on the Stripe API.
type Gateway struct {
	client *client.API
}

var _ payment.Gateway = (*Gateway)(nil)

// New creates a Gateway with the given secret key.
func New(apiKey string) *Gateway {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &Gateway{client: sc}
}

// CreateCheckout creates a hosted checkout session for the variant
// (a Stripe price id) and returns its URL. Embedded sessions return the
// client secret instead, which the caller hands to the browser SDK.
func (g *Gateway) CreateCheckout(ctx context.Context, p payment.CheckoutParams) (string, error) {
	if p.VariantID == "" {
		return "", fmt.Errorf("%w: missing variant id", ErrCheckoutFailed)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.VariantID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	if p.Embed {
		params.UIMode = stripe.String(string(stripe.CheckoutSessionUIModeEmbedded))
		params.ReturnURL = stripe.String(p.RedirectURL)
	} else {
		params.SuccessURL = stripe.String(p.RedirectURL)
	}

	// Custom data rides on session metadata and comes back in webhooks.
	for k, v := range p.CustomData {
		params.AddMetadata(k, v)
	}

	sess, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return "", g.mapError(err)
	}

	if p.Embed {
		return sess.ClientSecret, nil
	}
	return sess.URL, nil
}

// ListCatalog returns active products with their prices as catalog
// records for sync.
func (g *Gateway) ListCatalog(ctx context.Context) ([]payment.CatalogProduct, error) {
	productParams := &stripe.ProductListParams{Active: stripe.Bool(true)}
	productParams.Context = ctx

	var out []payment.CatalogProduct

	products := g.client.Products.List(productParams)
	for products.Next() {
		prod := products.Product()

		cp := payment.CatalogProduct{
			ExternalID: prod.ID,
			Name:       prod.Name,
			Slug:       slugify(prod.Name),
			Status:     "published",
		}
		if !prod.Active {
			cp.Status = "draft"
		}

		priceParams := &stripe.PriceListParams{Product: stripe.String(prod.ID)}
		priceParams.Context = ctx

		prices := g.client.Prices.List(priceParams)
		for prices.Next() {
			price := prices.Price()
			cv := payment.CatalogVariant{
				ExternalID: price.ID,
				Name:       price.Nickname,
				Price: types.Money{
					Amount:   price.UnitAmount,
					Currency: string(price.Currency),
				},
			}
			if price.Recurring != nil {
				cv.Interval = string(price.Recurring.Interval)
			}
			cp.Variants = append(cp.Variants, cv)
		}
		if err := prices.Err(); err != nil {
			return nil, g.mapError(err)
		}

		out = append(out, cp)
	}
	if err := products.Err(); err != nil {
		return nil, g.mapError(err)
	}

	return out, nil
}

// mapError converts stripe-go errors into the package's domain errors so
// the library does not leak into callers.
func (g *Gateway) mapError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s", ErrProviderDown, stripeErr.Msg)
		}
		return fmt.Errorf("%w: %s (%s)", ErrCheckoutFailed, stripeErr.Msg, stripeErr.Code)
	}
	return fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	return s
}
