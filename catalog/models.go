// Package catalog holds products, tags, and the externally synced
// gateway price records.
package catalog

import (
	"time"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

// Reserved tag names. A "membership" tag marks role-granting products;
// "annual"/"monthly" select the grant duration; "cash" marks products
// that top up the CREDITS balance.
const (
	TagMembership = "membership"
	TagAnnual     = "annual"
	TagMonthly    = "monthly"
	TagCash       = "cash"
	TagWorkspace  = "workspace"
	TagProduct    = "product"
)

// Membership grant durations.
const (
	AnnualDuration  = 365 * 24 * time.Hour
	MonthlyDuration = 30 * 24 * time.Hour
)

// MembershipDuration returns the grant duration for a product's tag
// names, and whether the product grants a membership at all.
func MembershipDuration(tagNames []string) (time.Duration, bool) {
	member, annual := false, false
	for _, name := range tagNames {
		switch name {
		case TagMembership:
			member = true
		case TagAnnual:
			annual = true
		}
	}
	if !member {
		return 0, false
	}
	if annual {
		return AnnualDuration, true
	}
	return MonthlyDuration, true
}

// Product is a purchasable catalog entry. Archiving flips Active rather
// than deleting the row; bills keep referencing archived products.
type Product struct {
	types.Entity
	ID          id.ProductID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       types.Money  `json:"price"`
	Active      bool         `json:"active"`

	// CreditAmount is the CREDITS granted when a cash-tagged product is
	// fulfilled. Zero for everything else.
	CreditAmount int64 `json:"credit_amount,omitempty"`
}

type Tag struct {
	types.Entity
	ID   id.TagID `json:"id"`
	Name string   `json:"name"`
}

// ProductTag joins a product to a tag.
type ProductTag struct {
	types.Entity
	ID        id.ProductTagID `json:"id"`
	ProductID id.ProductID    `json:"product_id"`
	TagID     id.TagID        `json:"tag_id"`
}

// GatewayProduct mirrors a product record in the payment gateway's
// catalog, refreshed by sync.
type GatewayProduct struct {
	types.Entity
	ID         id.GatewayProductID `json:"id"`
	ExternalID string              `json:"external_id"`
	Name       string              `json:"name"`
	Slug       string              `json:"slug"`
	Status     string              `json:"status"`
}

// GatewayVariant mirrors a purchasable variant (price point) in the
// gateway's catalog. Checkouts are created against variants.
type GatewayVariant struct {
	types.Entity
	ID                id.GatewayVariantID `json:"id"`
	ExternalID        string              `json:"external_id"`
	ExternalProductID string              `json:"external_product_id"`
	Name              string              `json:"name"`
	Price             types.Money         `json:"price"`
	Interval          string              `json:"interval,omitempty"`
}
