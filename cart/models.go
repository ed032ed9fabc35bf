// Package cart holds the per-user staging area of product selections
// pending purchase.
package cart

import (
	"github.com/xraph/storefront/catalog"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

// Item is a product selection in a user's cart. Items are deleted when
// folded into a bill or removed explicitly; no shared mutation.
type Item struct {
	types.Entity
	ID          id.CartItemID  `json:"id"`
	UserID      id.UserID      `json:"user_id"`
	ProductID   id.ProductID   `json:"product_id"`
	WorkspaceID id.WorkspaceID `json:"workspace_id,omitempty"`
}

// Line is the typed cart projection returned to callers: the item plus
// a summary of its product.
type Line struct {
	Item    *Item          `json:"item"`
	Product ProductSummary `json:"product"`
}

// ProductSummary is the slice of a product a cart listing exposes.
type ProductSummary struct {
	ID     id.ProductID `json:"id"`
	Name   string       `json:"name"`
	Price  types.Money  `json:"price"`
	Active bool         `json:"active"`
}

// SummarizeProduct builds a ProductSummary from a catalog product.
func SummarizeProduct(p *catalog.Product) ProductSummary {
	return ProductSummary{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Active: p.Active,
	}
}
