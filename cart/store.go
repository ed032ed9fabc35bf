package cart

import (
	"context"

	"github.com/xraph/storefront/id"
)

type Store interface {
	AddCartItem(ctx context.Context, item *Item) error
	GetCartItems(ctx context.Context, itemIDs []id.CartItemID) ([]*Item, error)
	// ListCartItems returns one page of a user's cart, newest first,
	// plus the total item count for pagination.
	ListCartItems(ctx context.Context, userID id.UserID, opts ListOpts) ([]*Item, int, error)
	RemoveCartItem(ctx context.Context, userID id.UserID, itemID id.CartItemID) error
}

type ListOpts struct {
	Limit  int
	Offset int
}
