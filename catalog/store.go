package catalog

import (
	"context"

	"github.com/xraph/storefront/id"
)

type Store interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, productID id.ProductID) (*Product, error)
	GetProducts(ctx context.Context, productIDs []id.ProductID) ([]*Product, error)
	ListProducts(ctx context.Context, opts ListOpts) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	ArchiveProduct(ctx context.Context, productID id.ProductID) error

	CreateTag(ctx context.Context, t *Tag) error
	GetTagByName(ctx context.Context, name string) (*Tag, error)
	ListTags(ctx context.Context) ([]*Tag, error)
	TagProduct(ctx context.Context, pt *ProductTag) error
	UntagProduct(ctx context.Context, productID id.ProductID, tagID id.TagID) error
	// ProductTagNames returns the tag names attached to a product.
	ProductTagNames(ctx context.Context, productID id.ProductID) ([]string, error)

	UpsertGatewayProduct(ctx context.Context, gp *GatewayProduct) error
	UpsertGatewayVariant(ctx context.Context, gv *GatewayVariant) error
	GetGatewayVariant(ctx context.Context, externalID string) (*GatewayVariant, error)
	ListGatewayVariants(ctx context.Context, opts ListOpts) ([]*GatewayVariant, error)
}

type ListOpts struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}
