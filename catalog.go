package storefront

import (
	"context"
	"fmt"

	"github.com/xraph/storefront/catalog"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

// ──────────────────────────────────────────────────
// Products
// ──────────────────────────────────────────────────

// CreateProduct adds a sellable product to the catalog.
func (sf *Storefront) CreateProduct(ctx context.Context, name, description string, price types.Money, creditAmount int64) (*catalog.Product, error) {
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "is required"}
	}
	if price.IsNegative() {
		return nil, ValidationError{Field: "price", Message: "must not be negative"}
	}

	p := &catalog.Product{
		Entity:       types.NewEntity(),
		ID:           id.NewProductID(),
		Name:         name,
		Description:  description,
		Price:        price,
		Active:       true,
		CreditAmount: creditAmount,
	}
	if err := sf.store.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	sf.plugins.EmitProductCreated(ctx, p)

	sf.logger.Info("product created",
		"product_id", p.ID.String(),
		"name", p.Name,
		"price", p.Price.String(),
	)

	return p, nil
}

// GetProduct retrieves a product by ID.
func (sf *Storefront) GetProduct(ctx context.Context, productID id.ProductID) (*catalog.Product, error) {
	return sf.store.GetProduct(ctx, productID)
}

// ListProducts returns one page of the catalog, newest first.
func (sf *Storefront) ListProducts(ctx context.Context, activeOnly bool, page types.Page) ([]*catalog.Product, error) {
	products, err := sf.store.ListProducts(ctx, catalog.ListOpts{
		ActiveOnly: activeOnly,
		Limit:      page.Limit(),
		Offset:     page.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies the given mutation to a product and persists it.
func (sf *Storefront) UpdateProduct(ctx context.Context, productID id.ProductID, mutate func(*catalog.Product) error) (*catalog.Product, error) {
	p, err := sf.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if err := mutate(p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	p.Touch()
	if err := sf.store.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// ArchiveProduct soft-deletes a product. Archived products stay readable
// for existing bills but cannot be carted.
func (sf *Storefront) ArchiveProduct(ctx context.Context, productID id.ProductID) error {
	if err := sf.store.ArchiveProduct(ctx, productID); err != nil {
		return fmt.Errorf("archive product: %w", err)
	}

	sf.plugins.EmitProductArchived(ctx, productID.String())

	sf.logger.Info("product archived",
		"product_id", productID.String(),
	)

	return nil
}

// ──────────────────────────────────────────────────
// Tags
// ──────────────────────────────────────────────────

// CreateTag creates a catalog tag.
func (sf *Storefront) CreateTag(ctx context.Context, name string) (*catalog.Tag, error) {
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "is required"}
	}

	t := &catalog.Tag{
		Entity: types.NewEntity(),
		ID:     id.NewTagID(),
		Name:   name,
	}
	if err := sf.store.CreateTag(ctx, t); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return t, nil
}

// ListTags returns all catalog tags.
func (sf *Storefront) ListTags(ctx context.Context) ([]*catalog.Tag, error) {
	return sf.store.ListTags(ctx)
}

// TagProduct attaches a tag to a product by tag name.
func (sf *Storefront) TagProduct(ctx context.Context, productID id.ProductID, tagName string) error {
	if _, err := sf.store.GetProduct(ctx, productID); err != nil {
		return fmt.Errorf("tag product: %w", err)
	}
	tag, err := sf.store.GetTagByName(ctx, tagName)
	if err != nil {
		return fmt.Errorf("tag product: %w", err)
	}

	pt := &catalog.ProductTag{
		Entity:    types.NewEntity(),
		ID:        id.NewProductTagID(),
		ProductID: productID,
		TagID:     tag.ID,
	}
	if err := sf.store.TagProduct(ctx, pt); err != nil {
		return fmt.Errorf("tag product: %w", err)
	}
	return nil
}

// UntagProduct detaches a tag from a product by tag name.
func (sf *Storefront) UntagProduct(ctx context.Context, productID id.ProductID, tagName string) error {
	tag, err := sf.store.GetTagByName(ctx, tagName)
	if err != nil {
		return fmt.Errorf("untag product: %w", err)
	}
	if err := sf.store.UntagProduct(ctx, productID, tag.ID); err != nil {
		return fmt.Errorf("untag product: %w", err)
	}
	return nil
}

// ProductTags returns the tag names attached to a product.
func (sf *Storefront) ProductTags(ctx context.Context, productID id.ProductID) ([]string, error) {
	return sf.store.ProductTagNames(ctx, productID)
}

// ──────────────────────────────────────────────────
// Gateway catalog sync
// ──────────────────────────────────────────────────

// SyncCatalog pulls the payment gateway's product and variant catalog
// and upserts the local mirror, keyed by external ID. Rows absent from
// the gateway are left in place.
func (sf *Storefront) SyncCatalog(ctx context.Context) (int, int, error) {
	if sf.gateway == nil {
		return 0, 0, fmt.Errorf("sync catalog: %w", ErrGatewayNotConfigured)
	}

	remote, err := sf.gateway.ListCatalog(ctx)
	if err != nil {
		sf.plugins.EmitCatalogSynced(ctx, 0, 0, err)
		return 0, 0, fmt.Errorf("sync catalog: %w", err)
	}

	var products, variants int
	for _, rp := range remote {
		gp := &catalog.GatewayProduct{
			Entity:     types.NewEntity(),
			ID:         id.NewGatewayProductID(),
			ExternalID: rp.ExternalID,
			Name:       rp.Name,
			Slug:       rp.Slug,
			Status:     rp.Status,
		}
		if err := sf.store.UpsertGatewayProduct(ctx, gp); err != nil {
			return products, variants, fmt.Errorf("sync catalog: product %s: %w", rp.ExternalID, err)
		}
		products++

		for _, rv := range rp.Variants {
			gv := &catalog.GatewayVariant{
				Entity:            types.NewEntity(),
				ID:                id.NewGatewayVariantID(),
				ExternalID:        rv.ExternalID,
				ExternalProductID: rp.ExternalID,
				Name:              rv.Name,
				Price:             rv.Price,
				Interval:          rv.Interval,
			}
			if err := sf.store.UpsertGatewayVariant(ctx, gv); err != nil {
				return products, variants, fmt.Errorf("sync catalog: variant %s: %w", rv.ExternalID, err)
			}
			variants++
		}
	}

	sf.plugins.EmitCatalogSynced(ctx, products, variants, nil)

	sf.logger.Info("catalog synced",
		"products", products,
		"variants", variants,
	)

	return products, variants, nil
}

// ListGatewayVariants returns the locally mirrored gateway variants.
func (sf *Storefront) ListGatewayVariants(ctx context.Context) ([]*catalog.GatewayVariant, error) {
	return sf.store.ListGatewayVariants(ctx, catalog.ListOpts{})
}
