package connect

import (
	"context"
)

// Products reads the product catalog.
type Products struct{ s *Session }

// Products returns the product repository.
func (s *Session) Products() Products { return Products{s} }

// All lists products.
func (r Products) All(ctx context.Context, opts ProductOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/products", opts.values())
}

// Find returns one product.
func (r Products) Find(ctx context.Context, id int, opts ProductOptions) (Payload, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return r.s.get(ctx, "/v1/products/"+itoa(id), opts.values())
}

// Variants lists product variants.
func (r Products) Variants(ctx context.Context, opts VariantOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/products/variants", opts.values())
}

// Prices lists prices as seen by the session's client type.
func (r Products) Prices(ctx context.Context, opts CatalogOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/products/prices", opts.values())
}

// Inventory lists stock levels.
func (r Products) Inventory(ctx context.Context, opts CatalogOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/products/inventory", opts.values())
}

// Seo lists the merchant's seo overwrites.
func (r Products) Seo(ctx context.Context, opts CatalogOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/products/seo", opts.values())
}
