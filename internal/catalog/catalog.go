// Package catalog defines where products and their sibling variants come
// from. Implementations live in the postgres and upstream subpackages.
package catalog

import (
	"context"

	"github.com/utafrali/productview/internal/domain"
)

// Source reads products from the catalog of record.
type Source interface {
	// GetProduct returns the product with the given SKU, or an error
	// wrapping apperrors.ErrNotFound.
	GetProduct(ctx context.Context, sku string) (*domain.Product, error)

	// ListSiblings returns the variant family of the product with the given
	// SKU, including the product itself, in catalog order. A product with no
	// family yields an empty slice.
	ListSiblings(ctx context.Context, sku string) ([]domain.Product, error)
}
