package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/productview/internal/domain"
	"github.com/utafrali/productview/pkg/database"
	apperrors "github.com/utafrali/productview/pkg/errors"
)

const productColumns = `p.sku, p.name, p.brand, p.short_description,
	p.sale_price::float8, p.list_price::float8, p.stock_text, p.ean, p.variant_type, p.base_item`

// Source implements catalog.Source over the products and product_images tables.
type Source struct {
	db database.DBTX
}

// NewSource creates a PostgreSQL-backed catalog source.
func NewSource(db database.DBTX) *Source {
	return &Source{db: db}
}

// GetProduct retrieves a product and its images by SKU.
func (s *Source) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.sku = $1`

	p, err := scanProduct(s.db.QueryRow(ctx, query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", sku)
		}
		return nil, fmt.Errorf("get product %s: %w", sku, err)
	}

	images, err := s.imagesFor(ctx, []string{sku})
	if err != nil {
		return nil, err
	}
	p.Images = images[sku]

	return &p, nil
}

// ListSiblings returns every product sharing the base item of sku, ordered
// by SKU. Products without a base item have no siblings.
func (s *Source) ListSiblings(ctx context.Context, sku string) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN products cur ON cur.base_item = p.base_item
		WHERE cur.sku = $1
		ORDER BY p.sku`

	rows, err := s.db.Query(ctx, query, sku)
	if err != nil {
		return nil, fmt.Errorf("list siblings of %s: %w", sku, err)
	}
	defer rows.Close()

	var (
		siblings []domain.Product
		skus     []string
	)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sibling of %s: %w", sku, err)
		}
		siblings = append(siblings, p)
		skus = append(skus, p.SKU)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate siblings of %s: %w", sku, err)
	}
	if len(siblings) == 0 {
		return []domain.Product{}, nil
	}

	images, err := s.imagesFor(ctx, skus)
	if err != nil {
		return nil, err
	}
	for i := range siblings {
		siblings[i].Images = images[siblings[i].SKU]
	}

	return siblings, nil
}

func (s *Source) imagesFor(ctx context.Context, skus []string) (map[string][]domain.Image, error) {
	query := `
		SELECT sku, url, image_type
		FROM product_images
		WHERE sku = ANY($1)
		ORDER BY sku, position, id`

	rows, err := s.db.Query(ctx, query, skus)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Image, len(skus))
	for rows.Next() {
		var (
			sku string
			img domain.Image
		)
		if err := rows.Scan(&sku, &img.URL, &img.Type); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		out[sku] = append(out[sku], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product images: %w", err)
	}
	return out, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.SKU,
		&p.Name,
		&p.Brand,
		&p.ShortDescription,
		&p.SalePrice,
		&p.ListPrice,
		&p.StockText,
		&p.EAN,
		&p.VariantType,
		&p.BaseItem,
	)
	return p, err
}
