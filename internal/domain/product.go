package domain

import "slices"

// Image type values sent by the catalog. Only ImageTypeAmbiente is
// significant to presentation.
const (
	ImageTypeAmbiente = "ambiente"
)

// Product is a catalog item as delivered by the catalog collaborator. Field
// names on the wire are the catalog's own.
type Product struct {
	SKU              string   `json:"sku" validate:"required"`
	Name             string   `json:"nombre" validate:"required"`
	Brand            *string  `json:"marca,omitempty"`
	ShortDescription *string  `json:"descripcion_corta,omitempty"`
	SalePrice        *float64 `json:"precio_venta,omitempty"`
	ListPrice        *float64 `json:"precio_tarifa,omitempty"`
	StockText        *string  `json:"stock_texto,omitempty"`
	EAN              *string  `json:"ean,omitempty"`
	VariantType      *string  `json:"tipo_variante,omitempty"`
	Images           []Image  `json:"imagenes,omitempty"`

	// BaseItem groups sibling variants. Only catalog sources read it.
	BaseItem *string `json:"articulo_base,omitempty"`
}

// Clone returns a deep copy of p. Pointer fields and images are not shared
// with the original.
func (p Product) Clone() Product {
	c := p
	c.Brand = clonePtr(p.Brand)
	c.ShortDescription = clonePtr(p.ShortDescription)
	c.SalePrice = clonePtr(p.SalePrice)
	c.ListPrice = clonePtr(p.ListPrice)
	c.StockText = clonePtr(p.StockText)
	c.EAN = clonePtr(p.EAN)
	c.VariantType = clonePtr(p.VariantType)
	c.BaseItem = clonePtr(p.BaseItem)
	c.Images = slices.Clone(p.Images)
	return c
}

// CloneProducts deep-copies every product of ps. nil stays nil.
func CloneProducts(ps []Product) []Product {
	if ps == nil {
		return nil
	}
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Image is one photo of a product.
type Image struct {
	URL  string `json:"url_imagen"`
	Type string `json:"tipo_imagen"`
}

// DetailPath returns the storefront path of the product detail page.
func DetailPath(sku string) string {
	return "/producto/" + sku
}

// IssueReport is a shopper's complaint about a product page.
type IssueReport struct {
	Message string `json:"message" validate:"required,max=2000"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}
