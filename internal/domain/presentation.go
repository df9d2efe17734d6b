package domain

// StockStatus is the tri-state availability derived from free stock text.
type StockStatus string

const (
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
	StockInStock    StockStatus = "IN_STOCK"
	StockUnknown    StockStatus = "UNKNOWN"
)

// Stock pairs a status with the text shown to the shopper.
type Stock struct {
	Status StockStatus `json:"status"`
	Label  string      `json:"label"`
}

// WidgetKind is the variant-picking affordance chosen for a sibling set.
type WidgetKind string

const (
	WidgetNone      WidgetKind = "NONE"
	WidgetCompact   WidgetKind = "COMPACT"
	WidgetPaginated WidgetKind = "PAGINATED"
)

// VariantWidget is the variant selection decision. Siblings is only set for
// COMPACT and PAGINATED.
type VariantWidget struct {
	Kind       WidgetKind `json:"kind"`
	CurrentSKU string     `json:"current_sku"`
	Siblings   []Product  `json:"siblings,omitempty"`
}

// ViewModel is everything the storefront needs to render one product. It is
// recomputed per request and never mutated after assembly.
type ViewModel struct {
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	Brand            *string `json:"brand,omitempty"`
	ShortDescription *string `json:"short_description,omitempty"`
	EAN              *string `json:"ean,omitempty"`
	VariantType      *string `json:"variant_type,omitempty"`
	DetailPath       string  `json:"detail_path"`

	DisplayPrice float64       `json:"display_price"`
	Stock        Stock         `json:"stock"`
	ImageURL     string        `json:"image_url"`
	Variant      VariantWidget `json:"variant"`
}
