package render

import (
	"github.com/utafrali/productview/internal/domain"
	"github.com/utafrali/productview/internal/presentation"
)

// Card is the compact listing tile for a product.
type Card struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	Brand      *string `json:"brand,omitempty"`
	PriceText  string  `json:"price_text"`
	ImageURL   string  `json:"image_url"`
	DetailPath string  `json:"detail_path"`
}

// NewCard builds a listing tile. Cards never show variants, so no sibling
// set is needed.
func NewCard(p domain.Product) Card {
	vm := presentation.Assemble(p, nil)
	return Card{
		SKU:        vm.SKU,
		Name:       vm.Name,
		Brand:      vm.Brand,
		PriceText:  FormatPrice(vm.DisplayPrice),
		ImageURL:   vm.ImageURL,
		DetailPath: vm.DetailPath,
	}
}

// Detail is a view model decorated with display strings for the product
// detail page.
type Detail struct {
	domain.ViewModel
	PriceText  string         `json:"price_text"`
	StockColor string         `json:"stock_color"`
	Options    VariantOptions `json:"options"`
}

// NewDetail decorates vm for the detail page.
func NewDetail(vm domain.ViewModel) Detail {
	return Detail{
		ViewModel:  vm,
		PriceText:  FormatPrice(vm.DisplayPrice),
		StockColor: StockColor(vm.Stock.Status),
		Options:    Dispatch[VariantOptions](vm.Variant, OptionsRenderer{}),
	}
}
