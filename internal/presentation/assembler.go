package presentation

import "github.com/utafrali/productview/internal/domain"

// Assemble builds the view model for p. siblings is the product's variant
// family, normally including p itself; nil means it has none. The result
// shares no memory with p or siblings.
func Assemble(p domain.Product, siblings []domain.Product) domain.ViewModel {
	own := p.Clone()
	return domain.ViewModel{
		SKU:              p.SKU,
		Name:             p.Name,
		Brand:            own.Brand,
		ShortDescription: own.ShortDescription,
		EAN:              own.EAN,
		VariantType:      own.VariantType,
		DetailPath:       domain.DetailPath(p.SKU),

		DisplayPrice: ResolvePrice(p),
		Stock:        ClassifyStock(p),
		ImageURL:     SelectImage(p.Images),
		Variant:      ChooseWidget(p, siblings),
	}
}
