package presentation

import "github.com/utafrali/productview/internal/domain"

// CompactMaxSiblings is the largest sibling set rendered as a compact photo
// picker. Larger sets are paginated.
const CompactMaxSiblings = 6

// ChooseWidget picks the variant widget from the size of the sibling set
// alone. A nil or single-element set needs no picker. The widget holds its
// own copy of the siblings.
func ChooseWidget(current domain.Product, siblings []domain.Product) domain.VariantWidget {
	w := domain.VariantWidget{Kind: widgetKind(len(siblings)), CurrentSKU: current.SKU}
	if w.Kind != domain.WidgetNone {
		w.Siblings = domain.CloneProducts(siblings)
	}
	return w
}

func widgetKind(n int) domain.WidgetKind {
	switch {
	case n <= 1:
		return domain.WidgetNone
	case n <= CompactMaxSiblings:
		return domain.WidgetCompact
	default:
		return domain.WidgetPaginated
	}
}
