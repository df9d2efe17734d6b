package presentation

import (
	"strings"

	"github.com/utafrali/productview/internal/domain"
)

const (
	// StockLabelPlaceholder is shown when the catalog sends no stock text.
	StockLabelPlaceholder = "Consultar disponibilidad"

	outOfStockToken = "agotado"
	inStockToken    = "En stock"
)

// ClassifyStock derives availability from the free stock text. The
// out-of-stock check is case-insensitive and runs first; the in-stock check
// is case-sensitive. Text carrying both markers is out of stock.
func ClassifyStock(p domain.Product) domain.Stock {
	if p.StockText == nil || *p.StockText == "" {
		return domain.Stock{Status: domain.StockUnknown, Label: StockLabelPlaceholder}
	}

	text := *p.StockText
	status := domain.StockUnknown
	switch {
	case strings.Contains(strings.ToLower(text), outOfStockToken):
		status = domain.StockOutOfStock
	case strings.Contains(text, inStockToken):
		status = domain.StockInStock
	}
	return domain.Stock{Status: status, Label: text}
}
