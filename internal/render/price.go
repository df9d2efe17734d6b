package render

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/productview/internal/domain"
)

// CurrencySuffix follows the amount with no separator, e.g. "12.50€".
const CurrencySuffix = "€"

// FormatPrice renders a display price with exactly two decimals. Halves
// round away from zero on the shortest decimal form of amount, so 1.005
// renders as "1.01€".
func FormatPrice(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2) + CurrencySuffix
}

// Stock colors used by the storefront theme.
const (
	ColorRed   = "red"
	ColorGreen = "green"
	ColorAmber = "amber"
)

// StockColor maps a stock status to its display color.
func StockColor(s domain.StockStatus) string {
	switch s {
	case domain.StockOutOfStock:
		return ColorRed
	case domain.StockInStock:
		return ColorGreen
	default:
		return ColorAmber
	}
}
