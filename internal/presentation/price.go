package presentation

import (
	"math"

	"github.com/utafrali/productview/internal/domain"
)

// ResolvePrice returns the sale price if it is positive, else the list price
// if it is positive, else 0. Zero, negative, NaN and infinite values count as
// absent, so the result is always finite and non-negative.
func ResolvePrice(p domain.Product) float64 {
	if v, ok := positive(p.SalePrice); ok {
		return v
	}
	if v, ok := positive(p.ListPrice); ok {
		return v
	}
	return 0
}

func positive(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return 0, false
	}
	return *v, true
}
