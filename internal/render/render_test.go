package render

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/productview/internal/domain"
	"github.com/utafrali/productview/internal/presentation"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

// ============================================================================
// FormatPrice / StockColor
// ============================================================================

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.5, "12.50€"},
		{0, "0.00€"},
		{19.99, "19.99€"},
		{1234, "1234.00€"},
		{0.005, "0.01€"},
		// Half-up on the shortest decimal form of the float, not on its
		// binary expansion: 1.005 and 2.675 round up.
		{1.005, "1.01€"},
		{2.675, "2.68€"},
		{1.004, "1.00€"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(tt.in))
		})
	}
}

func TestStockColor(t *testing.T) {
	assert.Equal(t, ColorRed, StockColor(domain.StockOutOfStock))
	assert.Equal(t, ColorGreen, StockColor(domain.StockInStock))
	assert.Equal(t, ColorAmber, StockColor(domain.StockUnknown))
	assert.Equal(t, ColorAmber, StockColor("bogus"))
}

// ============================================================================
// Dispatch
// ============================================================================

type recordingRenderer struct{}

func (recordingRenderer) RenderNone(domain.VariantWidget) string      { return "none" }
func (recordingRenderer) RenderCompact(domain.VariantWidget) string   { return "compact" }
func (recordingRenderer) RenderPaginated(domain.VariantWidget) string { return "paginated" }

func TestDispatch(t *testing.T) {
	r := recordingRenderer{}
	assert.Equal(t, "none", Dispatch[string](domain.VariantWidget{Kind: domain.WidgetNone}, r))
	assert.Equal(t, "compact", Dispatch[string](domain.VariantWidget{Kind: domain.WidgetCompact}, r))
	assert.Equal(t, "paginated", Dispatch[string](domain.VariantWidget{Kind: domain.WidgetPaginated}, r))
	assert.Equal(t, "none", Dispatch[string](domain.VariantWidget{}, r))
}

// ============================================================================
// OptionsRenderer
// ============================================================================

func sibling(sku, variantType string) domain.Product {
	p := domain.Product{SKU: sku, Name: "Mesa " + sku, ListPrice: f64(100)}
	if variantType != "" {
		p.VariantType = str(variantType)
	}
	return p
}

func TestOptionsRenderer_Compact(t *testing.T) {
	siblings := []domain.Product{sibling("A", ""), sibling("B", ""), sibling("C", "")}
	siblings[1].Images = []domain.Image{{URL: "b.jpg", Type: "ambiente"}}
	w := presentation.ChooseWidget(siblings[1], siblings)
	require.Equal(t, domain.WidgetCompact, w.Kind)

	out := Dispatch[VariantOptions](w, OptionsRenderer{})

	require.Len(t, out.Options, 3)
	assert.Empty(t, out.Groups)
	assert.Equal(t, []string{"A", "B", "C"}, []string{out.Options[0].SKU, out.Options[1].SKU, out.Options[2].SKU})
	assert.True(t, out.Options[1].Selected)
	assert.False(t, out.Options[0].Selected)
	assert.Equal(t, "b.jpg", out.Options[1].ImageURL)
	assert.Equal(t, presentation.PlaceholderImageURL, out.Options[0].ImageURL)
	assert.Equal(t, "100.00€", out.Options[0].PriceText)
	assert.Equal(t, "/producto/C", out.Options[2].DetailPath)
}

func TestOptionsRenderer_Paginated(t *testing.T) {
	var siblings []domain.Product
	for i := 0; i < 4; i++ {
		siblings = append(siblings, sibling(fmt.Sprintf("R%d", i), "Color"))
	}
	siblings = append(siblings, sibling("S0", "Tamaño"), sibling("X0", ""), sibling("S1", "Tamaño"))

	w := presentation.ChooseWidget(siblings[5], siblings)
	require.Equal(t, domain.WidgetPaginated, w.Kind)

	out := OptionsRenderer{}.RenderPaginated(w)

	require.Len(t, out.Groups, 3)
	assert.Equal(t, "Color", out.Groups[0].Label)
	assert.Len(t, out.Groups[0].Options, 4)
	assert.Equal(t, "Tamaño", out.Groups[1].Label)
	assert.Equal(t, "S0", out.Groups[1].Options[0].SKU)
	assert.Equal(t, "S1", out.Groups[1].Options[1].SKU)
	assert.Equal(t, DefaultGroupLabel, out.Groups[2].Label)
	assert.True(t, out.Groups[2].Selected)
	assert.False(t, out.Groups[0].Selected)
}

func TestOptionsRenderer_None(t *testing.T) {
	out := Dispatch[VariantOptions](presentation.ChooseWidget(sibling("A", ""), nil), OptionsRenderer{})
	assert.Equal(t, domain.WidgetNone, out.Kind)
	assert.Nil(t, out.Options)
	assert.Nil(t, out.Groups)
}

// ============================================================================
// Card / Detail
// ============================================================================

func TestNewCard(t *testing.T) {
	p := domain.Product{
		SKU:       "CHAIR-9",
		Name:      "Silla",
		Brand:     str("Roble"),
		SalePrice: f64(49.9),
		ListPrice: f64(59.9),
		Images:    []domain.Image{{URL: "c.jpg", Type: "producto"}},
	}

	c := NewCard(p)

	assert.Equal(t, "CHAIR-9", c.SKU)
	assert.Equal(t, "Roble", *c.Brand)
	assert.Equal(t, "49.90€", c.PriceText)
	assert.Equal(t, "c.jpg", c.ImageURL)
	assert.Equal(t, "/producto/CHAIR-9", c.DetailPath)
}

func TestNewDetail(t *testing.T) {
	p := sibling("A", "")
	p.StockText = str("Agotado")
	siblings := []domain.Product{p, sibling("B", "")}

	d := NewDetail(presentation.Assemble(p, siblings))

	assert.Equal(t, "100.00€", d.PriceText)
	assert.Equal(t, ColorRed, d.StockColor)
	assert.Equal(t, domain.WidgetCompact, d.Options.Kind)
	assert.Len(t, d.Options.Options, 2)
	assert.Equal(t, "A", d.SKU)
}
