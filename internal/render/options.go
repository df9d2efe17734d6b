package render

import (
	"github.com/utafrali/productview/internal/domain"
	"github.com/utafrali/productview/internal/presentation"
)

// DefaultGroupLabel names the group of siblings without a variant type.
const DefaultGroupLabel = "Variante"

// Option is one selectable sibling.
type Option struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
	PriceText  string `json:"price_text"`
	DetailPath string `json:"detail_path"`
	Selected   bool   `json:"selected"`
}

// OptionGroup is the first stage of a paginated picker: siblings sharing a
// variant type.
type OptionGroup struct {
	Label    string   `json:"label"`
	Selected bool     `json:"selected"`
	Options  []Option `json:"options"`
}

// VariantOptions is the rendered variant picker. Compact pickers fill
// Options; paginated pickers fill Groups. NONE yields neither.
type VariantOptions struct {
	Kind    domain.WidgetKind `json:"kind"`
	Options []Option          `json:"options,omitempty"`
	Groups  []OptionGroup     `json:"groups,omitempty"`
}

// OptionsRenderer turns a widget decision into a variant picker structure.
type OptionsRenderer struct{}

var _ WidgetRenderer[VariantOptions] = OptionsRenderer{}

func (OptionsRenderer) RenderNone(domain.VariantWidget) VariantOptions {
	return VariantOptions{Kind: domain.WidgetNone}
}

// RenderCompact lists every sibling as a photo option in set order.
func (OptionsRenderer) RenderCompact(w domain.VariantWidget) VariantOptions {
	opts := make([]Option, 0, len(w.Siblings))
	for _, s := range w.Siblings {
		opts = append(opts, newOption(s, w.CurrentSKU))
	}
	return VariantOptions{Kind: domain.WidgetCompact, Options: opts}
}

// RenderPaginated groups siblings by variant type. Groups appear in order of
// first occurrence and options keep set order within each group.
func (OptionsRenderer) RenderPaginated(w domain.VariantWidget) VariantOptions {
	var groups []OptionGroup
	index := make(map[string]int)

	for _, s := range w.Siblings {
		label := DefaultGroupLabel
		if s.VariantType != nil && *s.VariantType != "" {
			label = *s.VariantType
		}

		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, OptionGroup{Label: label})
		}

		opt := newOption(s, w.CurrentSKU)
		if opt.Selected {
			groups[i].Selected = true
		}
		groups[i].Options = append(groups[i].Options, opt)
	}

	return VariantOptions{Kind: domain.WidgetPaginated, Groups: groups}
}

func newOption(p domain.Product, currentSKU string) Option {
	return Option{
		SKU:        p.SKU,
		Name:       p.Name,
		ImageURL:   presentation.SelectImage(p.Images),
		PriceText:  FormatPrice(presentation.ResolvePrice(p)),
		DetailPath: domain.DetailPath(p.SKU),
		Selected:   p.SKU == currentSKU,
	}
}
