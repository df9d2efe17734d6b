package render

import "github.com/utafrali/productview/internal/domain"

// WidgetRenderer renders one variant widget kind per method. Implementations
// produce whatever output their surface needs.
type WidgetRenderer[T any] interface {
	RenderNone(w domain.VariantWidget) T
	RenderCompact(w domain.VariantWidget) T
	RenderPaginated(w domain.VariantWidget) T
}

// Dispatch calls the renderer method matching w.Kind. Unknown kinds render
// as NONE.
func Dispatch[T any](w domain.VariantWidget, r WidgetRenderer[T]) T {
	switch w.Kind {
	case domain.WidgetCompact:
		return r.RenderCompact(w)
	case domain.WidgetPaginated:
		return r.RenderPaginated(w)
	default:
		return r.RenderNone(w)
	}
}
