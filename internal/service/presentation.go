package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	rediscache "github.com/utafrali/productview/internal/cache/redis"
	"github.com/utafrali/productview/internal/catalog"
	"github.com/utafrali/productview/internal/domain"
	"github.com/utafrali/productview/internal/presentation"
	"github.com/utafrali/productview/internal/render"
	apperrors "github.com/utafrali/productview/pkg/errors"
	"github.com/utafrali/productview/pkg/tracing"
	"github.com/utafrali/productview/pkg/validator"
)

// InvalidUpstreamProductCode is returned when the catalog sends a product
// that breaks its contract, e.g. one without SKU or name.
const InvalidUpstreamProductCode = "INVALID_UPSTREAM_PRODUCT"

// ViewCache stores assembled view models. Get returns (nil, nil) on a miss.
type ViewCache interface {
	Get(ctx context.Context, key string) (*domain.ViewModel, error)
	Set(ctx context.Context, key string, vm *domain.ViewModel) error
}

// EventPublisher publishes storefront interaction events.
type EventPublisher interface {
	PublishProductViewed(ctx context.Context, sku string) error
	PublishIssueReported(ctx context.Context, sku string, report domain.IssueReport) error
	PublishInspirationRequested(ctx context.Context, product *domain.Product) error
}

// PresentationService fetches products from the catalog and turns them into
// view models, cards and detail pages.
type PresentationService struct {
	catalog     catalog.Source
	cache       ViewCache
	events      EventPublisher
	logger      *slog.Logger
	concurrency int
}

// NewPresentationService creates a presentation service. cache may be nil to
// disable memoization. concurrency bounds AssembleMany fan-out.
func NewPresentationService(source catalog.Source, cache ViewCache, events EventPublisher, logger *slog.Logger, concurrency int) *PresentationService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PresentationService{
		catalog:     source,
		cache:       cache,
		events:      events,
		logger:      logger,
		concurrency: concurrency,
	}
}

var tracer = tracing.Tracer("productview/service")

// GetPresentation assembles the view model of sku. A failure to load the
// sibling set is logged and the product is shown without a variant picker.
func (s *PresentationService) GetPresentation(ctx context.Context, sku string) (*domain.ViewModel, error) {
	ctx, span := tracer.Start(ctx, "PresentationService.GetPresentation")
	defer span.End()
	span.SetAttributes(attribute.String("product.sku", sku))

	product, err := s.fetchProduct(ctx, sku)
	if err != nil {
		tracing.Fail(span, err, "fetch product")
		return nil, err
	}

	siblings, err := s.catalog.ListSiblings(ctx, sku)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list siblings, rendering without variants",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
		siblings = nil
	}

	key, cached := s.cachedView(ctx, product, siblings)
	if cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	vm := presentation.Assemble(*product, siblings)
	assembledTotal.WithLabelValues(string(vm.Variant.Kind), string(vm.Stock.Status)).Inc()
	span.SetAttributes(
		attribute.String("variant.widget", string(vm.Variant.Kind)),
		attribute.Int("variant.siblings", len(siblings)),
	)

	if key != "" {
		if err := s.cache.Set(ctx, key, &vm); err != nil {
			s.logger.WarnContext(ctx, "failed to cache view model",
				slog.String("sku", sku),
				slog.String("error", err.Error()),
			)
		}
	}

	return &vm, nil
}

// cachedView looks up the view model for product and siblings. It returns
// the key to store under (empty when caching is off) and the hit, if any.
func (s *PresentationService) cachedView(ctx context.Context, product *domain.Product, siblings []domain.Product) (string, *domain.ViewModel) {
	if s.cache == nil {
		cacheRequestsTotal.WithLabelValues(cacheDisabled).Inc()
		return "", nil
	}

	key, err := rediscache.Key(*product, siblings)
	if err != nil {
		cacheRequestsTotal.WithLabelValues(cacheError).Inc()
		return "", nil
	}

	vm, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		cacheRequestsTotal.WithLabelValues(cacheError).Inc()
		s.logger.WarnContext(ctx, "view model cache lookup failed",
			slog.String("sku", product.SKU),
			slog.String("error", err.Error()),
		)
		return key, nil
	case vm == nil:
		cacheRequestsTotal.WithLabelValues(cacheMiss).Inc()
		return key, nil
	default:
		cacheRequestsTotal.WithLabelValues(cacheHit).Inc()
		return key, vm
	}
}

// GetDetail returns the view model of sku decorated for the detail page.
func (s *PresentationService) GetDetail(ctx context.Context, sku string) (*render.Detail, error) {
	vm, err := s.GetPresentation(ctx, sku)
	if err != nil {
		return nil, err
	}
	detail := render.NewDetail(*vm)
	return &detail, nil
}

// GetCard returns the listing card of sku.
func (s *PresentationService) GetCard(ctx context.Context, sku string) (*render.Card, error) {
	product, err := s.fetchProduct(ctx, sku)
	if err != nil {
		return nil, err
	}
	card := render.NewCard(*product)
	return &card, nil
}

// AssembleMany builds cards for skus concurrently, in input order. Unknown
// SKUs are skipped; any other failure fails the whole batch.
func (s *PresentationService) AssembleMany(ctx context.Context, skus []string) ([]render.Card, error) {
	ctx, span := tracer.Start(ctx, "PresentationService.AssembleMany")
	defer span.End()
	span.SetAttributes(attribute.Int("products.requested", len(skus)))

	cards := make([]*render.Card, len(skus))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sku := range skus {
		g.Go(func() error {
			card, err := s.GetCard(gctx, sku)
			if errors.Is(err, apperrors.ErrNotFound) {
				s.logger.DebugContext(gctx, "skipping unknown product in batch", slog.String("sku", sku))
				return nil
			}
			if err != nil {
				return fmt.Errorf("card for %s: %w", sku, err)
			}
			cards[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.Fail(span, err, "assemble batch")
		return nil, err
	}

	out := make([]render.Card, 0, len(cards))
	for _, c := range cards {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// ViewProduct records a product view and returns the path of its detail page.
func (s *PresentationService) ViewProduct(ctx context.Context, sku string) (string, error) {
	if sku == "" {
		return "", apperrors.InvalidInput("sku is required")
	}

	if err := s.events.PublishProductViewed(ctx, sku); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.viewed event",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
	}
	return domain.DetailPath(sku), nil
}

// ReportIssue forwards a shopper's issue report about sku.
func (s *PresentationService) ReportIssue(ctx context.Context, sku string, report domain.IssueReport) error {
	if err := validator.Validate(report); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if _, err := s.fetchProduct(ctx, sku); err != nil {
		return err
	}

	if err := s.events.PublishIssueReported(ctx, sku, report); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.issue_reported event",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product issue reported", slog.String("sku", sku))
	return nil
}

// FindInspiration asks downstream recommenders for ideas around sku.
func (s *PresentationService) FindInspiration(ctx context.Context, sku string) error {
	product, err := s.fetchProduct(ctx, sku)
	if err != nil {
		return err
	}

	if err := s.events.PublishInspirationRequested(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.inspiration_requested event",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (s *PresentationService) fetchProduct(ctx context.Context, sku string) (*domain.Product, error) {
	if sku == "" {
		return nil, apperrors.InvalidInput("sku is required")
	}

	product, err := s.catalog.GetProduct(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if err := validator.Validate(product); err != nil {
		s.logger.ErrorContext(ctx, "catalog returned invalid product",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.BadGateway(InvalidUpstreamProductCode,
			fmt.Sprintf("catalog returned an invalid product for %s: %s", sku, err.Error()))
	}
	return product, nil
}
