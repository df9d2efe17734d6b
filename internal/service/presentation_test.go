package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/productview/internal/domain"
	"github.com/utafrali/productview/internal/presentation"
	apperrors "github.com/utafrali/productview/pkg/errors"
)

// --- Mocks ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockSource) ListSiblings(ctx context.Context, sku string) ([]domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (*domain.ViewModel, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ViewModel), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, vm *domain.ViewModel) error {
	args := m.Called(ctx, key, vm)
	return args.Error(0)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishProductViewed(ctx context.Context, sku string) error {
	return m.Called(ctx, sku).Error(0)
}

func (m *mockEvents) PublishIssueReported(ctx context.Context, sku string, report domain.IssueReport) error {
	return m.Called(ctx, sku, report).Error(0)
}

func (m *mockEvents) PublishInspirationRequested(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

// safeSource serves a fixed catalog and is safe for the concurrent calls
// made by AssembleMany.
type safeSource struct {
	mu       sync.Mutex
	products map[string]domain.Product
	fail     map[string]error
	calls    int
}

func (s *safeSource) GetProduct(_ context.Context, sku string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.fail[sku]; ok {
		return nil, err
	}
	p, ok := s.products[sku]
	if !ok {
		return nil, apperrors.NotFound("product", sku)
	}
	return &p, nil
}

func (s *safeSource) ListSiblings(context.Context, string) ([]domain.Product, error) {
	return nil, nil
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func f64Ptr(v float64) *float64 { return &v }
func strPtr(s string) *string   { return &s }

func sampleProduct(sku string) *domain.Product {
	return &domain.Product{
		SKU:       sku,
		Name:      "Lámpara " + sku,
		ListPrice: f64Ptr(59.9),
		StockText: strPtr("En stock"),
		Images:    []domain.Image{{URL: sku + ".jpg", Type: "ambiente"}},
	}
}

func family(n int) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = *sampleProduct(fmt.Sprintf("LAMP-%d", i))
	}
	return out
}

// ============================================================================
// GetPresentation
// ============================================================================

func TestGetPresentation_AssemblesWithSiblings(t *testing.T) {
	src := new(mockSource)
	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 4)

	src.On("GetProduct", mock.Anything, "LAMP-0").Return(sampleProduct("LAMP-0"), nil)
	src.On("ListSiblings", mock.Anything, "LAMP-0").Return(family(3), nil)

	vm, err := svc.GetPresentation(context.Background(), "LAMP-0")
	require.NoError(t, err)

	assert.Equal(t, 59.9, vm.DisplayPrice)
	assert.Equal(t, domain.StockInStock, vm.Stock.Status)
	assert.Equal(t, "LAMP-0.jpg", vm.ImageURL)
	assert.Equal(t, domain.WidgetCompact, vm.Variant.Kind)
	assert.Equal(t, "/producto/LAMP-0", vm.DetailPath)
	src.AssertExpectations(t)
}

func TestGetPresentation_NotFound(t *testing.T) {
	src := new(mockSource)
	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 4)

	src.On("GetProduct", mock.Anything, "NOPE").Return(nil, apperrors.NotFound("product", "NOPE"))

	_, err := svc.GetPresentation(context.Background(), "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	src.AssertNotCalled(t, "ListSiblings", mock.Anything, mock.Anything)
}

func TestGetPresentation_InvalidUpstreamProduct(t *testing.T) {
	src := new(mockSource)
	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 4)

	src.On("GetProduct", mock.Anything, "BROKEN").Return(&domain.Product{SKU: "BROKEN"}, nil)

	_, err := svc.GetPresentation(context.Background(), "BROKEN")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, InvalidUpstreamProductCode, appErr.Code)
	assert.Equal(t, 502, apperrors.HTTPStatus(err))
	assert.Contains(t, appErr.Message, "nombre")
}

func TestGetPresentation_SiblingFailureDegrades(t *testing.T) {
	src := new(mockSource)
	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 4)

	src.On("GetProduct", mock.Anything, "LAMP-0").Return(sampleProduct("LAMP-0"), nil)
	src.On("ListSiblings", mock.Anything, "LAMP-0").Return(nil, errors.New("catalog timeout"))

	vm, err := svc.GetPresentation(context.Background(), "LAMP-0")
	require.NoError(t, err)
	assert.Equal(t, domain.WidgetNone, vm.Variant.Kind)
}

func TestGetPresentation_EmptySKU(t *testing.T) {
	svc := NewPresentationService(new(mockSource), nil, new(mockEvents), newTestLogger(), 4)

	_, err := svc.GetPresentation(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ============================================================================
// GetPresentation caching
// ============================================================================

func TestGetPresentation_CacheHit(t *testing.T) {
	src := new(mockSource)
	cache := new(mockCache)
	svc := NewPresentationService(src, cache, new(mockEvents), newTestLogger(), 4)

	product := sampleProduct("LAMP-0")
	cached := presentation.Assemble(*product, nil)
	cached.Name = "from cache"

	src.On("GetProduct", mock.Anything, "LAMP-0").Return(product, nil)
	src.On("ListSiblings", mock.Anything, "LAMP-0").Return([]domain.Product{}, nil)
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(&cached, nil)

	vm, err := svc.GetPresentation(context.Background(), "LAMP-0")
	require.NoError(t, err)
	assert.Equal(t, "from cache", vm.Name)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPresentation_CacheMissStores(t *testing.T) {
	src := new(mockSource)
	cache := new(mockCache)
	svc := NewPresentationService(src, cache, new(mockEvents), newTestLogger(), 4)

	src.On("GetProduct", mock.Anything, "LAMP-0").Return(sampleProduct("LAMP-0"), nil)
	src.On("ListSiblings", mock.Anything, "LAMP-0").Return(family(8), nil)
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	cache.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(vm *domain.ViewModel) bool {
		return vm.Variant.Kind == domain.WidgetPaginated
	})).Return(nil)

	vm, err := svc.GetPresentation(context.Background(), "LAMP-0")
	require.NoError(t, err)
	assert.Equal(t, domain.WidgetPaginated, vm.Variant.Kind)
	cache.AssertExpectations(t)
}

func TestGetPresentation_CacheErrorsAreNotFatal(t *testing.T) {
	src := new(mockSource)
	cache := new(mockCache)
	svc := NewPresentationService(src, cache, new(mockEvents), newTestLogger(), 4)

	src.On("GetProduct", mock.Anything, "LAMP-0").Return(sampleProduct("LAMP-0"), nil)
	src.On("ListSiblings", mock.Anything, "LAMP-0").Return([]domain.Product{}, nil)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	vm, err := svc.GetPresentation(context.Background(), "LAMP-0")
	require.NoError(t, err)
	assert.Equal(t, "LAMP-0", vm.SKU)
}

// ============================================================================
// GetDetail / GetCard / AssembleMany
// ============================================================================

func TestGetDetail(t *testing.T) {
	src := new(mockSource)
	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 4)

	src.On("GetProduct", mock.Anything, "LAMP-0").Return(sampleProduct("LAMP-0"), nil)
	src.On("ListSiblings", mock.Anything, "LAMP-0").Return(family(2), nil)

	d, err := svc.GetDetail(context.Background(), "LAMP-0")
	require.NoError(t, err)
	assert.Equal(t, "59.90€", d.PriceText)
	assert.Equal(t, "green", d.StockColor)
	assert.Len(t, d.Options.Options, 2)
	assert.True(t, d.Options.Options[0].Selected)
}

func TestGetCard(t *testing.T) {
	src := new(mockSource)
	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 4)

	src.On("GetProduct", mock.Anything, "LAMP-0").Return(sampleProduct("LAMP-0"), nil)

	card, err := svc.GetCard(context.Background(), "LAMP-0")
	require.NoError(t, err)
	assert.Equal(t, "59.90€", card.PriceText)
	src.AssertNotCalled(t, "ListSiblings", mock.Anything, mock.Anything)
}

func TestAssembleMany_PreservesOrderAndSkipsUnknown(t *testing.T) {
	src := &safeSource{products: map[string]domain.Product{}}
	for i := 0; i < 10; i++ {
		p := sampleProduct(fmt.Sprintf("P%02d", i))
		src.products[p.SKU] = *p
	}
	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 3)

	skus := []string{"P09", "P00", "MISSING", "P05", "P01"}
	cards, err := svc.AssembleMany(context.Background(), skus)
	require.NoError(t, err)

	got := make([]string, len(cards))
	for i, c := range cards {
		got[i] = c.SKU
	}
	assert.Equal(t, []string{"P09", "P00", "P05", "P01"}, got)
	assert.Equal(t, 5, src.calls)
}

func TestAssembleMany_FailsOnCatalogError(t *testing.T) {
	src := &safeSource{
		products: map[string]domain.Product{"A": *sampleProduct("A")},
		fail:     map[string]error{"B": errors.New("catalog down")},
	}
	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 2)

	_, err := svc.AssembleMany(context.Background(), []string{"A", "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card for B")
}

func TestAssembleMany_Empty(t *testing.T) {
	svc := NewPresentationService(&safeSource{}, nil, new(mockEvents), newTestLogger(), 0)

	cards, err := svc.AssembleMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

// ============================================================================
// Trigger contracts
// ============================================================================

func TestViewProduct(t *testing.T) {
	events := new(mockEvents)
	svc := NewPresentationService(new(mockSource), nil, events, newTestLogger(), 4)

	events.On("PublishProductViewed", mock.Anything, "LAMP-0").Return(nil)

	path, err := svc.ViewProduct(context.Background(), "LAMP-0")
	require.NoError(t, err)
	assert.Equal(t, "/producto/LAMP-0", path)
	events.AssertExpectations(t)
}

func TestViewProduct_PublishFailureIsNotFatal(t *testing.T) {
	events := new(mockEvents)
	svc := NewPresentationService(new(mockSource), nil, events, newTestLogger(), 4)

	events.On("PublishProductViewed", mock.Anything, "LAMP-0").Return(errors.New("broker down"))

	path, err := svc.ViewProduct(context.Background(), "LAMP-0")
	require.NoError(t, err)
	assert.Equal(t, "/producto/LAMP-0", path)
}

func TestReportIssue(t *testing.T) {
	src := new(mockSource)
	events := new(mockEvents)
	svc := NewPresentationService(src, nil, events, newTestLogger(), 4)
	report := domain.IssueReport{Message: "El precio no coincide", Email: "cliente@example.com"}

	src.On("GetProduct", mock.Anything, "LAMP-0").Return(sampleProduct("LAMP-0"), nil)
	events.On("PublishIssueReported", mock.Anything, "LAMP-0", report).Return(nil)

	require.NoError(t, svc.ReportIssue(context.Background(), "LAMP-0", report))
	events.AssertExpectations(t)
}

func TestReportIssue_InvalidReport(t *testing.T) {
	events := new(mockEvents)
	svc := NewPresentationService(new(mockSource), nil, events, newTestLogger(), 4)

	err := svc.ReportIssue(context.Background(), "LAMP-0", domain.IssueReport{Email: "not-an-email"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	events.AssertNotCalled(t, "PublishIssueReported", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportIssue_UnknownProduct(t *testing.T) {
	src := new(mockSource)
	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 4)

	src.On("GetProduct", mock.Anything, "NOPE").Return(nil, apperrors.NotFound("product", "NOPE"))

	err := svc.ReportIssue(context.Background(), "NOPE", domain.IssueReport{Message: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFindInspiration(t *testing.T) {
	src := new(mockSource)
	events := new(mockEvents)
	svc := NewPresentationService(src, nil, events, newTestLogger(), 4)
	product := sampleProduct("LAMP-0")

	src.On("GetProduct", mock.Anything, "LAMP-0").Return(product, nil)
	events.On("PublishInspirationRequested", mock.Anything, product).Return(errors.New("broker down"))

	require.NoError(t, svc.FindInspiration(context.Background(), "LAMP-0"))
	events.AssertExpectations(t)
}
