package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/productview/internal/domain"
)

// counterValue reads the current value of one labelled counter.
func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, vec.WithLabelValues(labels...).Write(m))
	return m.GetCounter().GetValue()
}

func TestMetrics_CacheDisabledAndAssembled(t *testing.T) {
	src := new(mockSource)
	src.On("GetProduct", mock.Anything, "M-1").Return(sampleProduct("M-1"), nil)
	src.On("ListSiblings", mock.Anything, "M-1").Return(nil, nil)

	svc := NewPresentationService(src, nil, new(mockEvents), newTestLogger(), 1)

	disabledBefore := counterValue(t, cacheRequestsTotal, cacheDisabled)
	assembledBefore := counterValue(t, assembledTotal, string(domain.WidgetNone), string(domain.StockInStock))

	_, err := svc.GetPresentation(context.Background(), "M-1")
	require.NoError(t, err)

	assert.Equal(t, disabledBefore+1, counterValue(t, cacheRequestsTotal, cacheDisabled))
	assert.Equal(t, assembledBefore+1, counterValue(t, assembledTotal, string(domain.WidgetNone), string(domain.StockInStock)))
}

func TestMetrics_CacheHitSkipsAssembly(t *testing.T) {
	src := new(mockSource)
	src.On("GetProduct", mock.Anything, "M-2").Return(sampleProduct("M-2"), nil)
	src.On("ListSiblings", mock.Anything, "M-2").Return(nil, nil)

	cached := &domain.ViewModel{SKU: "M-2", Variant: domain.VariantWidget{Kind: domain.WidgetNone, CurrentSKU: "M-2"}}
	cache := new(mockCache)
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(cached, nil)

	svc := NewPresentationService(src, cache, new(mockEvents), newTestLogger(), 1)

	hitsBefore := counterValue(t, cacheRequestsTotal, cacheHit)
	assembledBefore := counterValue(t, assembledTotal, string(domain.WidgetNone), string(domain.StockInStock))

	vm, err := svc.GetPresentation(context.Background(), "M-2")
	require.NoError(t, err)
	assert.Same(t, cached, vm)

	assert.Equal(t, hitsBefore+1, counterValue(t, cacheRequestsTotal, cacheHit))
	assert.Equal(t, assembledBefore, counterValue(t, assembledTotal, string(domain.WidgetNone), string(domain.StockInStock)))
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}
