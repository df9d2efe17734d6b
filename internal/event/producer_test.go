package event

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/productview/internal/domain"
	pkgkafka "github.com/utafrali/productview/pkg/kafka"
	"github.com/utafrali/productview/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPublishProductViewed(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, testLogger())
	ctx := logger.WithCorrelationID(context.Background(), "corr-9")

	pub.On("Publish", ctx, TopicProductViewed, mock.MatchedBy(func(e *pkgkafka.Event) bool {
		var data ProductViewedData
		require.NoError(t, e.UnmarshalData(&data))
		return e.EventType == "product.viewed" &&
			e.AggregateID == "LAMP-1" &&
			e.CorrelationID == "corr-9" &&
			data.Path == "/producto/LAMP-1"
	})).Return(nil)

	require.NoError(t, p.PublishProductViewed(ctx, "LAMP-1"))
	pub.AssertExpectations(t)
}

func TestPublishIssueReported(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, testLogger())

	pub.On("Publish", mock.Anything, TopicProductIssueReported, mock.MatchedBy(func(e *pkgkafka.Event) bool {
		var data IssueReportedData
		_ = e.UnmarshalData(&data)
		return data.Message == "foto incorrecta" && data.Email == "a@b.es"
	})).Return(nil)

	err := p.PublishIssueReported(context.Background(), "LAMP-1", domain.IssueReport{Message: "foto incorrecta", Email: "a@b.es"})
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestPublishInspirationRequested(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, testLogger())
	vt := "Color"

	pub.On("Publish", mock.Anything, TopicProductInspirationRequested, mock.MatchedBy(func(e *pkgkafka.Event) bool {
		var data InspirationRequestedData
		_ = e.UnmarshalData(&data)
		return data.SKU == "LAMP-1" && data.VariantType != nil && *data.VariantType == "Color"
	})).Return(nil)

	require.NoError(t, p.PublishInspirationRequested(context.Background(), &domain.Product{SKU: "LAMP-1", Name: "Lámpara", VariantType: &vt}))
	pub.AssertExpectations(t)
}

func TestPublish_BrokerError(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, testLogger())

	pub.On("Publish", mock.Anything, TopicProductViewed, mock.Anything).Return(errors.New("broker down"))

	err := p.PublishProductViewed(context.Background(), "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish product.viewed event")
}

func TestPublish_CarriesTraceContext(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, testLogger())

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0xaa},
		SpanID:  trace.SpanID{0xbb},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	pub.On("Publish", ctx, TopicProductViewed, mock.MatchedBy(func(e *pkgkafka.Event) bool {
		return e.Metadata[pkgkafka.MetadataTraceID] == sc.TraceID().String()
	})).Return(nil)

	require.NoError(t, p.PublishProductViewed(ctx, "SKU-T"))
	pub.AssertExpectations(t)
}
