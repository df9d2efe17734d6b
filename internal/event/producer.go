package event

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/productview/internal/domain"
	pkgkafka "github.com/utafrali/productview/pkg/kafka"
	"github.com/utafrali/productview/pkg/logger"
)

// Kafka topics for storefront interaction events.
const (
	TopicProductViewed               = "ecommerce.product.viewed"
	TopicProductIssueReported        = "ecommerce.product.issue_reported"
	TopicProductInspirationRequested = "ecommerce.product.inspiration_requested"
)

// AggregateTypeProduct is the aggregate type of every event published here.
const AggregateTypeProduct = "product"

// SourceProductView identifies this service as the event source.
const SourceProductView = "productview-service"

// ProductViewedData is the payload for product.viewed.
type ProductViewedData struct {
	SKU  string `json:"sku"`
	Path string `json:"path"`
}

// IssueReportedData is the payload for product.issue_reported.
type IssueReportedData struct {
	SKU     string `json:"sku"`
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

// InspirationRequestedData is the payload for product.inspiration_requested.
type InspirationRequestedData struct {
	SKU         string  `json:"sku"`
	VariantType *string `json:"variant_type,omitempty"`
	Brand       *string `json:"brand,omitempty"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes product interaction events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer. kafka is usually a *pkgkafka.Producer.
func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishProductViewed publishes a product.viewed event.
func (p *Producer) PublishProductViewed(ctx context.Context, sku string) error {
	return p.publish(ctx, TopicProductViewed, "product.viewed", sku,
		ProductViewedData{SKU: sku, Path: domain.DetailPath(sku)})
}

// PublishIssueReported publishes a product.issue_reported event.
func (p *Producer) PublishIssueReported(ctx context.Context, sku string, report domain.IssueReport) error {
	return p.publish(ctx, TopicProductIssueReported, "product.issue_reported", sku,
		IssueReportedData{SKU: sku, Message: report.Message, Email: report.Email})
}

// PublishInspirationRequested publishes a product.inspiration_requested event.
func (p *Producer) PublishInspirationRequested(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductInspirationRequested, "product.inspiration_requested", product.SKU,
		InspirationRequestedData{SKU: product.SKU, VariantType: product.VariantType, Brand: product.Brand})
}

func (p *Producer) publish(ctx context.Context, topic, eventType, sku string, data any) error {
	event, err := pkgkafka.NewEvent(eventType, sku, AggregateTypeProduct, SourceProductView, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	event.WithSpan(trace.SpanContextFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published "+eventType+" event", slog.String("sku", sku))
	return nil
}
