package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/productview/internal/domain"
	apperrors "github.com/utafrali/productview/pkg/errors"
	"github.com/utafrali/productview/pkg/httpclient"
)

const serviceName = "catalog"

// Source implements catalog.Source against the storefront catalog API.
type Source struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
}

// NewSource creates an HTTP catalog source rooted at baseURL.
func NewSource(client *httpclient.CircuitBreakerClient, baseURL string) *Source {
	return &Source{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// GetProduct fetches GET {base}/productos/{sku}.
func (s *Source) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	var p domain.Product
	if err := s.getJSON(ctx, s.baseURL+"/productos/"+url.PathEscape(sku), sku, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListSiblings fetches GET {base}/productos/{sku}/hermanos. A 404 means the
// product has no family.
func (s *Source) ListSiblings(ctx context.Context, sku string) ([]domain.Product, error) {
	var siblings []domain.Product
	err := s.getJSON(ctx, s.baseURL+"/productos/"+url.PathEscape(sku)+"/hermanos", sku, &siblings)
	if errors.Is(err, apperrors.ErrNotFound) {
		return []domain.Product{}, nil
	}
	if err != nil {
		return nil, err
	}
	if siblings == nil {
		siblings = []domain.Product{}
	}
	return siblings, nil
}

func (s *Source) getJSON(ctx context.Context, target, sku string, dst any) error {
	resp, err := s.client.Get(ctx, target)
	if err != nil {
		var serverErr *httpclient.ServerError
		switch {
		case errors.Is(err, httpclient.ErrCircuitOpen), errors.Is(err, gobreaker.ErrTooManyRequests):
			return apperrors.ServiceUnavailable("catalog temporarily unavailable")
		case errors.As(err, &serverErr) && serverErr.Status == http.StatusServiceUnavailable:
			return apperrors.ServiceUnavailable(fmt.Sprintf("%s: %s", serviceName, serverErr.Body))
		case errors.As(err, &serverErr):
			return apperrors.BadGateway("UPSTREAM_ERROR", serverErr.Error())
		}
		return fmt.Errorf("call %s: %w", serviceName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, serviceName, "product", sku)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return apperrors.BadGateway("INVALID_UPSTREAM_PRODUCT", fmt.Sprintf("decode %s response for %s: %v", serviceName, sku, err))
	}
	return nil
}
