package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/productview/pkg/errors"
)

// ServerError is a 5xx answer from a downstream service.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Body)
}

// downstreamErrorResponse matches the {"error":{...}} envelope written by
// pkg/httputil.
type downstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response body and maps it
// to an AppError. resource and key name what was requested so a 404 reads
// like "product SKU-1 not found".
func ParseResponseError(resp *http.Response, serviceName, resource, key string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", serviceName, resp.StatusCode, err)
	}

	message := string(body)
	code := ""
	var downstream downstreamErrorResponse
	if json.Unmarshal(body, &downstream) == nil && downstream.Error != nil {
		code, message = downstream.Error.Code, downstream.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(resource, key)
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(fmt.Sprintf("%s: %s", serviceName, message))
	case resp.StatusCode == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s: %s", serviceName, message))
	default:
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		return apperrors.BadGateway(code, fmt.Sprintf("%s returned status %d: %s", serviceName, resp.StatusCode, message))
	}
}
