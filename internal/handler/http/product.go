package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/productview/internal/domain"
	"github.com/utafrali/productview/internal/service"
	"github.com/utafrali/productview/pkg/httputil"
	"github.com/utafrali/productview/pkg/validator"
)

// MaxBatchSKUs caps the number of cards requested in one call.
const MaxBatchSKUs = 100

// ProductHandler handles HTTP requests for product presentation endpoints.
type ProductHandler struct {
	service *service.PresentationService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.PresentationService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// --- Request / response DTOs ---

// ReportIssueRequest is the JSON body of POST /report-issue.
type ReportIssueRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// ViewResponse carries the storefront path to navigate to.
type ViewResponse struct {
	Path string `json:"path"`
}

// AcceptedResponse acknowledges a fire-and-forget request.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// --- Handlers ---

// GetPresentation handles GET /api/v1/products/{sku}/presentation
func (h *ProductHandler) GetPresentation(w http.ResponseWriter, r *http.Request) {
	vm, err := h.service.GetPresentation(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, vm)
}

// GetDetail handles GET /api/v1/products/{sku}/detail
func (h *ProductHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetDetail(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, detail)
}

// GetCard handles GET /api/v1/products/{sku}/card
func (h *ProductHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.service.GetCard(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, card)
}

// ListCards handles GET /api/v1/products/cards?sku=A&sku=B
func (h *ProductHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	skus := r.URL.Query()["sku"]
	if len(skus) == 0 || len(skus) > MaxBatchSKUs {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "between 1 and 100 sku parameters are required"},
		})
		return
	}

	cards, err := h.service.AssembleMany(r.Context(), skus)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cards)
}

// ViewProduct handles GET /api/v1/products/{sku}/view
func (h *ProductHandler) ViewProduct(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.ViewProduct(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, ViewResponse{Path: path})
}

// ReportIssue handles POST /api/v1/products/{sku}/report-issue
func (h *ProductHandler) ReportIssue(w http.ResponseWriter, r *http.Request) {
	var req ReportIssueRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	report := domain.IssueReport{Message: req.Message, Email: req.Email}
	if err := h.service.ReportIssue(r.Context(), chi.URLParam(r, "sku"), report); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}

// FindInspiration handles POST /api/v1/products/{sku}/find-inspiration
func (h *ProductHandler) FindInspiration(w http.ResponseWriter, r *http.Request) {
	if err := h.service.FindInspiration(r.Context(), chi.URLParam(r, "sku")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}
