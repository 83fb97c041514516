package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	appCtx "github.com/chunwon/market/services/recommendation-service/internal/pkg/context"
	"github.com/chunwon/market/services/recommendation-service/internal/service"
	"github.com/chunwon/market/services/recommendation-service/internal/transport/rest/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	svc      *service.RecommendationService
	catalog  domain.ProductCatalog
	validate *validator.Validate
}

func NewHandler(svc *service.RecommendationService, catalog domain.ProductCatalog) *Handler {
	return &Handler{
		svc:      svc,
		catalog:  catalog,
		validate: validator.New(),
	}
}

// GET /api/recommendations/personalized?userId=...&limit=...
func (h *Handler) Personalized(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		fail(w, r, http.StatusBadRequest, "request.invalid", "userId is required", map[string]string{
			"userId": "must not be empty",
		})
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	items, err := h.svc.Personalized(r.Context(), userID, limit)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, nonNil(items))
}

// GET /api/recommendations/similar/{productID}?limit=...
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid productId", map[string]string{
			"productId": "must be a positive integer",
		})
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	items, err := h.svc.Similar(r.Context(), productID, limit)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, nonNil(items))
}

type interactionRequest struct {
	UserID          string `json:"userId" validate:"required"`
	ProductID       int64  `json:"productId" validate:"required,gt=0"`
	InteractionType string `json:"interactionType" validate:"required,oneof=VIEW CART PURCHASE LIKE"`
}

// POST /api/interactions
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid interaction", validationMeta(err))
		return
	}

	err := h.svc.RecordInteraction(r.Context(), req.UserID, req.ProductID, domain.InteractionType(req.InteractionType))
	if err != nil {
		handleErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/products/{productID}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid productId", map[string]string{
			"productId": "must be a positive integer",
		})
		return
	}

	p, err := h.catalog.Product(r.Context(), productID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

// GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.All(r.Context())
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	response.JSON(w, http.StatusOK, products)
}

type batchRequest struct {
	ProductIDs []int64 `json:"productIds" validate:"required,min=1,dive,gt=0"`
}

// POST /api/products/batch
func (h *Handler) BatchProducts(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid productIds", validationMeta(err))
		return
	}

	products, err := h.catalog.Products(r.Context(), req.ProductIDs)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	response.JSON(w, http.StatusOK, products)
}

// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyUserID),
		errors.Is(err, domain.ErrBadProductID),
		errors.Is(err, domain.ErrBadInteraction),
		errors.Is(err, domain.ErrBadLimit):
		fail(w, r, http.StatusBadRequest, "request.invalid", err.Error(), nil)

	case errors.Is(err, domain.ErrProductNotFound):
		fail(w, r, http.StatusNotFound, "product.not_found", err.Error(), nil)

	case errors.Is(err, domain.ErrDependencyTimeout):
		fail(w, r, http.StatusGatewayTimeout, "dependency.timeout", err.Error(), map[string]string{
			"retryable": "true",
		})

	default:
		// Do not leak internal details.
		fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	reqID := appCtx.GetRequestID(r.Context())
	if reqID == "" {
		reqID = "no-request-id"
	}
	response.Fail(w, status, code, message, meta, reqID)
}

// parseLimit reads ?limit=. Absent means 0 (service applies the
// per-operation default); malformed means 400.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := strings.TrimSpace(r.URL.Query().Get("limit"))
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid limit", map[string]string{
			"limit": "must be an integer between 1 and 100",
		})
		return 0, false
	}
	return n, true
}

func validationMeta(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	meta := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		meta[fe.Field()] = "failed " + fe.Tag() + " validation"
	}
	return meta
}

func nonNil(items []domain.Recommendation) []domain.Recommendation {
	if items == nil {
		return []domain.Recommendation{}
	}
	return items
}
