// Package rest provides HTTP handlers for cart-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocart/internal/cart/service"
	"github.com/abgdnv/gocart/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.CartService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the cart API with the provided service.
func NewHandler(service service.CartService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the cart service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(web.StorefrontMiddleware)
		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.Clear)
			r.Get("/summary", h.Summary)

			r.Route("/items", func(r chi.Router) {
				r.Post("/", h.AddItem)
				r.Route("/{productId}", func(r chi.Router) {
					r.Put("/", h.UpdateQuantity)
					r.Delete("/", h.RemoveItem)
				})
			})
		})
	})
	r.Get("/healthz", h.HealthCheck)
}

// GetCart returns the full item list with derived totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	tenantID, sessionID, ok := web.GetStorefront(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to get cart", "tenant_id", tenantID)
	found := h.service.GetCart(r.Context(), tenantID, sessionID)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Summary returns derived totals only, for badge widgets.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	tenantID, sessionID, ok := web.GetStorefront(w, r, mLogger)
	if !ok {
		return
	}

	summary := h.service.Summary(r.Context(), tenantID, sessionID)
	web.RespondJSON(w, mLogger, http.StatusOK, summary)
}

// AddItem merges a product payload into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	tenantID, sessionID, ok := web.GetStorefront(w, r, mLogger)
	if !ok {
		return
	}

	var payload service.AddItemDto
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to add item", "product_id", payload.ProductID)
	if !h.validateStruct(w, r, mLogger, payload) {
		return
	}

	updated := h.service.AddItem(r.Context(), tenantID, sessionID, payload)
	mLogger.InfoContext(r.Context(), "Item added to cart",
		slog.String("product_id", payload.ProductID),
		slog.Int("total_items", updated.TotalItems))
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// quantityUpdateDto carries the new quantity for one cart line.
// Quantity is a pointer so an explicit zero (a removal request) survives decoding.
type quantityUpdateDto struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// UpdateQuantity sets the quantity of one line; non-positive values remove it.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	tenantID, sessionID, ok := web.GetStorefront(w, r, mLogger)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productId")
	colorID := r.URL.Query().Get("color")

	var payload quantityUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, payload) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update quantity",
		"product_id", productID, "color", colorID, "quantity", *payload.Quantity)
	updated := h.service.UpdateQuantity(r.Context(), tenantID, sessionID, productID, colorID, *payload.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// RemoveItem removes one line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	tenantID, sessionID, ok := web.GetStorefront(w, r, mLogger)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productId")
	colorID := r.URL.Query().Get("color")

	mLogger.DebugContext(r.Context(), "Received request to remove item", "product_id", productID, "color", colorID)
	updated := h.service.RemoveItem(r.Context(), tenantID, sessionID, productID, colorID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Clear empties the cart. Called by order submission after confirmed success.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	tenantID, sessionID, ok := web.GetStorefront(w, r, mLogger)
	if !ok {
		return
	}

	h.service.Clear(r.Context(), tenantID, sessionID)
	mLogger.InfoContext(r.Context(), "Cart cleared", "tenant_id", tenantID)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// validateStruct runs struct validation and writes a field-level error map on failure.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, payload any) bool {
	if err := h.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
