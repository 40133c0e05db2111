// Package httpx exposes the order service over HTTP.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"orderhub/internal/order"
)

// Handler handles incoming HTTP requests for the Order domain.
type Handler struct {
	service *order.Service
}

// NewHandler initializes the handler with the domain service.
func NewHandler(service *order.Service) *Handler {
	return &Handler{service: service}
}

// CreateOrder validates and persists a new order. The response is written as
// soon as the write commits; notification delivery happens on the
// dispatcher's worker and cannot change the status code or latency here.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), nil)
		return
	}

	items := make([]order.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.ItemInput{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}

	created, err := h.service.Create(r.Context(), items)
	if err != nil {
		var verr *order.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, "validation_failed", "", verr.Fields)
			return
		}
		slog.ErrorContext(r.Context(), "order creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "persistence_error", "order could not be saved", nil)
		return
	}

	w.Header().Set("Location", "/orders/"+strconv.FormatInt(created.ID, 10))
	writeJSON(w, http.StatusCreated, mapOrderToResponse(created))
}

// GetOrder retrieves a single order with its items by id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "id must be an integer", nil)
		return
	}

	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", "", nil)
			return
		}
		slog.ErrorContext(r.Context(), "order lookup failed", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "persistence_error", "order could not be loaded", nil)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string, details []order.FieldError) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
		Details: details,
	})
}
