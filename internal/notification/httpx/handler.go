// Package httpx implements the notification receiver's HTTP surface.
//
// The receiver stands in for a real downstream channel (mail, SMS, push). It
// acknowledges every payload after an artificial processing delay, which is
// how the order service's failure containment gets exercised end to end: the
// delay is deliberately longer than anything the order write path would
// tolerate inline.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type notificationRequest struct {
	OrderID   int64  `json:"order_id"`
	EventType string `json:"event_type"`
}

// Handler acknowledges notification payloads after the configured delay.
type Handler struct {
	delay time.Duration
}

func NewHandler(delay time.Duration) *Handler {
	return &Handler{delay: delay}
}

// Notify accepts {order_id, event_type}, simulates slow processing, and
// acknowledges with 200 and no body. If the sender gives up first the
// request context is cancelled and we stop waiting.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	slog.InfoContext(r.Context(), "notification received",
		"order_id", req.OrderID,
		"event_type", req.EventType,
	)

	if h.delay > 0 {
		timer := time.NewTimer(h.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-r.Context().Done():
			slog.WarnContext(r.Context(), "sender gave up before acknowledgment", "order_id", req.OrderID)
			return
		}
	}

	slog.InfoContext(r.Context(), "notification acknowledged", "order_id", req.OrderID)
	w.WriteHeader(http.StatusOK)
}

// NewRouter mounts the receiver endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/notifications", handler.Notify)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return otelhttp.NewHandler(r, "notification-service")
}
