package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// EventTypeCreated is the event_type value the receiver contract expects for
// new orders.
const EventTypeCreated = "CREATED"

type notificationRequest struct {
	OrderID   int64  `json:"order_id"`
	EventType string `json:"event_type"`
}

// Client talks to the notification service. The receiver may take seconds to
// acknowledge; the http.Client timeout caps how long one attempt can hang.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Notifier = (*Client)(nil)

// NewClient points the client at the notification service base URL,
// e.g. "http://localhost:8081". timeout bounds every request end to end.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NotifyOrderCreated posts {order_id, event_type} and waits for the
// acknowledgment status. Any non-2xx status is an error; interpreting or
// containing that error is the caller's job.
func (c *Client) NotifyOrderCreated(ctx context.Context, orderID int64) error {
	body, err := json.Marshal(notificationRequest{
		OrderID:   orderID,
		EventType: EventTypeCreated,
	})
	if err != nil {
		return fmt.Errorf("notify: marshal request for order %d: %w", orderID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/notifications", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request for order %d: %w", orderID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send for order %d: %w", orderID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: order %d rejected with status %d", orderID, resp.StatusCode)
	}
	return nil
}
