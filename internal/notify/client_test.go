package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyOrderCreatedPayload(t *testing.T) {
	var got notificationRequest
	var path, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	require.NoError(t, c.NotifyOrderCreated(context.Background(), 42))

	assert.Equal(t, "/api/notifications", path)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, int64(42), got.OrderID)
	assert.Equal(t, "CREATED", got.EventType)
}

func TestNotifyOrderCreatedNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.NotifyOrderCreated(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestNotifyOrderCreatedTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond)

	start := time.Now()
	err := c.NotifyOrderCreated(context.Background(), 7)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "timeout must bound the attempt")
}

func TestNotifyOrderCreatedConnectionRefused(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	assert.Error(t, c.NotifyOrderCreated(context.Background(), 7))
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	require.NoError(t, c.NotifyOrderCreated(context.Background(), 1))
	assert.Equal(t, "/api/notifications", path)
}
