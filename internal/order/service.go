package order

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"orderhub/internal/pkg/cache"
	"orderhub/internal/pkg/metrics"
)

const cacheTTL = 5 * time.Minute

// Service orchestrates order creation and retrieval. Creation delegates the
// transaction to the repository and publishes a CreatedEvent only after the
// write has committed; a failed write publishes nothing and the error
// propagates to the caller unchanged.
type Service struct {
	repo   Repository
	events EventPublisher
	cache  cache.Cache      // nil-safe: caching skipped if nil
	meter  *metrics.Metrics // nil-safe: instrumentation skipped if nil
}

// NewService wires the service. cache and meter may be nil — the read path
// then goes straight to the repository and no counters are recorded.
func NewService(repo Repository, events EventPublisher, c cache.Cache, m *metrics.Metrics) *Service {
	return &Service{repo: repo, events: events, cache: c, meter: m}
}

// Create validates the input, persists the aggregate atomically, and hands
// the post-commit event to the dispatcher. The event is pushed only on the
// success path, so a rolled-back order is never announced downstream.
func (s *Service) Create(ctx context.Context, items []ItemInput) (*Order, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, NewOrder(items))
	if err != nil {
		return nil, err
	}

	// The repository has committed; from here on nothing can fail the
	// caller's request. Publish returns immediately — delivery happens on
	// the dispatcher's worker, never on this goroutine.
	s.events.Publish(NewCreatedEvent(saved.ID))
	s.meter.IncBusinessOp("orders_created_total", "create", "write")

	slog.InfoContext(ctx, "order created",
		"order_id", saved.ID,
		"order_number", saved.OrderNumber,
		"items", len(saved.Items),
	)
	return saved, nil
}

// Get returns the order with its full item collection, consulting the cache
// first. Cache faults are logged and ignored; ErrNotFound passes through.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	key := ""
	if s.cache != nil {
		key = s.cache.Key("get", strconv.FormatInt(id, 10))
		if raw, err := s.cache.Get(ctx, key); err != nil {
			slog.WarnContext(ctx, "order cache read failed", "order_id", id, "error", err)
		} else if raw != "" {
			var o Order
			if err := json.Unmarshal([]byte(raw), &o); err == nil {
				s.meter.IncBusinessOp("orders_retrieved_total", "get", "read")
				return &o, nil
			}
		}
	}

	o, err := s.repo.FindWithItems(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(o); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), cacheTTL); err != nil {
				slog.WarnContext(ctx, "order cache write failed", "order_id", id, "error", err)
			}
		}
	}

	s.meter.IncBusinessOp("orders_retrieved_total", "get", "read")
	return o, nil
}
