package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo assigns ids in memory and can be told to fail the write.
type fakeRepo struct {
	saveErr error
	saved   *Order
	nextID  int64
	orders  map[int64]*Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, orders: make(map[int64]*Order)}
}

func (f *fakeRepo) Save(_ context.Context, o *Order) (*Order, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	saved := *o
	saved.ID = f.nextID
	f.nextID++
	for i := range saved.Items {
		saved.Items[i].ID = int64(i + 1)
	}
	f.saved = &saved
	f.orders[saved.ID] = &saved
	return &saved, nil
}

func (f *fakeRepo) FindWithItems(_ context.Context, id int64) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

type fakePublisher struct {
	events []CreatedEvent
}

func (f *fakePublisher) Publish(ev CreatedEvent) {
	f.events = append(f.events, ev)
}

func TestServiceCreatePublishesAfterSave(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	svc := NewService(repo, pub, nil, nil)

	o, err := svc.Create(context.Background(), []ItemInput{
		{ProductID: 1, ProductName: "Widget", Quantity: 2, Price: decimal.RequireFromString("9.99")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.ID)
	assert.NotEmpty(t, o.OrderNumber)
	require.Len(t, o.Items, 1)
	assert.NotZero(t, o.Items[0].ID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, o.ID, pub.events[0].OrderID)
	assert.False(t, pub.events[0].Timestamp.IsZero())
}

func TestServiceCreateValidationRejectedBeforeWrite(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	svc := NewService(repo, pub, nil, nil)

	_, err := svc.Create(context.Background(), nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, repo.saved, "no write must happen on validation failure")
	assert.Empty(t, pub.events, "no event must be published on validation failure")
}

func TestServiceCreateWriteFailureSuppressesEvent(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = &PersistenceError{Op: "insert order", Err: errors.New("disk full")}
	pub := &fakePublisher{}
	svc := NewService(repo, pub, nil, nil)

	_, err := svc.Create(context.Background(), []ItemInput{
		{ProductID: 1, ProductName: "Widget", Quantity: 1, Price: decimal.RequireFromString("1.00")},
	})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, pub.events, "a rolled-back order must never be announced")
}

func TestServiceGetNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakePublisher{}, nil, nil)

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceCreateThenGetRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakePublisher{}, nil, nil)

	created, err := svc.Create(context.Background(), []ItemInput{
		{ProductID: 7, ProductName: "Gadget", Quantity: 3, Price: decimal.RequireFromString("4.50")},
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.OrderNumber, got.OrderNumber)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(7), got.Items[0].ProductID)
}

// fakeCache is an in-memory cache.Cache that can simulate redis faults.
type fakeCache struct {
	data map[string]string
	err  error
	sets int
	gets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.sets++
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.gets++
	if f.err != nil {
		return "", f.err
	}
	return f.data[key], nil
}

func (f *fakeCache) Key(operation, id string) string {
	return "order:" + operation + ":" + id
}

func TestServiceGetPopulatesAndHitsCache(t *testing.T) {
	repo := newFakeRepo()
	c := newFakeCache()
	svc := NewService(repo, &fakePublisher{}, c, nil)

	created, err := svc.Create(context.Background(), validItems())
	require.NoError(t, err)

	first, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets, "first read populates the cache")

	// Remove from the repo: a second read must be served from cache.
	delete(repo.orders, created.ID)
	second, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	require.Len(t, second.Items, 1)
	assert.True(t, first.Items[0].Price.Equal(second.Items[0].Price))
}

func TestServiceGetSurvivesCacheFault(t *testing.T) {
	repo := newFakeRepo()
	c := newFakeCache()
	c.err = errors.New("redis down")
	svc := NewService(repo, &fakePublisher{}, c, nil)

	created, err := svc.Create(context.Background(), validItems())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err, "cache faults are best-effort, never surfaced")
	assert.Equal(t, created.ID, got.ID)
}
