package order

import "context"

// Repository is the port for durable order storage. The Service depends on
// this abstraction, not on SQLite directly, so the implementation can be
// swapped for Postgres, in-memory (tests), etc.
type Repository interface {
	// Save writes the order and all of its items as one atomic unit and
	// returns the aggregate with the store-generated order and item ids
	// populated. A failure anywhere in the unit leaves no partial rows.
	Save(ctx context.Context, o *Order) (*Order, error)

	// FindWithItems loads the order together with its full item collection
	// in one logical fetch. Returns ErrNotFound when the id does not exist.
	FindWithItems(ctx context.Context, id int64) (*Order, error)
}
