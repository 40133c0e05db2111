// Package sqlite provides a SQLite-backed implementation of order.Repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the dispatcher may be reading an order while a concurrent HTTP
// request is writing a new one.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"orderhub/internal/order"

	// Register the pure-Go SQLite driver.
	// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
// order_items carries a cascading foreign key to orders: an item cannot
// outlive its parent, and deleting an order removes its items.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    status        TEXT    NOT NULL,
    order_number  TEXT    NOT NULL UNIQUE,
    created_at    TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id      INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id    INTEGER NOT NULL,
    product_name  TEXT    NOT NULL,
    quantity      INTEGER NOT NULL,
    price         TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

// Repository is the SQLite implementation of order.Repository.
type Repository struct {
	db *sql.DB
}

var _ order.Repository = (*Repository)(nil)

// Open opens (or creates) the SQLite database at the given path and applies
// the schema. WAL mode is enabled for better concurrent read/write
// performance.
//
//	repo, err := sqlite.Open("./data/orders.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver uses _pragma query parameters to configure connection state.
	// WAL enables concurrent readers. foreign_keys=on enforces the item -> order
	// integrity constraint. busy_timeout waits for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	// Readers can use additional connections from the pool.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save persists the order aggregate in a single transaction: the parent row
// first (RETURNING its generated id — no re-query by order number), then one
// batched insert of the item rows carrying that id. Any failure rolls the
// whole unit back, so a partial aggregate is never observable.
func (r *Repository) Save(ctx context.Context, o *order.Order) (*order.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &order.PersistenceError{Op: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	const insertOrder = `
		INSERT INTO orders (status, order_number, created_at)
		VALUES (?, ?, ?)
		RETURNING id`

	var orderID int64
	err = tx.QueryRowContext(ctx, insertOrder,
		string(o.Status),
		o.OrderNumber,
		formatTime(o.CreatedAt),
	).Scan(&orderID)
	if err != nil {
		return nil, &order.PersistenceError{Op: "insert order", Err: err}
	}
	if orderID == 0 {
		return nil, &order.PersistenceError{Op: "insert order", Err: errors.New("no generated id returned")}
	}

	saved := &order.Order{
		ID:          orderID,
		Status:      o.Status,
		OrderNumber: o.OrderNumber,
		CreatedAt:   o.CreatedAt,
		Items:       make([]order.Item, 0, len(o.Items)),
	}

	// Zero items is a valid aggregate; the batch is skipped entirely.
	if len(o.Items) > 0 {
		const insertItem = `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`

		stmt, err := tx.PrepareContext(ctx, insertItem)
		if err != nil {
			return nil, &order.PersistenceError{Op: "prepare items", Err: err}
		}
		defer stmt.Close()

		for _, it := range o.Items {
			var itemID int64
			err = stmt.QueryRowContext(ctx,
				orderID,
				it.ProductID,
				it.ProductName,
				it.Quantity,
				it.Price.String(),
			).Scan(&itemID)
			if err != nil {
				return nil, &order.PersistenceError{Op: "insert items", Err: err}
			}
			it.ID = itemID
			saved.Items = append(saved.Items, it)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, &order.PersistenceError{Op: "commit", Err: err}
	}

	return saved, nil
}

// FindWithItems loads the order and its complete item collection. No lazy,
// partially-loaded representation escapes this boundary.
func (r *Repository) FindWithItems(ctx context.Context, id int64) (*order.Order, error) {
	const selectOrder = `
		SELECT id, status, order_number, created_at
		FROM   orders
		WHERE  id = ?`

	row := r.db.QueryRowContext(ctx, selectOrder, id)

	var o order.Order
	var status, createdAt string
	err := row.Scan(&o.ID, &status, &o.OrderNumber, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, &order.PersistenceError{Op: "select order", Err: err}
	}
	o.Status = order.Status(status)
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, &order.PersistenceError{Op: "select order", Err: err}
	}

	const selectItems = `
		SELECT id, product_id, product_name, quantity, price
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, selectItems, id)
	if err != nil {
		return nil, &order.PersistenceError{Op: "select items", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var it order.Item
		var price string
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &price); err != nil {
			return nil, &order.PersistenceError{Op: "scan item", Err: err}
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, &order.PersistenceError{Op: "scan item", Err: err}
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &order.PersistenceError{Op: "select items", Err: err}
	}

	return &o, nil
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}
