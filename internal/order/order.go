// Package order holds the order aggregate, its validation rules, and the
// Service that orchestrates persistence and post-commit notification.
package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. CREATED is the only state
// assigned in this service; downstream systems own later transitions.
type Status string

const (
	StatusCreated Status = "CREATED"
)

// Order is the aggregate root. ID is assigned by the store on first save
// and immutable afterwards. OrderNumber is generated at construction time,
// independent of the store id, and is the idempotent external reference.
type Order struct {
	ID          int64
	Status      Status
	OrderNumber string
	CreatedAt   time.Time
	Items       []Item
}

// Item is a line item owned exclusively by its parent Order. ProductName is
// a denormalized snapshot; it is not re-validated against a catalog.
type Item struct {
	ID          int64
	ProductID   int64
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

// ItemInput is the caller-supplied shape of a line item before persistence.
type ItemInput struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

// NewOrder builds an unsaved aggregate: status CREATED, a fresh order
// number, and the construction timestamp. Inputs must already be validated.
func NewOrder(items []ItemInput) *Order {
	o := &Order{
		Status:      StatusCreated,
		OrderNumber: uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Items:       make([]Item, 0, len(items)),
	}
	for _, in := range items {
		o.Items = append(o.Items, Item{
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			Price:       in.Price,
		})
	}
	return o
}

// ValidateItems checks the create-order input and returns a *ValidationError
// enumerating every offending field, or nil. It runs before any transaction
// is opened, so a rejected request never touches the store.
func ValidateItems(items []ItemInput) error {
	var fields []FieldError

	if len(items) == 0 {
		fields = append(fields, FieldError{Field: "items", Message: "must not be empty"})
		return &ValidationError{Fields: fields}
	}

	for i, it := range items {
		if it.ProductID <= 0 {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("items[%d].product_id", i),
				Message: "is required",
			})
		}
		if it.ProductName == "" {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("items[%d].product_name", i),
				Message: "must not be blank",
			})
		}
		if it.Quantity < 1 {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be at least 1",
			})
		}
		if !it.Price.IsPositive() {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("items[%d].price", i),
				Message: "must be greater than 0",
			})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
