package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItems() []ItemInput {
	return []ItemInput{
		{ProductID: 1, ProductName: "Widget", Quantity: 2, Price: decimal.RequireFromString("9.99")},
	}
}

func TestNewOrder(t *testing.T) {
	o := NewOrder(validItems())

	assert.Equal(t, StatusCreated, o.Status)
	assert.NotEmpty(t, o.OrderNumber)
	assert.False(t, o.CreatedAt.IsZero())
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(1), o.Items[0].ProductID)
	assert.Equal(t, "Widget", o.Items[0].ProductName)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.True(t, o.Items[0].Price.Equal(decimal.RequireFromString("9.99")))
	// Store-assigned ids are absent before persistence.
	assert.Zero(t, o.ID)
	assert.Zero(t, o.Items[0].ID)
}

func TestNewOrderNumberUnique(t *testing.T) {
	a := NewOrder(validItems())
	b := NewOrder(validItems())
	assert.NotEqual(t, a.OrderNumber, b.OrderNumber)
}

func TestValidateItemsEmpty(t *testing.T) {
	err := ValidateItems(nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "items", verr.Fields[0].Field)
}

func TestValidateItemsEnumeratesEveryField(t *testing.T) {
	err := ValidateItems([]ItemInput{
		{ProductID: 0, ProductName: "", Quantity: 0, Price: decimal.Zero},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = f.Field
	}
	assert.ElementsMatch(t, []string{
		"items[0].product_id",
		"items[0].product_name",
		"items[0].quantity",
		"items[0].price",
	}, fields)
}

func TestValidateItemsRejectsNegativePrice(t *testing.T) {
	err := ValidateItems([]ItemInput{
		{ProductID: 1, ProductName: "Widget", Quantity: 1, Price: decimal.RequireFromString("-0.01")},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidateItemsAcceptsValid(t *testing.T) {
	assert.NoError(t, ValidateItems(validItems()))
}
