package helper

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// FixtureOrder is a small JSON-serializable value used as stream payload in tests.
type FixtureOrder struct {
	OrderID  string `json:"orderId"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// GivenUniqueID returns a new time ordered UUID.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// FixtureOrders returns n orders with distinct IDs and quantities 1..n.
func FixtureOrders(t testing.TB, n int) []FixtureOrder {
	orders := make([]FixtureOrder, 0, n)
	for i := 1; i <= n; i++ {
		orders = append(orders, FixtureOrder{
			OrderID:  GivenUniqueID(t).String(),
			Item:     "book",
			Quantity: i,
		})
	}

	return orders
}
