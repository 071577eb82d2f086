package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderPending, OrderPaid},
		{OrderPending, OrderCancelled},
		{OrderPaid, OrderProcessing},
		{OrderPaid, OrderCancelled},
		{OrderPaid, OrderRefunded},
		{OrderProcessing, OrderShipped},
		{OrderProcessing, OrderRefunded},
		{OrderShipped, OrderDelivered},
		{OrderShipped, OrderRefunded},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to OrderStatus }{
		{OrderPending, OrderProcessing},
		{OrderPending, OrderShipped},
		{OrderPending, OrderRefunded},
		{OrderPaid, OrderDelivered},
		{OrderProcessing, OrderCancelled},
		{OrderShipped, OrderCancelled},
		{OrderDelivered, OrderRefunded},
		{OrderCancelled, OrderPending},
		{OrderRefunded, OrderPaid},
		{OrderPaid, OrderPending}, // no going backwards
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, OrderDelivered.Terminal())
	assert.True(t, OrderCancelled.Terminal())
	assert.True(t, OrderRefunded.Terminal())

	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderPaid.Terminal())
	assert.False(t, OrderProcessing.Terminal())
	assert.False(t, OrderShipped.Terminal())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(OrderPending))
	assert.True(t, ValidStatus(OrderRefunded))
	assert.False(t, ValidStatus(OrderStatus("archived")))
	assert.False(t, ValidStatus(OrderStatus("")))
}

func TestAvailableNeverIncludesAllocated(t *testing.T) {
	record := InventoryRecord{OnHand: 10, Allocated: 4}
	assert.Equal(t, int64(6), record.Available())
}
