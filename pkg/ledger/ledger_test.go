package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/spinshop/record-store-core/pkg/ledger"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/notify"
	"github.com/spinshop/record-store-core/pkg/storage"
	"github.com/spinshop/record-store-core/pkg/storage/mocks"
)

// capturingPublisher records published payloads for assertions.
type capturingPublisher struct {
	published []notify.Payload
}

func (p *capturingPublisher) Publish(ctx context.Context, payload notify.Payload) error {
	p.published = append(p.published, payload)
	return nil
}

func TestReceiveStock(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		record := &models.InventoryRecord{VariantID: "v-1", OnHand: 10, Version: 2}
		mockStore.On("AppendMovement", mock.Anything, mock.Anything, mock.Anything).
			Return(func(ctx context.Context, m *models.StockMovement, a *models.AuditEntry) *models.StockMovement { return m },
				record, nil)

		l := ledger.New(mockStore, nil)
		movement, got, err := l.ReceiveStock(context.Background(), "v-1", 10, "initial shipment", "op-1", "")

		assert.NoError(t, err)
		assert.Equal(t, int64(10), movement.Delta)
		assert.Equal(t, models.MovementReceipt, movement.Kind)
		assert.NotEmpty(t, movement.ID)
		assert.Equal(t, record, got)
		mockStore.AssertExpectations(t)
	})

	t.Run("RequestIdBecomesMovementId", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("AppendMovement", mock.Anything, mock.MatchedBy(func(m *models.StockMovement) bool {
			return m.ID == "req-42"
		}), mock.Anything).Return(&models.StockMovement{ID: "req-42"}, &models.InventoryRecord{}, nil)

		l := ledger.New(mockStore, nil)
		movement, _, err := l.ReceiveStock(context.Background(), "v-1", 5, "", "op-1", "req-42")

		assert.NoError(t, err)
		assert.Equal(t, "req-42", movement.ID)
		mockStore.AssertExpectations(t)
	})

	t.Run("RejectsNonPositiveQuantity", func(t *testing.T) {
		l := ledger.New(new(mocks.Storage), nil)

		_, _, err := l.ReceiveStock(context.Background(), "v-1", 0, "", "op-1", "")
		assert.ErrorIs(t, err, storage.ErrInvalidQuantity)

		_, _, err = l.ReceiveStock(context.Background(), "v-1", -3, "", "op-1", "")
		assert.ErrorIs(t, err, storage.ErrInvalidQuantity)
	})
}

func TestReserve(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("Reserve", mock.MatchedBy(func(_ context.Context) bool { return true }), mock.MatchedBy(func(r *models.Reservation) bool {
			return r.OrderID == "o-1" && r.VariantID == "v-1" && r.Quantity == 2 && r.Status == models.ReservationHeld
		}), mock.Anything).Return(&models.InventoryRecord{}, nil)

		l := ledger.New(mockStore, nil)
		reservation, err := l.Reserve(context.Background(), "v-1", 2, "o-1")

		assert.NoError(t, err)
		assert.Equal(t, models.ReservationHeld, reservation.Status)
		mockStore.AssertExpectations(t)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("Reserve", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, storage.ErrInsufficientStock)

		l := ledger.New(mockStore, nil)
		_, err := l.Reserve(context.Background(), "v-1", 99, "o-1")

		assert.ErrorIs(t, err, storage.ErrInsufficientStock)
	})
}

func TestAdjust(t *testing.T) {
	t.Run("NegativeDeltaAllowed", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("AppendMovement", mock.Anything, mock.MatchedBy(func(m *models.StockMovement) bool {
			return m.Delta == -4 && m.Kind == models.MovementAdjustment
		}), mock.Anything).Return(&models.StockMovement{Delta: -4}, &models.InventoryRecord{}, nil)

		l := ledger.New(mockStore, nil)
		_, _, err := l.Adjust(context.Background(), "v-1", -4, "breakage", "op-1")

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("ZeroDeltaRejected", func(t *testing.T) {
		l := ledger.New(new(mocks.Storage), nil)
		_, _, err := l.Adjust(context.Background(), "v-1", 0, "noop", "op-1")
		assert.ErrorIs(t, err, storage.ErrInvalidQuantity)
	})
}

func TestCommitSaleNotifiesLowStock(t *testing.T) {
	mockStore := new(mocks.Storage)
	low := &models.InventoryRecord{VariantID: "v-1", OnHand: 2, Allocated: 0, LowStockThreshold: 3}
	mockStore.On("CommitSale", mock.Anything, mock.Anything, mock.Anything).Return(low, nil)

	notifier := &capturingPublisher{}
	l := ledger.New(mockStore, notifier)

	_, record, err := l.CommitSale(context.Background(), "v-1", 1, "o-1")

	assert.NoError(t, err)
	assert.Equal(t, low, record)
	assert.Len(t, notifier.published, 1)
	assert.Equal(t, "v-1", notifier.published[0].VariantID)
}

func TestRestockReturn(t *testing.T) {
	mockStore := new(mocks.Storage)
	mockStore.On("AppendMovement", mock.Anything, mock.MatchedBy(func(m *models.StockMovement) bool {
		return m.Kind == models.MovementReturn && m.Delta == 2 && m.OrderID == "o-1"
	}), mock.Anything).Return(&models.StockMovement{}, &models.InventoryRecord{}, nil)

	l := ledger.New(mockStore, nil)
	_, _, err := l.RestockReturn(context.Background(), "v-1", 2, "o-1", "op-1")

	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}
