package orders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/spinshop/record-store-core/pkg/ledger"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/orders"
	"github.com/spinshop/record-store-core/pkg/storage"
	"github.com/spinshop/record-store-core/pkg/storage/mocks"
)

func newMachine(mockStore *mocks.Storage) *orders.StateMachine {
	return orders.New(mockStore, mockStore, ledger.New(mockStore, nil), nil, nil)
}

func activeVariant(id string, price int64) *models.Variant {
	return &models.Variant{ID: id, PriceCents: price, Currency: "USD", Active: true}
}

func TestCreateOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetVariant", mock.Anything, "v-1").Return(activeVariant("v-1", 2500), nil)
		mockStore.On("GetVariant", mock.Anything, "v-2").Return(activeVariant("v-2", 1800), nil)
		mockStore.On("Reserve", mock.Anything, mock.Anything, mock.Anything).Return(&models.InventoryRecord{}, nil).Twice()
		mockStore.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		m := newMachine(mockStore)
		order, err := m.CreateOrder(context.Background(), "staff-1", []orders.NewLine{
			{VariantID: "v-1", Quantity: 2},
			{VariantID: "v-2", Quantity: 1},
		})

		assert.NoError(t, err)
		assert.Equal(t, models.OrderPending, order.Status)
		assert.Equal(t, int64(2*2500+1800), order.TotalCents)
		assert.Len(t, order.Lines, 2)
		assert.Equal(t, int64(5000), order.Lines[0].LineTotalCents)
		mockStore.AssertExpectations(t)
	})

	t.Run("RollsBackEarlierReservationsOnFailure", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetVariant", mock.Anything, "v-1").Return(activeVariant("v-1", 1000), nil)
		mockStore.On("GetVariant", mock.Anything, "v-2").Return(activeVariant("v-2", 1000), nil)
		mockStore.On("Reserve", mock.Anything, mock.MatchedBy(func(r *models.Reservation) bool {
			return r.VariantID == "v-1"
		}), mock.Anything).Return(&models.InventoryRecord{}, nil)
		mockStore.On("Reserve", mock.Anything, mock.MatchedBy(func(r *models.Reservation) bool {
			return r.VariantID == "v-2"
		}), mock.Anything).Return(nil, storage.ErrInsufficientStock)
		mockStore.On("ReleaseReservation", mock.Anything, mock.Anything, "v-1", mock.Anything).Return(nil)

		m := newMachine(mockStore)
		_, err := m.CreateOrder(context.Background(), "staff-1", []orders.NewLine{
			{VariantID: "v-1", Quantity: 1},
			{VariantID: "v-2", Quantity: 1},
		})

		assert.ErrorIs(t, err, storage.ErrInsufficientStock)
		mockStore.AssertExpectations(t)
	})

	t.Run("RejectsInactiveVariant", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetVariant", mock.Anything, "v-1").
			Return(&models.Variant{ID: "v-1", Active: false}, nil)

		m := newMachine(mockStore)
		_, err := m.CreateOrder(context.Background(), "staff-1", []orders.NewLine{{VariantID: "v-1", Quantity: 1}})

		assert.ErrorIs(t, err, storage.ErrValidation)
	})

	t.Run("RejectsEmptyOrder", func(t *testing.T) {
		m := newMachine(new(mocks.Storage))
		_, err := m.CreateOrder(context.Background(), "staff-1", nil)
		assert.ErrorIs(t, err, storage.ErrValidation)
	})
}

func TestConfirmPayment(t *testing.T) {
	pendingOrder := func() *models.Order {
		return &models.Order{
			ID:     "o-1",
			Status: models.OrderPending,
			Lines:  []models.OrderLine{{VariantID: "v-1", Quantity: 2}},
		}
	}

	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").Return(pendingOrder(), nil)
		mockStore.On("GetReservation", mock.Anything, "o-1", "v-1").
			Return(&models.Reservation{OrderID: "o-1", VariantID: "v-1", Quantity: 2, Status: models.ReservationHeld}, nil)
		mockStore.On("CommitSale", mock.Anything, mock.Anything, mock.Anything).Return(&models.InventoryRecord{}, nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-1", models.OrderPending, models.OrderPaid, mock.MatchedBy(func(u storage.OrderStatusUpdate) bool {
			return u.ProviderRef == "cs_123" && u.PaymentStatus == models.PaymentPaid
		}), mock.Anything).Return(nil)

		m := newMachine(mockStore)
		err := m.ConfirmPayment(context.Background(), "o-1", "cs_123")

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("AlreadyPaidSameRefIsNoOp", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").
			Return(&models.Order{ID: "o-1", Status: models.OrderPaid, ProviderRef: "cs_123"}, nil)

		m := newMachine(mockStore)
		err := m.ConfirmPayment(context.Background(), "o-1", "cs_123")

		assert.NoError(t, err)
		mockStore.AssertNotCalled(t, "CommitSale", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SkipsAlreadyCommittedLines", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").Return(pendingOrder(), nil)
		mockStore.On("GetReservation", mock.Anything, "o-1", "v-1").
			Return(&models.Reservation{Status: models.ReservationCommitted}, nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-1", models.OrderPending, models.OrderPaid, mock.Anything, mock.Anything).Return(nil)

		m := newMachine(mockStore)
		err := m.ConfirmPayment(context.Background(), "o-1", "cs_123")

		assert.NoError(t, err)
		mockStore.AssertNotCalled(t, "CommitSale", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CancelledOrderRejected", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").
			Return(&models.Order{ID: "o-1", Status: models.OrderCancelled}, nil)

		m := newMachine(mockStore)
		err := m.ConfirmPayment(context.Background(), "o-1", "cs_123")

		var transition *storage.TransitionError
		assert.ErrorAs(t, err, &transition)
		assert.Equal(t, models.OrderCancelled, transition.From)
	})
}

func TestAdvance(t *testing.T) {
	t.Run("PaidToProcessing", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").
			Return(&models.Order{ID: "o-1", Status: models.OrderPaid}, nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-1", models.OrderPaid, models.OrderProcessing, mock.Anything, mock.Anything).Return(nil)

		m := newMachine(mockStore)
		err := m.Advance(context.Background(), "o-1", models.OrderProcessing, "staff-1")

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("SkippingStatesRejected", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").
			Return(&models.Order{ID: "o-1", Status: models.OrderPaid}, nil)

		m := newMachine(mockStore)
		err := m.Advance(context.Background(), "o-1", models.OrderDelivered, "staff-1")

		var transition *storage.TransitionError
		assert.ErrorAs(t, err, &transition)
	})

	t.Run("CancelledTargetRejected", func(t *testing.T) {
		m := newMachine(new(mocks.Storage))
		err := m.Advance(context.Background(), "o-1", models.OrderCancelled, "staff-1")
		assert.ErrorIs(t, err, storage.ErrValidation)
	})

	t.Run("UnknownStatusRejected", func(t *testing.T) {
		m := newMachine(new(mocks.Storage))
		err := m.Advance(context.Background(), "o-1", models.OrderStatus("misplaced"), "staff-1")
		assert.ErrorIs(t, err, storage.ErrValidation)
	})
}

func TestCancel(t *testing.T) {
	t.Run("ReleasesReservations", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").Return(&models.Order{
			ID:     "o-1",
			Status: models.OrderPending,
			Lines:  []models.OrderLine{{VariantID: "v-1", Quantity: 1}},
		}, nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-1", models.OrderPending, models.OrderCancelled, mock.MatchedBy(func(u storage.OrderStatusUpdate) bool {
			return u.CancelReason == "customer request"
		}), mock.Anything).Return(nil)
		mockStore.On("ReleaseReservation", mock.Anything, "o-1", "v-1", mock.Anything).Return(nil)

		m := newMachine(mockStore)
		err := m.Cancel(context.Background(), "o-1", "customer request", "staff-1")

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("ReasonRequired", func(t *testing.T) {
		m := newMachine(new(mocks.Storage))
		err := m.Cancel(context.Background(), "o-1", "", "staff-1")
		assert.ErrorIs(t, err, storage.ErrValidation)
	})

	t.Run("AlreadyCancelledIsNoOp", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").
			Return(&models.Order{ID: "o-1", Status: models.OrderCancelled}, nil)

		m := newMachine(mockStore)
		err := m.Cancel(context.Background(), "o-1", "again", "staff-1")

		assert.NoError(t, err)
		mockStore.AssertNotCalled(t, "TransitionOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DeliveredCannotBeCancelled", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").
			Return(&models.Order{ID: "o-1", Status: models.OrderDelivered}, nil)

		m := newMachine(mockStore)
		err := m.Cancel(context.Background(), "o-1", "too late", "staff-1")

		var transition *storage.TransitionError
		assert.ErrorAs(t, err, &transition)
	})
}

func TestRefund(t *testing.T) {
	t.Run("DoesNotTouchInventory", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").Return(&models.Order{
			ID:     "o-1",
			Status: models.OrderPaid,
			Lines:  []models.OrderLine{{VariantID: "v-1", Quantity: 1}},
		}, nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-1", models.OrderPaid, models.OrderRefunded, mock.MatchedBy(func(u storage.OrderStatusUpdate) bool {
			return u.PaymentStatus == models.PaymentRefunded
		}), mock.Anything).Return(nil)

		m := newMachine(mockStore)
		err := m.Refund(context.Background(), "o-1", "damaged sleeve", "staff-1")

		assert.NoError(t, err)
		mockStore.AssertNotCalled(t, "ReleaseReservation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockStore.AssertNotCalled(t, "AppendMovement", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExpireAbandoned(t *testing.T) {
	t.Run("CancelsPendingOrder", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").Return(&models.Order{
			ID:     "o-1",
			Status: models.OrderPending,
			Lines:  []models.OrderLine{{VariantID: "v-1", Quantity: 1}},
		}, nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-1", models.OrderPending, models.OrderCancelled, mock.MatchedBy(func(u storage.OrderStatusUpdate) bool {
			return u.CancelReason == orders.AbandonedReason
		}), mock.Anything).Return(nil)
		mockStore.On("ReleaseReservation", mock.Anything, "o-1", "v-1", mock.Anything).Return(nil)

		m := newMachine(mockStore)
		err := m.ExpireAbandoned(context.Background(), "o-1")

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("PaidOrderLeftAlone", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").
			Return(&models.Order{ID: "o-1", Status: models.OrderPaid}, nil)

		m := newMachine(mockStore)
		err := m.ExpireAbandoned(context.Background(), "o-1")

		assert.NoError(t, err)
		mockStore.AssertNotCalled(t, "TransitionOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostRaceIsNoOp", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").Return(&models.Order{
			ID:     "o-1",
			Status: models.OrderPending,
		}, nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-1", models.OrderPending, models.OrderCancelled, mock.Anything, mock.Anything).
			Return(storage.ErrStatusConflict)

		m := newMachine(mockStore)
		err := m.ExpireAbandoned(context.Background(), "o-1")

		assert.NoError(t, err)
	})
}
