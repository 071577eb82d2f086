package bulk_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/spinshop/record-store-core/pkg/bulk"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
	"github.com/spinshop/record-store-core/pkg/storage/mocks"
	"github.com/spinshop/record-store-core/pkg/undo"
)

// stubTransitioner fails the orders listed in failWith and applies the rest.
type stubTransitioner struct {
	failWith map[string]error
	advanced []string
}

func (s *stubTransitioner) apply(orderID string) error {
	if err, ok := s.failWith[orderID]; ok {
		return err
	}
	s.advanced = append(s.advanced, orderID)
	return nil
}

func (s *stubTransitioner) Advance(ctx context.Context, orderID string, next models.OrderStatus, actorID string) error {
	return s.apply(orderID)
}

func (s *stubTransitioner) Cancel(ctx context.Context, orderID, reason, actorID string) error {
	return s.apply(orderID)
}

func (s *stubTransitioner) Refund(ctx context.Context, orderID, reason, actorID string) error {
	return s.apply(orderID)
}

// stubIssuer captures the issued payload.
type stubIssuer struct {
	actionType string
	payload    any
	fail       error
}

func (s *stubIssuer) IssueToken(ctx context.Context, actionType string, payload any, actorID string, ttl time.Duration) (*models.UndoToken, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	s.actionType = actionType
	s.payload = payload
	return &models.UndoToken{ID: "tok-1", ActionType: actionType}, nil
}

func TestApplyBulkStatus(t *testing.T) {
	paidOrder := func(id string) *models.Order {
		return &models.Order{ID: id, Status: models.OrderPaid}
	}

	t.Run("PartialFailureIsIsolated", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").Return(paidOrder("o-1"), nil)
		mockStore.On("GetOrder", mock.Anything, "o-2").Return(nil, storage.ErrOrderNotFound)
		mockStore.On("GetOrder", mock.Anything, "o-3").Return(paidOrder("o-3"), nil)

		machine := &stubTransitioner{}
		issuer := &stubIssuer{}
		c := bulk.New(mockStore, mockStore, machine, issuer)

		result, err := c.ApplyBulkStatus(context.Background(), []string{"o-1", "o-2", "o-3"}, models.OrderProcessing, "", "staff-1")

		assert.NoError(t, err)
		assert.Equal(t, []string{"o-1", "o-3"}, result.Succeeded)
		assert.Len(t, result.Failed, 1)
		assert.Equal(t, "o-2", result.Failed[0].ID)
		assert.NotNil(t, result.UndoToken)

		// The undo payload covers only the orders that succeeded.
		payload, ok := issuer.payload.(undo.BulkStatusPayload)
		assert.True(t, ok)
		assert.Len(t, payload.Orders, 2)
		assert.Equal(t, models.OrderPaid, payload.Orders[0].PriorStatus)
	})

	t.Run("TransitionFailureReported", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetOrder", mock.Anything, "o-1").Return(paidOrder("o-1"), nil)

		machine := &stubTransitioner{failWith: map[string]error{
			"o-1": storage.NewTransitionError(models.OrderPaid, models.OrderDelivered),
		}}
		c := bulk.New(mockStore, mockStore, machine, &stubIssuer{})

		result, err := c.ApplyBulkStatus(context.Background(), []string{"o-1"}, models.OrderDelivered, "", "staff-1")

		assert.NoError(t, err)
		assert.Empty(t, result.Succeeded)
		assert.Len(t, result.Failed, 1)
		assert.Nil(t, result.UndoToken)
	})

	t.Run("CancelRequiresReason", func(t *testing.T) {
		c := bulk.New(new(mocks.Storage), new(mocks.Storage), &stubTransitioner{}, &stubIssuer{})
		_, err := c.ApplyBulkStatus(context.Background(), []string{"o-1"}, models.OrderCancelled, "", "staff-1")
		assert.ErrorIs(t, err, storage.ErrValidation)
	})

	t.Run("EmptyBatchRejected", func(t *testing.T) {
		c := bulk.New(new(mocks.Storage), new(mocks.Storage), &stubTransitioner{}, &stubIssuer{})
		_, err := c.ApplyBulkStatus(context.Background(), nil, models.OrderProcessing, "", "staff-1")
		assert.ErrorIs(t, err, storage.ErrValidation)
	})

	t.Run("UnknownStatusRejected", func(t *testing.T) {
		c := bulk.New(new(mocks.Storage), new(mocks.Storage), &stubTransitioner{}, &stubIssuer{})
		_, err := c.ApplyBulkStatus(context.Background(), []string{"o-1"}, models.OrderStatus("lost"), "", "staff-1")
		assert.ErrorIs(t, err, storage.ErrValidation)
	})
}

func TestApplyBulkActivation(t *testing.T) {
	t.Run("RecordsPriorFlags", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetVariant", mock.Anything, "v-1").Return(&models.Variant{ID: "v-1", Active: true}, nil)
		mockStore.On("GetVariant", mock.Anything, "v-2").Return(&models.Variant{ID: "v-2", Active: false}, nil)
		mockStore.On("SetVariantActive", mock.Anything, "v-1", false, mock.Anything).Return(nil)
		mockStore.On("SetVariantActive", mock.Anything, "v-2", false, mock.Anything).Return(nil)

		issuer := &stubIssuer{}
		c := bulk.New(mockStore, mockStore, &stubTransitioner{}, issuer)

		result, err := c.ApplyBulkActivation(context.Background(), []string{"v-1", "v-2"}, false, "staff-1")

		assert.NoError(t, err)
		assert.Equal(t, []string{"v-1", "v-2"}, result.Succeeded)

		payload, ok := issuer.payload.(undo.BulkActivationPayload)
		assert.True(t, ok)
		assert.True(t, payload.Variants[0].Active)
		assert.False(t, payload.Variants[1].Active)
	})

	t.Run("MissingVariantIsolated", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetVariant", mock.Anything, "v-1").Return(nil, storage.ErrVariantNotFound)

		c := bulk.New(mockStore, mockStore, &stubTransitioner{}, &stubIssuer{})
		result, err := c.ApplyBulkActivation(context.Background(), []string{"v-1"}, true, "staff-1")

		assert.NoError(t, err)
		assert.Len(t, result.Failed, 1)
		assert.Nil(t, result.UndoToken)
	})
}
