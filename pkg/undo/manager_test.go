package undo_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/spinshop/record-store-core/pkg/ledger"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
	"github.com/spinshop/record-store-core/pkg/storage/mocks"
	"github.com/spinshop/record-store-core/pkg/undo"
)

func newManager(mockStore *mocks.Storage, now time.Time) *undo.Manager {
	m := undo.New(mockStore, ledger.New(mockStore, nil), mockStore, mockStore)
	m.Clock = func() time.Time { return now }
	return m
}

func receiptToken(id string, expires time.Time) *models.UndoToken {
	payload, _ := json.Marshal(undo.StockReceiptPayload{VariantID: "v-1", Quantity: 10, MovementID: "mv-1"})
	return &models.UndoToken{
		ID:         id,
		ActionType: undo.ActionStockReceipt,
		Payload:    string(payload),
		ExpiresAt:  expires,
	}
}

func TestIssueToken(t *testing.T) {
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("PutUndoToken", mock.Anything, mock.MatchedBy(func(tok *models.UndoToken) bool {
			return tok.ActionType == undo.ActionStockReceipt && tok.ExpiresAt.Equal(now.Add(undo.DefaultTTL))
		})).Return(nil)

		m := newManager(mockStore, now)
		token, err := m.IssueToken(context.Background(), undo.ActionStockReceipt,
			undo.StockReceiptPayload{VariantID: "v-1", Quantity: 10, MovementID: "mv-1"}, "op-1", 0)

		assert.NoError(t, err)
		assert.NotEmpty(t, token.ID)
		mockStore.AssertExpectations(t)
	})

	t.Run("UnknownActionTypeRejected", func(t *testing.T) {
		m := newManager(new(mocks.Storage), now)
		_, err := m.IssueToken(context.Background(), "time_travel", nil, "op-1", 0)
		assert.ErrorIs(t, err, storage.ErrValidation)
	})
}

func TestUndoStockReceipt(t *testing.T) {
	now := time.Now()

	t.Run("AppliesOppositeAdjustment", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetUndoToken", mock.Anything, "tok-1").Return(receiptToken("tok-1", now.Add(time.Minute)), nil)
		mockStore.On("MarkTokenUndone", mock.Anything, "tok-1", now).Return(nil)
		mockStore.On("AppendMovement", mock.Anything, mock.MatchedBy(func(m *models.StockMovement) bool {
			return m.Delta == -10 && m.Kind == models.MovementAdjustment && m.VariantID == "v-1"
		}), mock.Anything).Return(&models.StockMovement{}, &models.InventoryRecord{}, nil)

		m := newManager(mockStore, now)
		summary, err := m.Undo(context.Background(), "tok-1", "op-2")

		assert.NoError(t, err)
		assert.Contains(t, summary, "v-1")
		mockStore.AssertExpectations(t)
	})

	t.Run("ExpiredTokenRejected", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetUndoToken", mock.Anything, "tok-1").Return(receiptToken("tok-1", now.Add(-time.Second)), nil)

		m := newManager(mockStore, now)
		_, err := m.Undo(context.Background(), "tok-1", "op-2")

		assert.ErrorIs(t, err, storage.ErrTokenExpired)
		mockStore.AssertNotCalled(t, "MarkTokenUndone", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AlreadyUndoneRejected", func(t *testing.T) {
		undone := receiptToken("tok-1", now.Add(time.Minute))
		undoneAt := now.Add(-time.Minute)
		undone.UndoneAt = &undoneAt

		mockStore := new(mocks.Storage)
		mockStore.On("GetUndoToken", mock.Anything, "tok-1").Return(undone, nil)

		m := newManager(mockStore, now)
		_, err := m.Undo(context.Background(), "tok-1", "op-2")

		assert.ErrorIs(t, err, storage.ErrAlreadyUndone)
	})

	t.Run("LostConsumeRaceRejected", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetUndoToken", mock.Anything, "tok-1").Return(receiptToken("tok-1", now.Add(time.Minute)), nil)
		mockStore.On("MarkTokenUndone", mock.Anything, "tok-1", now).Return(storage.ErrAlreadyUndone)

		m := newManager(mockStore, now)
		_, err := m.Undo(context.Background(), "tok-1", "op-2")

		assert.ErrorIs(t, err, storage.ErrAlreadyUndone)
		mockStore.AssertNotCalled(t, "AppendMovement", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUndoBulkStatus(t *testing.T) {
	now := time.Now()

	payload, _ := json.Marshal(undo.BulkStatusPayload{
		Target: models.OrderProcessing,
		Orders: []undo.PriorOrderStatus{
			{OrderID: "o-1", PriorStatus: models.OrderPaid},
			{OrderID: "o-2", PriorStatus: models.OrderPaid},
		},
	})
	token := &models.UndoToken{
		ID:         "tok-2",
		ActionType: undo.ActionBulkStatus,
		Payload:    string(payload),
		ExpiresAt:  now.Add(time.Minute),
	}

	t.Run("RestoresPriorStatuses", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetUndoToken", mock.Anything, "tok-2").Return(token, nil)
		mockStore.On("MarkTokenUndone", mock.Anything, "tok-2", now).Return(nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-1", models.OrderProcessing, models.OrderPaid, mock.Anything, mock.Anything).Return(nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-2", models.OrderProcessing, models.OrderPaid, mock.Anything, mock.Anything).Return(nil)

		m := newManager(mockStore, now)
		summary, err := m.Undo(context.Background(), "tok-2", "staff-1")

		assert.NoError(t, err)
		assert.Contains(t, summary, "restored 2")
		mockStore.AssertExpectations(t)
	})

	t.Run("SkipsOrdersThatMovedOn", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetUndoToken", mock.Anything, "tok-2").Return(token, nil)
		mockStore.On("MarkTokenUndone", mock.Anything, "tok-2", now).Return(nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-1", models.OrderProcessing, models.OrderPaid, mock.Anything, mock.Anything).Return(nil)
		mockStore.On("TransitionOrder", mock.Anything, "o-2", models.OrderProcessing, models.OrderPaid, mock.Anything, mock.Anything).
			Return(storage.ErrStatusConflict)

		m := newManager(mockStore, now)
		summary, err := m.Undo(context.Background(), "tok-2", "staff-1")

		assert.NoError(t, err)
		assert.Contains(t, summary, "restored 1")
		assert.Contains(t, summary, "skipped 1")
	})
}

func TestUndoBulkActivation(t *testing.T) {
	now := time.Now()

	payload, _ := json.Marshal(undo.BulkActivationPayload{
		Variants: []undo.PriorVariantActive{
			{VariantID: "v-1", Active: true},
			{VariantID: "v-2", Active: false},
		},
	})
	token := &models.UndoToken{
		ID:         "tok-3",
		ActionType: undo.ActionBulkActivation,
		Payload:    string(payload),
		ExpiresAt:  now.Add(time.Minute),
	}

	mockStore := new(mocks.Storage)
	mockStore.On("GetUndoToken", mock.Anything, "tok-3").Return(token, nil)
	mockStore.On("MarkTokenUndone", mock.Anything, "tok-3", now).Return(nil)
	mockStore.On("SetVariantActive", mock.Anything, "v-1", true, mock.Anything).Return(nil)
	mockStore.On("SetVariantActive", mock.Anything, "v-2", false, mock.Anything).Return(nil)

	m := newManager(mockStore, now)
	summary, err := m.Undo(context.Background(), "tok-3", "staff-1")

	assert.NoError(t, err)
	assert.Contains(t, summary, "2 variants")
	mockStore.AssertExpectations(t)
}
