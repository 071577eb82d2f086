package variants_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/handlers/variants"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
	"github.com/spinshop/record-store-core/pkg/storage/mocks"
)

func withVariantID(req *http.Request, variantID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("variantId", variantID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateVariant(t *testing.T) {
	newVariant := api.NewVariant{
		SKU:               "LP-1001",
		Title:             "Blue Train",
		Artist:            "John Coltrane",
		PriceCents:        2999,
		LowStockThreshold: 3,
	}

	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("CreateVariant", mock.Anything, mock.MatchedBy(func(v *models.Variant) bool {
			return v.SKU == "LP-1001" && v.Active && v.ID != ""
		}), int64(3)).Return(func(ctx context.Context, v *models.Variant, threshold int64) *models.Variant { return v }, nil)

		h := variants.New(mockStorage)

		body, _ := json.Marshal(newVariant)
		req := httptest.NewRequest(http.MethodPost, "/variants", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.CreateVariant(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp api.Variant
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.True(t, resp.Active)
		assert.NotEmpty(t, resp.Id)
		mockStorage.AssertExpectations(t)
	})

	t.Run("MissingSKURejected", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		h := variants.New(mockStorage)

		body, _ := json.Marshal(api.NewVariant{Title: "Blue Train", PriceCents: 2999})
		req := httptest.NewRequest(http.MethodPost, "/variants", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.CreateVariant(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockStorage.AssertNotCalled(t, "CreateVariant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NegativePriceRejected", func(t *testing.T) {
		h := variants.New(new(mocks.Storage))

		body, _ := json.Marshal(api.NewVariant{SKU: "LP-1", Title: "X", PriceCents: -1})
		req := httptest.NewRequest(http.MethodPost, "/variants", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.CreateVariant(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSetActive(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("SetVariantActive", mock.Anything, "v-1", false, mock.MatchedBy(func(a *models.AuditEntry) bool {
			return a.EventType == variants.EventVariantActivation && a.After == "active=false"
		})).Return(nil)
		mockStorage.On("GetVariant", mock.Anything, "v-1").
			Return(&models.Variant{ID: "v-1", SKU: "LP-1001", Title: "Blue Train", Active: false}, nil)

		h := variants.New(mockStorage)

		body, _ := json.Marshal(api.SetActiveRequest{Active: false, ActorId: "staff-1"})
		req := withVariantID(httptest.NewRequest(http.MethodPut, "/variants/v-1/active", bytes.NewReader(body)), "v-1")
		rr := httptest.NewRecorder()

		h.SetActive(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockStorage.AssertExpectations(t)
	})

	t.Run("UnknownVariant", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("SetVariantActive", mock.Anything, "missing", true, mock.Anything).
			Return(storage.ErrVariantNotFound)

		h := variants.New(mockStorage)

		body, _ := json.Marshal(api.SetActiveRequest{Active: true})
		req := withVariantID(httptest.NewRequest(http.MethodPut, "/variants/missing/active", bytes.NewReader(body)), "missing")
		rr := httptest.NewRecorder()

		h.SetActive(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
