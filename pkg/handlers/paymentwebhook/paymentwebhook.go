// Package paymentwebhook receives payment provider webhooks, verifies their
// signatures and hands the normalized events to the idempotent processor.
package paymentwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/stripe/stripe-go/v78"
	stripewebhook "github.com/stripe/stripe-go/v78/webhook"

	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/handlers/respond"
	"github.com/spinshop/record-store-core/pkg/mapping"
	"github.com/spinshop/record-store-core/pkg/storage"
	"github.com/spinshop/record-store-core/pkg/webhooks"
)

const maxBodyBytes = 65536

// Processor is the slice of the webhook processor the handler calls.
type Processor interface {
	HandleEvent(ctx context.Context, event webhooks.Event) error
}

// Handler verifies and dispatches provider webhooks.
type Handler struct {
	Processor     Processor
	Events        storage.WebhookEventStore
	SigningSecret string
}

// New creates a Handler.
func New(processor Processor, events storage.WebhookEventStore, signingSecret string) *Handler {
	return &Handler{Processor: processor, Events: events, SigningSecret: signingSecret}
}

// HandleWebhook verifies the provider signature and processes the event. A
// bad signature is a 400 so the provider gives up; a processing failure is a
// 200, because the failure is recorded on our side and a provider retry of
// the same event ID would be discarded as a duplicate anyway.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respond.BadRequest(w, "failed to read request body")
		return
	}

	stripeEvent, err := stripewebhook.ConstructEvent(body, r.Header.Get("Stripe-Signature"), h.SigningSecret)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, api.Error{Code: "invalid_signature", Message: "webhook signature verification failed"})
		return
	}

	event, err := normalize(stripeEvent)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if err := h.Processor.HandleEvent(r.Context(), event); err != nil {
		if errors.Is(err, storage.ErrWebhookProcessingFailed) {
			// Acknowledged: the outcome is recorded and recovery runs
			// through the failed-events listing.
			w.WriteHeader(http.StatusOK)
			return
		}
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ListFailedEvents returns webhook events whose processing failed, for
// operator review and replay.
func (h *Handler) ListFailedEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	events, err := h.Events.ListFailedWebhookEvents(r.Context(), int32(limit))
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiEvents := make([]*api.WebhookEvent, len(events))
	for i := range events {
		apiEvents[i] = mapping.ToApiWebhookEvent(&events[i])
	}

	respond.JSON(w, http.StatusOK, apiEvents)
}

// normalize extracts the order reference from the provider's event payload.
// Checkout sessions carry the order ID as the client reference; charge events
// carry it in metadata.
func normalize(stripeEvent stripe.Event) (webhooks.Event, error) {
	event := webhooks.Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
	}

	switch event.Type {
	case webhooks.EventCheckoutCompleted, webhooks.EventCheckoutExpired:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
			return webhooks.Event{}, errors.New("malformed checkout session payload")
		}
		event.OrderID = session.ClientReferenceID
		event.ProviderRef = session.ID
	case webhooks.EventChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(stripeEvent.Data.Raw, &charge); err != nil {
			return webhooks.Event{}, errors.New("malformed charge payload")
		}
		event.OrderID = charge.Metadata["order_id"]
		event.ProviderRef = charge.ID
	case webhooks.EventChargeDisputed:
		var dispute stripe.Dispute
		if err := json.Unmarshal(stripeEvent.Data.Raw, &dispute); err != nil {
			return webhooks.Event{}, errors.New("malformed dispute payload")
		}
		event.OrderID = dispute.Metadata["order_id"]
		event.ProviderRef = dispute.ID
	}

	return event, nil
}
