package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidtrack/vidtrack/internal/handler/dto"
	"github.com/vidtrack/vidtrack/internal/service"
	"github.com/vidtrack/vidtrack/internal/signature"
)

// Provider signature headers.
const (
	calendlySignatureHeader = "Calendly-Webhook-Signature"
	stripeSignatureHeader   = "Stripe-Signature"
)

// WebhookHandler ingests scheduling and payment provider events.
type WebhookHandler struct {
	svc            *service.AttributionService
	logger         *slog.Logger
	calendlySecret string
	stripeSecret   string
}

// NewWebhookHandler creates a new WebhookHandler. Empty secrets
// disable signature verification for the matching provider.
func NewWebhookHandler(svc *service.AttributionService, logger *slog.Logger, calendlySecret, stripeSecret string) *WebhookHandler {
	return &WebhookHandler{
		svc:            svc,
		logger:         logger.With("handler", "webhook"),
		calendlySecret: calendlySecret,
		stripeSecret:   stripeSecret,
	}
}

// Calendly handles POST /webhooks/calendly.
//
// The signature is checked only when the header is present; unsigned
// deliveries are accepted so that test hooks and local tunnels keep
// working. Correctly signed, well-formed payloads always get a 200,
// attribution miss included, so the provider does not retry-storm.
func (h *WebhookHandler) Calendly(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Could not read request body")
		return
	}

	if sig := r.Header.Get(calendlySignatureHeader); sig != "" && h.calendlySecret != "" {
		if err := signature.VerifyHMAC(h.calendlySecret, sig, body); err != nil {
			h.logger.Warn("calendly_signature_rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Webhook signature verification failed")
			return
		}
	}

	var event dto.CalendlyWebhook
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if event.Event != "invitee.created" {
		writeJSON(w, http.StatusOK, dto.WebhookAck{Status: "ignored"})
		return
	}

	booking, err := h.svc.AttributeBooking(r.Context(), service.BookingInput{
		Email:       event.Payload.Email,
		Name:        event.Payload.Name,
		UTMCampaign: event.Payload.Tracking.UTMCampaign,
		UTMTerm:     event.Payload.Tracking.UTMTerm,
		Timestamp:   event.Payload.CreatedAt,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingEmail) {
			writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "Invitee email is required")
			return
		}
		h.logger.Error("booking_ingest_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if !booking.Attributed() {
		// The questionnaire often names the traffic source when the
		// tracking block is empty (manual bookings, shared links).
		source := event.Payload.Tracking.UTMSource
		if source == "" {
			source = event.Payload.SourceHint()
		}
		h.logger.Warn("booking_unattributed",
			"booking_id", booking.ID,
			"campaign", event.Payload.Tracking.UTMCampaign,
			"source", source,
		)
	}

	writeJSON(w, http.StatusOK, dto.WebhookAck{
		Status:     "recorded",
		Attributed: booking.Attributed(),
		ID:         booking.ID,
	})
}

// Stripe handles POST /webhooks/stripe.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Could not read request body")
		return
	}

	if sig := r.Header.Get(stripeSignatureHeader); sig != "" && h.stripeSecret != "" {
		if err := signature.VerifyTimestamped(h.stripeSecret, sig, body, signature.DefaultReplayWindow); err != nil {
			h.logger.Warn("stripe_signature_rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Webhook signature verification failed")
			return
		}
	}

	var event dto.StripeWebhook
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if event.Type != "checkout.session.completed" && event.Type != "payment_intent.succeeded" {
		writeJSON(w, http.StatusOK, dto.WebhookAck{Status: "ignored"})
		return
	}

	obj := event.Data.Object

	var ts time.Time
	if obj.Created > 0 {
		ts = time.Unix(obj.Created, 0).UTC()
	}

	sale, err := h.svc.AttributeSale(r.Context(), service.SaleInput{
		Email:     obj.Email(),
		Amount:    obj.AmountMajor(),
		BookingID: obj.Metadata["booking_id"],
		Timestamp: ts,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSaleUnattributed):
			h.logger.Warn("sale_unattributed", "email", obj.Email(), "amount", obj.AmountMajor())
			writeJSON(w, http.StatusOK, dto.WebhookAck{Status: "recorded", Attributed: false})
		case errors.Is(err, service.ErrInvalidSaleAmount):
			writeError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Sale amount must be positive")
		default:
			h.logger.Error("sale_ingest_failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.WebhookAck{
		Status:     "recorded",
		Attributed: true,
		ID:         sale.ID,
	})
}

// Chain handles GET /webhooks/attribution/{saleID} and returns the
// full click-booking-sale lineage for a sale.
func (h *WebhookHandler) Chain(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleID")

	chain, err := h.svc.ResolveChain(r.Context(), saleID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			writeError(w, http.StatusNotFound, "SALE_NOT_FOUND", "Sale not found")
		case errors.Is(err, service.ErrChainIncomplete):
			writeError(w, http.StatusNotFound, "CHAIN_INCOMPLETE", "Sale not found or attribution chain incomplete")
		default:
			h.logger.Error("chain_resolve_failed", "sale_id", saleID, "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
		return
	}

	writeJSON(w, http.StatusOK, chain)
}
