package handler

import (
	"errors"
	"io"
	"net/http"

	"coursecatalog/internal/api/httpx"
	"coursecatalog/internal/api/v1/dto"
	"coursecatalog/internal/identity"
	"coursecatalog/internal/metrics"
	"coursecatalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxWebhookBody caps the identity event body read into memory.
const maxWebhookBody = 1 << 20

// WebhookHandler receives identity provider lifecycle events
type WebhookHandler struct {
	verifier *identity.Verifier
	sync     service.UserSyncService
	logger   zerolog.Logger
}

func NewWebhookHandler(verifier *identity.Verifier, sync service.UserSyncService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		sync:     sync,
		logger:   logger.With().Str("handler", "WebhookHandler").Logger(),
	}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/webhook", h.handleWebhook)
}

func (h *WebhookHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	// Verify against the exact bytes received, before decoding.
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, httpx.CodeTooLarge, "Webhook body too large")
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "Failed to read request body")
		return
	}

	if err := h.verifier.Verify(payload, r.Header); err != nil {
		if errors.Is(err, identity.ErrMissingHeaders) {
			metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
			httpx.WriteError(w, http.StatusBadRequest, httpx.CodeMissingHeaders, "Error occurred -- no svix headers")
			return
		}
		h.logger.Warn().Err(err).Str("svix_id", r.Header.Get(identity.HeaderID)).Msg("Error verifying webhook")
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidSignature, "Error verifying webhook")
		return
	}

	evt, err := identity.Decode(payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Malformed identity event")
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidEvent, "Malformed event payload")
		return
	}

	res, err := h.sync.HandleEvent(r.Context(), evt)
	if err != nil {
		h.logger.Error().Err(err).Str("type", evt.Type()).Msg("Failed to apply identity event")
		metrics.WebhookEventsTotal.WithLabelValues(eventLabel(evt), "failed").Inc()
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "Failed to process webhook")
		return
	}
	metrics.WebhookEventsTotal.WithLabelValues(eventLabel(evt), string(res.Outcome)).Inc()

	switch res.Outcome {
	case service.OutcomeCreated:
		httpx.WriteJSON(w, http.StatusCreated, dto.NewUserResponse(res.User))
	case service.OutcomeUpdated:
		httpx.WriteJSON(w, http.StatusCreated, dto.MessageResponseDTO{Message: "User updated"})
	case service.OutcomeDeleted:
		httpx.WriteJSON(w, http.StatusCreated, dto.MessageResponseDTO{Message: "User deleted"})
	default:
		httpx.WriteJSON(w, http.StatusCreated, struct{}{})
	}
}

// eventLabel bounds the metric label set to the handled event types.
func eventLabel(evt identity.Event) string {
	if _, ok := evt.(identity.UnknownEvent); ok {
		return "other"
	}
	return evt.Type()
}
