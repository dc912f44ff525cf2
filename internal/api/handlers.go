/**
 * @description
 * HTTP handlers for the assistant-service. The messaging gateway posts one
 * normalized inbound event per user message; the reply for that turn is
 * returned in the response body. A second endpoint receives the aggregator's
 * out-of-band mandate activation webhook.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 * - internal/app, internal/store: The conversational engine and persistence.
 */
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/FredAbod/Project-Eureka-sub000/internal/app"
	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
	"github.com/FredAbod/Project-Eureka-sub000/internal/store"
)

// Handlers holds the application service the HTTP layer delegates to.
type Handlers struct {
	service *app.Service
	repo    store.Repository
}

// NewHandlers creates the assistant HTTP handlers.
func NewHandlers(service *app.Service, repo store.Repository) *Handlers {
	return &Handlers{service: service, repo: repo}
}

// inboundMessageRequest is the normalized event from the messaging gateway.
type inboundMessageRequest struct {
	UserIdentifier string `json:"user_identifier"`
	Text           string `json:"text"`
}

// messageReplyResponse carries the single outbound reply for the turn.
type messageReplyResponse struct {
	Reply string `json:"reply"`
}

// HandleInboundMessage runs one conversational turn.
func (h *Handlers) HandleInboundMessage(w http.ResponseWriter, r *http.Request) {
	var req inboundMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.service.HandleMessage(r.Context(), strings.TrimSpace(req.UserIdentifier), req.Text)
	if err != nil {
		if domain.IsUserInput(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("level=error component=api msg=\"turn failed\" user_id=%s err=%v", req.UserIdentifier, err)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	respondWithJSON(w, http.StatusOK, messageReplyResponse{Reply: reply})
}

// mandateWebhookRequest is the aggregator's mandate status notification.
type mandateWebhookRequest struct {
	Event string `json:"event"`
	Data  struct {
		MandateID string `json:"mandate_id"`
		Status    string `json:"status"`
	} `json:"data"`
}

// HandleMandateWebhook records out-of-band mandate activations.
func (h *Handlers) HandleMandateWebhook(w http.ResponseWriter, r *http.Request) {
	var req mandateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !strings.EqualFold(req.Data.Status, "approved") && !strings.EqualFold(req.Data.Status, "active") {
		// Only activations matter; other notifications are acknowledged.
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.repo.ActivateMandateByID(r.Context(), req.Data.MandateID); err != nil {
		if errors.Is(err, store.ErrMandateNotFound) {
			log.Printf("level=warn component=api msg=\"mandate webhook for unknown mandate\" mandate_id=%s", req.Data.MandateID)
			w.WriteHeader(http.StatusOK)
			return
		}
		log.Printf("level=error component=api msg=\"mandate activation failed\" mandate_id=%s err=%v", req.Data.MandateID, err)
		http.Error(w, "failed to record mandate activation", http.StatusInternalServerError)
		return
	}

	log.Printf("level=info component=api msg=\"mandate activated\" mandate_id=%s", req.Data.MandateID)
	w.WriteHeader(http.StatusOK)
}

// HandleListTransfers returns a user's recent transfer audit records. Used by
// support tooling to reconstruct what the assistant did and why.
func (h *Handlers) HandleListTransfers(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		http.Error(w, "user identifier is required", http.StatusBadRequest)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	records, err := h.repo.FindTransferRecordsByUserID(r.Context(), userID, limit)
	if err != nil {
		log.Printf("level=error component=api msg=\"transfer list failed\" user_id=%s err=%v", userID, err)
		http.Error(w, "failed to list transfers", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []domain.TransferRecord{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"transfers": records})
}

// respondWithJSON writes a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}
