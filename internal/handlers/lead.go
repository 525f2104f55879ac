package handlers

import (
	"context"
	"net/http"

	"salesbot-backend/internal/models"
)

type leadForwarder interface {
	Forward(ctx context.Context, req models.LeadForwardRequest) models.LeadForwardResult
}

type LeadHandler struct {
	forwarder leadForwarder
}

func NewLeadHandler(forwarder leadForwarder) *LeadHandler {
	return &LeadHandler{forwarder: forwarder}
}

// SendToDiscord reports delivery in the body; the HTTP status stays 200 even
// when the webhook rejected the lead.
func (h *LeadHandler) SendToDiscord(w http.ResponseWriter, r *http.Request) {
	var req models.LeadForwardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	writeJSON(w, http.StatusOK, h.forwarder.Forward(r.Context(), req))
}
