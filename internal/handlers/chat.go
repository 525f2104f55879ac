package handlers

import (
	"context"
	"net/http"

	"salesbot-backend/internal/models"
	"salesbot-backend/internal/services"
)

type chatRelayer interface {
	Relay(ctx context.Context, req models.ChatRequest) models.ChatResponse
}

type ChatHandler struct {
	relay chatRelayer
}

func NewChatHandler(relay chatRelayer) *ChatHandler {
	return &ChatHandler{relay: relay}
}

// Chat answers with 200 whenever the request itself is well-formed; upstream
// failures come back as the fallback reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := services.Validate(req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.relay.Relay(r.Context(), req))
}
