package handlers

import (
	"context"
	"net/http"

	"salesbot-backend/internal/models"
)

type contactIntaker interface {
	Intake(ctx context.Context, sub models.ContactSubmission) (*models.ContactResponse, error)
}

type ContactHandler struct {
	intake contactIntaker
}

func NewContactHandler(intake contactIntaker) *ContactHandler {
	return &ContactHandler{intake: intake}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub models.ContactSubmission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.intake.Intake(r.Context(), sub)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
