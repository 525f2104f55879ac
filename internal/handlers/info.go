package handlers

import (
	"net/http"
	"time"

	"salesbot-backend/internal/models"
	"salesbot-backend/internal/profile"
)

type InfoHandler struct {
	profile *profile.Profile
	now     func() time.Time
}

func NewInfoHandler(p *profile.Profile) *InfoHandler {
	return &InfoHandler{profile: p, now: time.Now}
}

// Root describes the service and where to reach its owner.
func (h *InfoHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ServiceInfo{
		Service: h.profile.Service.Name,
		Status:  "active",
		Version: h.profile.Service.Version,
		Endpoints: map[string]string{
			"chat":    "/api/chat-gemini",
			"lead":    "/api/send-to-discord",
			"contact": "/api/contact",
			"health":  "/health",
		},
		Contact: map[string]string{
			"email":    h.profile.Contact.Email,
			"phone":    h.profile.Contact.Phone,
			"github":   h.profile.Contact.GitHub,
			"linkedin": h.profile.Contact.LinkedIn,
		},
	})
}

func (h *InfoHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthStatus{
		Status:    "healthy",
		Timestamp: h.now().Format(time.RFC3339),
	})
}
