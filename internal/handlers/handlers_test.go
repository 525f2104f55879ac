package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"salesbot-backend/internal/models"
	"salesbot-backend/internal/profile"
	"salesbot-backend/internal/services"
)

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("upstream returned 503")
}

type echoGenerator struct{ prompts []string }

func (g *echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return "Sure, let's talk.", nil
}

type stubForwarder struct {
	got    models.LeadForwardRequest
	result models.LeadForwardResult
}

func (s *stubForwarder) Forward(ctx context.Context, req models.LeadForwardRequest) models.LeadForwardResult {
	s.got = req
	return s.result
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp.Error
}

// ─── Info Handler Tests ───

func TestRootHandler(t *testing.T) {
	p := profile.Default()
	h := NewInfoHandler(p)

	rr := httptest.NewRecorder()
	h.Root(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var info models.ServiceInfo
	if err := json.NewDecoder(rr.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.Status != "active" {
		t.Errorf("Expected status 'active', got %q", info.Status)
	}
	if info.Service != p.Service.Name {
		t.Errorf("Expected service %q, got %q", p.Service.Name, info.Service)
	}
	if info.Endpoints["chat"] != "/api/chat-gemini" || info.Endpoints["lead"] != "/api/send-to-discord" {
		t.Errorf("Unexpected endpoints: %v", info.Endpoints)
	}
	if info.Contact["email"] != p.Contact.Email {
		t.Errorf("Expected contact email %q, got %q", p.Contact.Email, info.Contact["email"])
	}
}

func TestHealthHandler(t *testing.T) {
	h := NewInfoHandler(profile.Default())
	h.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var status models.HealthStatus
	if err := json.NewDecoder(rr.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if status.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %q", status.Status)
	}
	if status.Timestamp != "2026-03-04T05:06:07Z" {
		t.Errorf("Unexpected timestamp %q", status.Timestamp)
	}
}

// ─── Chat Handler Tests ───

func TestChatHandler_UpstreamFailureStill200(t *testing.T) {
	p := profile.Default()
	relay := services.NewChatRelay(failingGenerator{}, p, zap.NewNop())
	h := NewChatHandler(relay)

	rr := postJSON(t, h.Chat, "/api/chat-gemini", `{"message":"hi","conversation_id":"conv_1"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Response != p.Messages.ChatFallback {
		t.Errorf("Expected fallback reply, got %q", resp.Response)
	}
	if resp.ConversationID != "conv_1" {
		t.Errorf("Expected conversation_id 'conv_1', got %q", resp.ConversationID)
	}
}

func TestChatHandler_PassesHistory(t *testing.T) {
	gen := &echoGenerator{}
	h := NewChatHandler(services.NewChatRelay(gen, profile.Default(), zap.NewNop()))

	body := `{"message":"And pricing?","conversation_history":[{"role":"user","text":"Hello"},{"role":"assistant","content":"Hi there"}]}`
	rr := postJSON(t, h.Chat, "/api/chat-gemini", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("Expected exactly one upstream call, got %d", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "User: Hello\nAssistant: Hi there\n\nUser: And pricing?") {
		t.Errorf("Prompt is missing the conversation: %q", gen.prompts[0])
	}
}

func TestChatHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"message":`},
		{"missing message", `{"conversation_history":[]}`},
		{"empty message", `{"message":""}`},
		{"whitespace message", `{"message":"   "}`},
	}

	h := NewChatHandler(services.NewChatRelay(&echoGenerator{}, profile.Default(), zap.NewNop()))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := postJSON(t, h.Chat, "/api/chat-gemini", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rr.Code)
			}
			if code := decodeError(t, rr).Code; code != "VALIDATION_ERROR" {
				t.Errorf("Expected VALIDATION_ERROR, got %q", code)
			}
		})
	}
}

// ─── Lead Handler Tests ───

func TestLeadHandler_FailureStill200(t *testing.T) {
	fwd := &stubForwarder{result: models.LeadForwardResult{Success: false, Message: "reach us directly"}}
	h := NewLeadHandler(fwd)

	body := `{"conversation_history":[{"role":"user","text":"Let's build it"}],"user_email":"a@b.com","deal_status":"deal_confirmed"}`
	rr := postJSON(t, h.SendToDiscord, "/api/send-to-discord", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var result models.LeadForwardResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Success {
		t.Error("Expected success false")
	}
	if fwd.got.Email != "a@b.com" || fwd.got.DealStatus != models.DealStatusConfirmed {
		t.Errorf("Request not passed through: %+v", fwd.got)
	}
	if len(fwd.got.History) != 1 || fwd.got.History[0].Body() != "Let's build it" {
		t.Errorf("History not passed through: %+v", fwd.got.History)
	}
}

func TestLeadHandler_MalformedBody(t *testing.T) {
	h := NewLeadHandler(&stubForwarder{})

	rr := postJSON(t, h.SendToDiscord, "/api/send-to-discord", `not json`)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

// ─── Contact Handler Tests ───

func TestContactHandler(t *testing.T) {
	h := NewContactHandler(services.NewContactIntake(nil, profile.Default(), zap.NewNop()))

	rr := postJSON(t, h.Submit, "/api/contact", `{"name":"Alice","email":"alice@x.com","message":"hi"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp models.ContactResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success || !strings.HasPrefix(resp.TicketID, "TICKET_") || len(resp.TicketID) != len("TICKET_")+14 {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestContactHandler_InvalidEmail(t *testing.T) {
	h := NewContactHandler(services.NewContactIntake(nil, profile.Default(), zap.NewNop()))

	rr := postJSON(t, h.Submit, "/api/contact", `{"name":"Alice","email":"not-an-email","message":"hi"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
	apiErr := decodeError(t, rr)
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %q", apiErr.Code)
	}
	if _, ok := apiErr.Fields["email"]; !ok {
		t.Errorf("Expected an email field error, got %v", apiErr.Fields)
	}
}

// ─── JSON Response Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]interface{}{"message": "Success"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", rr.Header().Get("Content-Type"))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["message"] != "Success" {
		t.Errorf("Expected message 'Success', got %v", result["message"])
	}
}

func TestHandleServiceError_Unknown(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(nil))

	handleServiceError(rr, req, errors.New("boom"))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}
	if code := decodeError(t, rr).Code; code != "INTERNAL_ERROR" {
		t.Errorf("Expected INTERNAL_ERROR, got %q", code)
	}
}
