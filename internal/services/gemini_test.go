package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/api/option"

	"salesbot-backend/internal/models"
	"salesbot-backend/internal/profile"
)

func TestFirstCandidateText(t *testing.T) {
	text, err := firstCandidateText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("first"), genai.Text("second")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("other candidate")}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", text)
}

func TestFirstCandidateText_Malformed(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"no parts", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}}},
		{"non-text part", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}},
		}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := firstCandidateText(tc.resp)
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestAcquireSlot_RespectsContext(t *testing.T) {
	s := &GeminiService{slots: make(chan struct{}, 1)}
	s.slots <- struct{}{}

	require.NoError(t, s.acquireSlot(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.acquireSlot(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	s.releaseSlot()
	require.NoError(t, s.acquireSlot(context.Background()))
}

type generateContentBody struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
		TopP            float64 `json:"topP"`
		TopK            int     `json:"topK"`
	} `json:"generationConfig"`
}

const geminiReply = `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello from Gemini"}]},"finishReason":"STOP","index":0}]}`

func newHTTPGemini(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *GeminiService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewGeminiService("test-key", 2, timeout, option.WithEndpoint(srv.URL))
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestGenerate_SendsGenerationConfig(t *testing.T) {
	var gotPath string
	var got generateContentBody
	svc := newHTTPGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiReply))
	}, 2*time.Second)

	text, err := svc.Generate(context.Background(), "PERSONA\n\nUser: hi\n\nAssistant:")

	require.NoError(t, err)
	assert.Equal(t, "Hello from Gemini", text)
	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-2.0-flash:generateContent"), gotPath)

	cfg := got.GenerationConfig
	assert.InDelta(t, 0.9, cfg.Temperature, 1e-6)
	assert.Equal(t, 1000, cfg.MaxOutputTokens)
	assert.InDelta(t, 0.95, cfg.TopP, 1e-6)
	assert.Equal(t, 40, cfg.TopK)

	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 1)
	assert.Equal(t, "PERSONA\n\nUser: hi\n\nAssistant:", got.Contents[0].Parts[0].Text)
}

func TestGenerate_UpstreamFailuresServeFallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`))
			},
			reason: "upstream_status",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"candidates": [`))
			},
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(5 * time.Second):
				}
			},
		},
	}

	p := profile.Default()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newHTTPGemini(t, tc.handler, 300*time.Millisecond)

			start := time.Now()
			_, err := svc.Generate(context.Background(), "hello")
			require.Error(t, err)
			assert.Less(t, time.Since(start), 3*time.Second)

			core, logs := observer.New(zap.DebugLevel)
			relay := NewChatRelay(svc, p, zap.New(core))
			resp := relay.Relay(context.Background(), models.ChatRequest{Message: "hello"})

			assert.Equal(t, p.Messages.ChatFallback, resp.Response)
			entries := logs.FilterMessage("Gemini request failed, serving fallback reply").All()
			require.Len(t, entries, 1)
			if tc.reason != "" {
				assert.Equal(t, tc.reason, entries[0].ContextMap()["reason"])
			}
		})
	}
}
