package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"salesbot-backend/internal/models"
	"salesbot-backend/internal/profile"
)

// maxHistoryTurns bounds how much history reaches the prompt and the lead excerpt.
const maxHistoryTurns = 10

type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatRelay turns a chat request into one Gemini call. Upstream failures are
// logged and answered with the profile's fallback text.
type ChatRelay struct {
	generator textGenerator
	profile   *profile.Profile
	logger    *zap.Logger
	now       func() time.Time
}

func NewChatRelay(generator textGenerator, p *profile.Profile, logger *zap.Logger) *ChatRelay {
	return &ChatRelay{
		generator: generator,
		profile:   p,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *ChatRelay) Relay(ctx context.Context, req models.ChatRequest) models.ChatResponse {
	now := r.now()

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = newConversationID(now)
	}

	prompt := buildChatPrompt(r.profile.Persona, req.History, req.Message)

	reply, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		r.logUpstreamFailure(conversationID, err)
		reply = r.profile.Messages.ChatFallback
	}

	return models.ChatResponse{
		Response:       reply,
		ConversationID: conversationID,
		Timestamp:      r.now().Format(time.RFC3339),
	}
}

func (r *ChatRelay) logUpstreamFailure(conversationID string, err error) {
	fields := []zap.Field{
		zap.String("conversation_id", conversationID),
		zap.String("reason", classifyUpstreamError(err)),
		zap.Error(err),
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.Int("status", apiErr.Code), zap.String("body", apiErr.Body))
	}

	r.logger.Error("Gemini request failed, serving fallback reply", fields...)
}

// classifyUpstreamError names the failure for the server log only; clients
// always get the same fallback text.
func classifyUpstreamError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, ErrEmptyResponse) {
		return "empty_response"
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return "blocked"
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return "rate_limited"
		case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
			return "auth"
		case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Body+apiErr.Message, "API_KEY"):
			return "auth"
		default:
			return "upstream_status"
		}
	}

	return "transport"
}

// newConversationID combines wall-clock milliseconds with random bits so two
// requests in the same millisecond still differ.
func newConversationID(now time.Time) string {
	return fmt.Sprintf("conv_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func lastTurns(history []models.ChatTurn) []models.ChatTurn {
	if len(history) > maxHistoryTurns {
		return history[len(history)-maxHistoryTurns:]
	}
	return history
}

// buildChatContext renders the most recent turns as "Role: text" lines in
// chronological order.
func buildChatContext(history []models.ChatTurn) string {
	turns := lastTurns(history)
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		role := "Assistant"
		if turn.IsUser() {
			role = "User"
		}
		lines = append(lines, role+": "+turn.Body())
	}
	return strings.Join(lines, "\n")
}

func buildChatPrompt(persona string, history []models.ChatTurn, message string) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nConversation:\n")
	b.WriteString(buildChatContext(history))
	b.WriteString("\n\nUser: ")
	b.WriteString(message)
	b.WriteString("\n\nAssistant:")
	return b.String()
}
