package services

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"salesbot-backend/internal/models"
	"salesbot-backend/internal/profile"
)

const (
	maxTurnExcerptChars = 200
	maxExcerptChars     = 1000
	maxEmbedFieldChars  = 1024 // Discord rejects longer field values
	leadEmbedColor      = 0x03b2f8
	emptyExcerpt        = "No conversation captured."
)

type webhookExecutor interface {
	Execute(ctx context.Context, params *discordgo.WebhookParams) (int, error)
}

// LeadForwarder hands a conversation to the operator through the webhook.
type LeadForwarder struct {
	webhook webhookExecutor
	profile *profile.Profile
	logger  *zap.Logger
	now     func() time.Time
}

func NewLeadForwarder(webhook webhookExecutor, p *profile.Profile, logger *zap.Logger) *LeadForwarder {
	return &LeadForwarder{
		webhook: webhook,
		profile: p,
		logger:  logger,
		now:     time.Now,
	}
}

// Forward never returns an error: a failed delivery becomes an unsuccessful
// result carrying direct contact details.
func (f *LeadForwarder) Forward(ctx context.Context, req models.LeadForwardRequest) models.LeadForwardResult {
	params := f.buildWebhookParams(req)

	status, err := f.webhook.Execute(ctx, params)
	if err != nil || status != http.StatusOK {
		f.logger.Error("Discord webhook delivery failed",
			zap.Int("status", status),
			zap.String("deal_status", dealStatus(req)),
			zap.Error(err),
		)
		return models.LeadForwardResult{Success: false, Message: f.profile.LeadFailureMessage()}
	}

	f.logger.Info("lead forwarded to Discord",
		zap.String("deal_status", dealStatus(req)),
		zap.Int("turns", len(req.History)),
	)
	return models.LeadForwardResult{Success: true, Message: f.profile.Messages.LeadSent}
}

func (f *LeadForwarder) buildWebhookParams(req models.LeadForwardRequest) *discordgo.WebhookParams {
	now := f.now()
	status := dealStatus(req)
	details := mergeLeadDetails(req)

	var fields []*discordgo.MessageEmbedField
	if details.Email != "" {
		fields = append(fields, embedField("📧 Email", details.Email))
	}
	if details.Phone != "" {
		fields = append(fields, embedField("📱 Phone", details.Phone))
	}
	if details.Industry != "" {
		fields = append(fields, embedField("🏢 Industry", details.Industry))
	}
	fields = append(fields,
		embedField("Status", strings.ToUpper(status)),
		&discordgo.MessageEmbedField{Name: "💬 Conversation Excerpt", Value: buildLeadExcerpt(req.History)},
	)

	embed := &discordgo.MessageEmbed{
		Title:       leadLabel(status) + " - New Client Inquiry",
		Description: "A potential client wants to connect!",
		Color:       leadEmbedColor,
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: f.profile.Service.Name + " • " + now.Format("2006-01-02 15:04"),
		},
		Timestamp: now.Format(time.RFC3339),
	}

	return &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
}

func embedField(name, value string) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: truncateRunes(value, maxEmbedFieldChars)}
}

func dealStatus(req models.LeadForwardRequest) string {
	if s := strings.TrimSpace(req.DealStatus); s != "" {
		return s
	}
	return models.DealStatusInterested
}

func leadLabel(status string) string {
	if status == models.DealStatusConfirmed {
		return "🔥 HOT LEAD"
	}
	return "💼 NEW LEAD"
}

// buildLeadExcerpt renders the last turns with each body capped at
// maxTurnExcerptChars and the whole excerpt capped at maxExcerptChars.
func buildLeadExcerpt(history []models.ChatTurn) string {
	turns := lastTurns(history)
	if len(turns) == 0 {
		return emptyExcerpt
	}

	parts := make([]string, 0, len(turns))
	for _, turn := range turns {
		speaker := "AI"
		if turn.IsUser() {
			speaker = "User"
		}
		parts = append(parts, "**"+speaker+"**: "+truncateRunes(turn.Body(), maxTurnExcerptChars))
	}

	return truncateRunes(strings.Join(parts, "\n\n"), maxExcerptChars)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
