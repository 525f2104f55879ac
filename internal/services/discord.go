package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// DiscordWebhook posts messages to a single Discord webhook URL.
type DiscordWebhook struct {
	url    string
	client *http.Client
}

func NewDiscordWebhook(webhookURL string, timeout time.Duration) *DiscordWebhook {
	return &DiscordWebhook{
		url:    webhookURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Execute posts params and returns the HTTP status. The request asks Discord
// to wait for the message, so a delivered message answers 200. Any other
// status is returned together with a *WebhookStatusError.
func (d *DiscordWebhook) Execute(ctx context.Context, params *discordgo.WebhookParams) (int, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return 0, errors.Wrap(err, "encode webhook payload")
	}

	target, err := url.Parse(d.url)
	if err != nil {
		return 0, errors.Wrap(err, "parse webhook url")
	}
	q := target.Query()
	q.Set("wait", "true")
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "send webhook request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, &WebhookStatusError{Status: resp.StatusCode, Body: string(snippet)}
	}

	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
