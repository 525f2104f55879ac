package services

import (
	"context"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// Generation parameters are fixed for every chat request.
const (
	geminiModel           = "gemini-2.0-flash"
	geminiTemperature     = 0.9
	geminiMaxOutputTokens = 1000
	geminiTopP            = 0.95
	geminiTopK            = 40
)

type GeminiService struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	slots   chan struct{} // one slot per in-flight upstream call
}

// NewGeminiService dials the public Gemini endpoint. Extra options are
// appended after the API key, so an endpoint override wins.
func NewGeminiService(apiKey string, concurrentReqs int, timeout time.Duration, opts ...option.ClientOption) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}

	model := client.GenerativeModel(geminiModel)
	model.SetTemperature(geminiTemperature)
	model.SetMaxOutputTokens(geminiMaxOutputTokens)
	model.SetTopP(geminiTopP)
	model.SetTopK(geminiTopK)

	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	slots := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		slots <- struct{}{}
	}

	return &GeminiService{
		client:  client,
		model:   model,
		timeout: timeout,
		slots:   slots,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireSlot blocks until an upstream slot is free or ctx ends.
func (s *GeminiService) acquireSlot(ctx context.Context) error {
	select {
	case <-s.slots:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for Gemini slot")
	}
}

func (s *GeminiService) releaseSlot() {
	s.slots <- struct{}{}
}

// Generate sends prompt as a single-turn request and returns the text of the
// first candidate. The whole call, slot wait included, is bounded by the
// service timeout.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer s.releaseSlot()

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, "Gemini API error")
	}

	return firstCandidateText(resp)
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	text, ok := cand.Content.Parts[0].(genai.Text)
	if !ok {
		return "", ErrEmptyResponse
	}

	return string(text), nil
}
