// Package assistant wraps the Gemini model behind the single Ask operation
// the dispatcher needs: question plus financial snapshot in, annotated
// Portuguese reply out.
package assistant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/finance-assistant/internal/snapshot"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds the model client settings.
type Config struct {
	APIKey string
	Model  string // defaults to DefaultModel
}

// Assistant is a Gemini-backed financial assistant. Construct once at
// startup; safe for concurrent use.
type Assistant struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// New creates the assistant and its underlying genai client.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assistant: API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: create genai client: %w", err)
	}

	return &Assistant{client: client, model: model, log: log}, nil
}

// Ask sends the user's question plus the financial context to the model
// and returns the raw reply text, command markers included.
func (a *Assistant) Ask(ctx context.Context, question string, snap *snapshot.Snapshot) (string, error) {
	contextBlock, err := formatFinancialContext(snap)
	if err != nil {
		return "", fmt.Errorf("Ask: formatting context: %w", err)
	}

	fullPrompt := systemPrompt + "\n\n" + contextBlock + "\n\nPergunta do usuário: " + question

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: fullPrompt}},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Ask: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Ask: empty response from model")
	}

	a.log.Debug().
		Str("model", a.model).
		Int("reply_len", len(text)).
		Msg("Model replied")

	return text, nil
}
