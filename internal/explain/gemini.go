package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini answers the explanation contract with Google Gemini in JSON mode.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGemini creates a Gemini-backed explainer using the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		logger: logging.OrDefault(logger).With("component", "explain", "provider", "gemini"),
	}, nil
}

// Explain implements the explain call.
func (g *Gemini) Explain(ctx context.Context, word string) (vocab.Explanation, error) {
	text, err := g.generate(ctx, "explain", explainPrompt(word), 0.5)
	if err != nil {
		return vocab.Explanation{}, err
	}
	return parseExplanation("explain", text)
}

// Regenerate implements the regenerate call.
func (g *Gemini) Regenerate(ctx context.Context, word, previousExample, previousMnemonic string) (vocab.Alternative, error) {
	text, err := g.generate(ctx, "regenerate", regeneratePrompt(word, previousExample, previousMnemonic), 0.9)
	if err != nil {
		return vocab.Alternative{}, err
	}
	return parseAlternative("regenerate", text)
}

// Suggest implements the suggest call.
func (g *Gemini) Suggest(ctx context.Context) ([]string, error) {
	text, err := g.generate(ctx, "suggest", suggestPrompt(SuggestionCount), 1.0)
	if err != nil {
		return nil, err
	}
	return parseSuggestions("suggest", text)
}

func (g *Gemini) generate(ctx context.Context, op, prompt string, temperature float32) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
			Temperature:       genai.Ptr(temperature),
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		g.logger.Warn("generate content failed", "op", op, "error", err)
		return "", &vocab.ServiceError{Op: op, Err: fmt.Errorf("gemini generate: %w", err)}
	}

	text := resp.Text()
	if text == "" {
		return "", &vocab.ServiceError{Op: op, Err: errors.New("empty gemini response")}
	}
	return text, nil
}
