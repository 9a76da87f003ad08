package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

// SuggestionCount is how many words Suggest asks for.
const SuggestionCount = 8

// OpenAI answers the explanation contract with chat completions in JSON mode.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI creates an OpenAI-backed explainer.
func NewOpenAI(apiKey, model string, logger *slog.Logger) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newOpenAI(openai.DefaultConfig(apiKey), model, logger), nil
}

func newOpenAI(clientCfg openai.ClientConfig, model string, logger *slog.Logger) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logging.OrDefault(logger).With("component", "explain", "provider", "openai"),
	}
}

// Explain implements the explain call.
func (o *OpenAI) Explain(ctx context.Context, word string) (vocab.Explanation, error) {
	text, err := o.complete(ctx, "explain", explainPrompt(word), 0.5)
	if err != nil {
		return vocab.Explanation{}, err
	}
	return parseExplanation("explain", text)
}

// Regenerate implements the regenerate call.
func (o *OpenAI) Regenerate(ctx context.Context, word, previousExample, previousMnemonic string) (vocab.Alternative, error) {
	text, err := o.complete(ctx, "regenerate", regeneratePrompt(word, previousExample, previousMnemonic), 0.9)
	if err != nil {
		return vocab.Alternative{}, err
	}
	return parseAlternative("regenerate", text)
}

// Suggest implements the suggest call.
func (o *OpenAI) Suggest(ctx context.Context) ([]string, error) {
	text, err := o.complete(ctx, "suggest", suggestPrompt(SuggestionCount), 1.0)
	if err != nil {
		return nil, err
	}
	return parseSuggestions("suggest", text)
}

func (o *OpenAI) complete(ctx context.Context, op, prompt string, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   400,
		Temperature: temperature,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.logger.Warn("chat completion failed", "op", op, "error", err)
		return "", openAIError(op, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &vocab.ServiceError{Op: op, Err: errors.New("no response from OpenAI")}
	}
	return resp.Choices[0].Message.Content, nil
}

// openAIError keeps the HTTP status of API failures. The provider's own error
// text is not used as a user-facing detail.
func openAIError(op string, err error) error {
	se := &vocab.ServiceError{Op: op, Err: fmt.Errorf("OpenAI API error: %w", err)}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		se.Status = apiErr.HTTPStatusCode
	}
	return se
}
