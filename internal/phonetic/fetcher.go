package phonetic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Fetcher handles fetching pronunciation hints for English words
type Fetcher struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewFetcher creates a new phonetic information fetcher
func NewFetcher(apiKey, model string) *Fetcher {
	return newFetcher(apiKey, model, openai.DefaultConfig(apiKey))
}

func newFetcher(apiKey, model string, cfg openai.ClientConfig) *Fetcher {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Fetcher{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Fetch returns the IPA transcription of word followed by a one-line
// stress hint, e.g. "/ˌsɛr.ənˈdɪp.ɪ.ti/ (stress on DIP)".
func (f *Fetcher) Fetch(ctx context.Context, word string) (string, error) {
	if f.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}
	if strings.TrimSpace(word) == "" {
		return "", fmt.Errorf("word cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: f.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an English pronunciation coach. Answer with the General American IPA transcription between slashes, then the stressed syllable in capitals in parentheses. Nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Word: %s", word),
			},
		},
		Temperature: 0.2,
		MaxTokens:   60,
	}

	resp, err := f.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return firstLine(resp.Choices[0].Message.Content), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
