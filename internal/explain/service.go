package explain

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/snonux/wordsmith/internal/config"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

// Service is the AI half of the backend contract. The backend client and
// both direct providers satisfy it.
type Service interface {
	Explain(ctx context.Context, word string) (vocab.Explanation, error)
	Regenerate(ctx context.Context, word, previousExample, previousMnemonic string) (vocab.Alternative, error)
	Suggest(ctx context.Context) ([]string, error)
}

// New picks the AI provider named in cfg. For "backend" it returns the given
// fallback.
func New(ctx context.Context, cfg *config.Config, backend Service, logger *slog.Logger) (Service, error) {
	switch cfg.AI.Provider {
	case "", "backend":
		if backend == nil {
			return nil, fmt.Errorf("backend AI provider selected but no backend client given")
		}
		return backend, nil
	case "openai":
		return NewOpenAI(cfg.OpenAI.APIKey, cfg.AI.OpenAIModel, logger)
	case "gemini":
		return NewGemini(ctx, cfg.Gemini.APIKey, cfg.AI.GeminiModel, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AI.Provider)
	}
}
