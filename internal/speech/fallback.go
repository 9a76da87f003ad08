package speech

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/snonux/wordsmith/internal/logging"
)

// FallbackSynthesizer tries a primary synthesizer and falls back to a
// secondary one when it fails.
type FallbackSynthesizer struct {
	primary  Synthesizer
	fallback Synthesizer
	logger   *slog.Logger
}

// NewFallbackSynthesizer creates a synthesizer that uses fallback when primary fails.
func NewFallbackSynthesizer(primary, fallback Synthesizer, logger *slog.Logger) *FallbackSynthesizer {
	return &FallbackSynthesizer{
		primary:  primary,
		fallback: fallback,
		logger:   logging.OrDefault(logger).With("component", "speech"),
	}
}

// Speak tries the primary first. Cancellation is not treated as a failure.
func (f *FallbackSynthesizer) Speak(ctx context.Context, text string) error {
	err := f.primary.Speak(ctx, text)
	if err == nil || ctx.Err() != nil {
		return err
	}
	f.logger.Warn("primary synthesizer failed, falling back",
		"primary", f.primary.Name(), "fallback", f.fallback.Name(), "error", err)
	return f.fallback.Speak(ctx, text)
}

// Name returns both driver names.
func (f *FallbackSynthesizer) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", f.primary.Name(), f.fallback.Name())
}
