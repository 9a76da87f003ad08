package speech

import (
	"context"
	"errors"
	"fmt"
)

// Synthesizer speaks text aloud and returns once playback has ended.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Name() string
}

// Recognizer captures one utterance and returns its transcript.
type Recognizer interface {
	RecognizeOnce(ctx context.Context) (string, error)
	Name() string
}

// Adapter wraps optional synthesis and recognition drivers. A nil driver
// means the capability is absent.
type Adapter struct {
	synth Synthesizer
	rec   Recognizer
}

// NewAdapter creates an adapter. Either driver may be nil.
func NewAdapter(synth Synthesizer, rec Recognizer) *Adapter {
	return &Adapter{synth: synth, rec: rec}
}

// CanSpeak reports whether a synthesis driver is present.
func (a *Adapter) CanSpeak() bool {
	return a != nil && a.synth != nil
}

// CanRecognize reports whether a recognition driver is present.
func (a *Adapter) CanRecognize() bool {
	return a != nil && a.rec != nil
}

// Speak plays text. Driver failures are wrapped in ErrPlayback; a cancelled
// context is returned as the context error.
func (a *Adapter) Speak(ctx context.Context, text string) error {
	if !a.CanSpeak() {
		return ErrUnavailable
	}
	if err := a.synth.Speak(ctx, text); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrPlayback) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrPlayback, a.synth.Name(), err)
	}
	return nil
}

// RecognizeOnce captures a single utterance. Every failure is reported as a
// *RecognitionError; cancellation carries CodeAborted.
func (a *Adapter) RecognizeOnce(ctx context.Context) (string, error) {
	if !a.CanRecognize() {
		return "", ErrUnavailable
	}
	text, err := a.rec.RecognizeOnce(ctx)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", &RecognitionError{Code: CodeAborted, Err: ctx.Err()}
	}
	var re *RecognitionError
	if errors.As(err, &re) {
		return "", err
	}
	return "", &RecognitionError{Code: CodeAudioCapture, Err: err}
}
