package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// ESpeakConfig holds configuration for espeak-ng.
type ESpeakConfig struct {
	Voice     string // voice variant, e.g. "en", "en-us", "en+f3"
	Speed     int    // words per minute, 80 to 450
	Pitch     int    // 0 to 99
	Amplitude int    // 0 to 200
	WordGap   int    // gap between words in 10ms units
}

// DefaultESpeakConfig returns a slow, clear English voice.
func DefaultESpeakConfig() ESpeakConfig {
	return ESpeakConfig{
		Voice:     "en",
		Speed:     140,
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeak speaks through the local espeak-ng engine.
type ESpeak struct {
	config ESpeakConfig
}

// NewESpeak creates an espeak-ng synthesizer after checking the binary is installed.
func NewESpeak(config ESpeakConfig) (*ESpeak, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}
	return &ESpeak{config: clampESpeak(config)}, nil
}

func clampESpeak(c ESpeakConfig) ESpeakConfig {
	if c.Voice == "" {
		c.Voice = "en"
	}
	c.Speed = clamp(c.Speed, 80, 450)
	c.Pitch = clamp(c.Pitch, 0, 99)
	c.Amplitude = clamp(c.Amplitude, 0, 200)
	if c.WordGap < 0 {
		c.WordGap = 0
	}
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Name returns the driver name.
func (e *ESpeak) Name() string {
	return "espeak-ng"
}

// Speak plays text on the default audio device.
func (e *ESpeak) Speak(ctx context.Context, text string) error {
	text = cleanSpeechText(text)
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}
	return e.run(ctx, append(e.args(), text))
}

// Render writes text as a WAV file.
func (e *ESpeak) Render(ctx context.Context, text, outputFile string) error {
	text = cleanSpeechText(text)
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if dir := filepath.Dir(outputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return e.run(ctx, append(e.args(), "-w", outputFile, text))
}

func (e *ESpeak) args() []string {
	args := []string{
		"-v", e.config.Voice,
		"-s", strconv.Itoa(e.config.Speed),
		"-p", strconv.Itoa(e.config.Pitch),
		"-a", strconv.Itoa(e.config.Amplitude),
	}
	if e.config.WordGap > 0 {
		args = append(args, "-g", strconv.Itoa(e.config.WordGap))
	}
	return args
}

func (e *ESpeak) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "espeak-ng", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// checkESpeakInstalled verifies that espeak-ng is available on the system.
func checkESpeakInstalled() error {
	if _, err := lookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}
