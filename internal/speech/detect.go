package speech

import (
	"context"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/wordsmith/internal/config"
	"codeberg.org/snonux/wordsmith/internal/logging"
)

// Detect builds an Adapter from configuration and what is installed.
// Drivers that cannot be set up are left out, so the adapter reports the
// capability as absent instead of failing.
func Detect(cfg config.SpeechConfig, openAIKey string, logger *slog.Logger) *Adapter {
	logger = logging.OrDefault(logger).With("component", "speech")

	var client *openai.Client
	if openAIKey != "" {
		client = openai.NewClient(openAIKey)
	}

	synth := detectSynthesizer(cfg, client, logger)
	rec := detectRecognizer(cfg, client, logger)

	logger.Debug("speech capabilities detected",
		"synthesis", driverName(synth), "recognition", driverName(rec))
	return NewAdapter(synth, rec)
}

func detectSynthesizer(cfg config.SpeechConfig, client *openai.Client, logger *slog.Logger) Synthesizer {
	var cloud, local Synthesizer

	if cfg.Synthesis == "auto" || cfg.Synthesis == "openai" {
		if client == nil {
			logger.Info("OpenAI speech disabled: no API key")
		} else if player, err := DetectPlayer(); err != nil {
			logger.Info("OpenAI speech disabled", "error", err)
		} else {
			opts := DefaultOpenAIOptions()
			opts.Model = cfg.TTSModel
			opts.Voice = cfg.Voice
			cloud = NewOpenAISynthesizer(client, opts, player, logger)
		}
	}

	if cfg.Synthesis == "auto" || cfg.Synthesis == "espeak" {
		ec := DefaultESpeakConfig()
		if cfg.Language != "" {
			ec.Voice = cfg.Language
		}
		if es, err := NewESpeak(ec); err != nil {
			logger.Info("espeak-ng disabled", "error", err)
		} else {
			local = es
		}
	}

	switch {
	case cloud != nil && local != nil:
		return NewFallbackSynthesizer(cloud, local, logger)
	case cloud != nil:
		return cloud
	case local != nil:
		return local
	default:
		return nil
	}
}

func detectRecognizer(cfg config.SpeechConfig, client *openai.Client, logger *slog.Logger) Recognizer {
	if cfg.Recognition == "none" {
		return nil
	}
	if client == nil {
		logger.Info("speech recognition disabled: no OpenAI API key")
		return nil
	}
	recorder, err := DetectRecorder()
	if err != nil {
		logger.Info("speech recognition disabled", "error", err)
		return nil
	}
	return NewWhisperRecognizer(client, recorder, cfg.Language, cfg.RecordSeconds, logger)
}

// Renderer writes speech for text into an audio file.
type Renderer interface {
	Render(ctx context.Context, text, outputFile string) error
	Name() string
}

// DetectRenderer picks a driver that can write audio files and returns the
// file extension it should be given. OpenAI is preferred over espeak-ng.
func DetectRenderer(cfg config.SpeechConfig, openAIKey string, logger *slog.Logger) (Renderer, string, error) {
	logger = logging.OrDefault(logger).With("component", "speech")

	if openAIKey != "" && (cfg.Synthesis == "auto" || cfg.Synthesis == "openai") {
		opts := DefaultOpenAIOptions()
		opts.Model = cfg.TTSModel
		opts.Voice = cfg.Voice
		return NewOpenAISynthesizer(openai.NewClient(openAIKey), opts, nil, logger), "mp3", nil
	}

	if cfg.Synthesis == "auto" || cfg.Synthesis == "espeak" {
		ec := DefaultESpeakConfig()
		if cfg.Language != "" {
			ec.Voice = cfg.Language
		}
		es, err := NewESpeak(ec)
		if err == nil {
			return es, "wav", nil
		}
		logger.Info("espeak-ng disabled", "error", err)
	}

	return nil, "", ErrUnavailable
}

func driverName(d interface{ Name() string }) string {
	if d == nil {
		return "none"
	}
	return d.Name()
}
