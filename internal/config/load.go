package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.breaker_failures", 5)
	v.SetDefault("api.breaker_timeout", 30*time.Second)

	v.SetDefault("ai.provider", "backend")
	v.SetDefault("ai.openai_model", "gpt-4o-mini")
	v.SetDefault("ai.gemini_model", "gemini-2.0-flash")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("gemini.api_key", "")

	v.SetDefault("speech.synthesis", "auto")
	v.SetDefault("speech.recognition", "auto")
	v.SetDefault("speech.voice", "alloy")
	v.SetDefault("speech.tts_model", "tts-1")
	v.SetDefault("speech.language", "en")
	v.SetDefault("speech.record_seconds", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("export.deck_name", "My Vocabulary")
}

// Load builds a validated Config from v. API keys found in the conventional
// environment variables take precedence over configured ones.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("viper instance cannot be nil")
	}
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			cfg.Gemini.APIKey = key
			break
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and the cross-field rules validator
// tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Namespace()), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch cfg.AI.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return errors.New("invalid configuration: ai.provider openai requires an OpenAI API key")
		}
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return errors.New("invalid configuration: ai.provider gemini requires a Gemini API key")
		}
	}
	return nil
}
