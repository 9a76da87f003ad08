package config

import "time"

// Config holds all application configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api" validate:"required"`
	AI     AIConfig     `mapstructure:"ai" validate:"required"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Speech SpeechConfig `mapstructure:"speech" validate:"required"`
	Log    LogConfig    `mapstructure:"log" validate:"required"`
	Export ExportConfig `mapstructure:"export"`
}

// APIConfig points at the remote word store, AI routes and review scheduler.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	Token           string        `mapstructure:"token"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	BreakerFailures uint32        `mapstructure:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout" validate:"gt=0"`
}

// AIConfig selects who answers explain, regenerate and suggest calls.
type AIConfig struct {
	Provider    string `mapstructure:"provider" validate:"required,oneof=backend openai gemini"`
	OpenAIModel string `mapstructure:"openai_model" validate:"required"`
	GeminiModel string `mapstructure:"gemini_model" validate:"required"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// SpeechConfig controls which platform drivers back the speech adapter.
type SpeechConfig struct {
	Synthesis     string `mapstructure:"synthesis" validate:"required,oneof=auto openai espeak none"`
	Recognition   string `mapstructure:"recognition" validate:"required,oneof=auto whisper none"`
	Voice         string `mapstructure:"voice" validate:"required"`
	TTSModel      string `mapstructure:"tts_model" validate:"required"`
	Language      string `mapstructure:"language" validate:"required"`
	RecordSeconds int    `mapstructure:"record_seconds" validate:"gte=1,lte=30"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

type ExportConfig struct {
	DeckName string `mapstructure:"deck_name"`
}
