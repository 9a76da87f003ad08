package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return newLister(apiKey, openai.DefaultConfig(apiKey))
}

func newLister(apiKey string, cfg openai.ClientConfig) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Categories groups model IDs by use.
type Categories struct {
	Chat          []string
	Speech        []string
	Transcription []string
}

// Categorize sorts model IDs into categories. IDs that fit none are dropped.
func Categorize(ids []string) Categories {
	var c Categories
	for _, id := range ids {
		switch {
		case strings.Contains(id, "whisper") || strings.Contains(id, "transcribe"):
			c.Transcription = append(c.Transcription, id)
		case strings.Contains(id, "tts"):
			c.Speech = append(c.Speech, id)
		case strings.Contains(id, "gpt") && !strings.Contains(id, "audio") && !strings.Contains(id, "realtime"):
			c.Chat = append(c.Chat, id)
		}
	}
	sort.Strings(c.Chat)
	sort.Strings(c.Speech)
	sort.Strings(c.Transcription)
	return c
}

// ListAvailableModels prints the categorized models to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .wordsmith.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		ids = append(ids, m.ID)
	}
	c := Categorize(ids)

	fmt.Fprintln(w, "Available OpenAI Models:")
	printSection(w, "Chat Models (ai.openai_model)", c.Chat)
	printSection(w, "Text-to-Speech Models (speech.tts_model)", c.Speech)
	printSection(w, "Transcription Models (speech recognition)", c.Transcription)
	return nil
}

func printSection(w io.Writer, title string, ids []string) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(ids) == 0 {
		fmt.Fprintln(w, "  none found")
		return
	}
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
}
