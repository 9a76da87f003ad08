package anki

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"codeberg.org/snonux/wordsmith/internal"
	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

// Card represents a single Anki flashcard
type Card struct {
	Word       string // Front side
	Definition string // Back side
	AudioFile  string // Optional path to pronunciation audio
	Notes      string // Optional notes, e.g. an IPA hint
}

// Renderer writes spoken audio for text into a file.
type Renderer interface {
	Render(ctx context.Context, text, outputFile string) error
}

// Annotator returns optional notes for a word.
type Annotator interface {
	Fetch(ctx context.Context, word string) (string, error)
}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputPath     string // Output CSV file path
	IncludeHeaders bool   // Include CSV headers
	AudioFormat    string // Audio file format (mp3, wav)
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "anki_import.csv",
		IncludeHeaders: true,
		AudioFormat:    "mp3",
	}
}

// Generator collects cards and writes them in Anki's formats.
type Generator struct {
	options *GeneratorOptions
	cards   []Card
	logger  *slog.Logger
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions, logger *slog.Logger) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		logger:  logging.OrDefault(logger).With("component", "anki"),
	}
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// AddWords adds one card per saved word. Words with a blank text are skipped.
func (g *Generator) AddWords(words []vocab.Word) {
	for _, w := range words {
		if vocab.IsBlank(w.Text) {
			continue
		}
		g.AddCard(Card{Word: w.Text, Definition: w.Definition})
	}
}

// Cards returns the collected cards.
func (g *Generator) Cards() []Card {
	return g.cards
}

// RenderAudio renders the pronunciation of every card without audio into
// dir. A failing word is logged and left without audio; the count of
// rendered files is returned.
func (g *Generator) RenderAudio(ctx context.Context, r Renderer, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create audio directory: %w", err)
	}

	rendered := 0
	for i := range g.cards {
		if err := ctx.Err(); err != nil {
			return rendered, err
		}
		card := &g.cards[i]
		if card.AudioFile != "" {
			continue
		}

		file := filepath.Join(dir, internal.MediaName(card.Word)+"."+g.options.AudioFormat)
		if err := r.Render(ctx, card.Word, file); err != nil {
			g.logger.Warn("audio rendering failed", "word", card.Word, "error", err)
			continue
		}
		card.AudioFile = file
		rendered++
	}
	return rendered, nil
}

// Annotate fills empty Notes using a. Failures leave the notes empty.
func (g *Generator) Annotate(ctx context.Context, a Annotator) {
	for i := range g.cards {
		if ctx.Err() != nil {
			return
		}
		card := &g.cards[i]
		if card.Notes != "" {
			continue
		}
		notes, err := a.Fetch(ctx, card.Word)
		if err != nil {
			g.logger.Debug("no notes for word", "word", card.Word, "error", err)
			continue
		}
		card.Notes = notes
	}
}

// GenerateCSV creates a CSV file for Anki import
func (g *Generator) GenerateCSV() error {
	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if g.options.IncludeHeaders {
		if err := writer.Write([]string{"Word", "Definition", "Audio", "Notes"}); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range g.cards {
		record := []string{
			card.Word,
			card.Definition,
			soundField(card.AudioFile),
			card.Notes,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// soundField formats an audio reference: [sound:filename.mp3]
func soundField(audioFile string) string {
	if audioFile == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", filepath.Base(audioFile))
}

// GenerateAPKG writes the collected cards as an .apkg deck.
func (g *Generator) GenerateAPKG(outputPath, deckName string) error {
	apkg := NewAPKGGenerator(deckName)
	for _, card := range g.cards {
		apkg.AddCard(card)
	}
	return apkg.GenerateAPKG(outputPath)
}

// Stats returns statistics about the card collection
func (g *Generator) Stats() (totalCards, withAudio int) {
	totalCards = len(g.cards)
	for _, card := range g.cards {
		if card.AudioFile != "" {
			withAudio++
		}
	}
	return
}
