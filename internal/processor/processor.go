package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"codeberg.org/snonux/wordsmith/internal/batch"
	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/vocab"
	"codeberg.org/snonux/wordsmith/internal/wizard"
)

// Store is the remote word list.
type Store interface {
	wizard.WordStore
	ListWords(ctx context.Context) ([]vocab.Word, error)
}

// Summary counts the outcome of a batch.
type Summary struct {
	Total   int
	Saved   int
	Skipped int
	Failed  int
}

// Processor handles bulk word import
type Processor struct {
	explainer wizard.Explainer
	store     Store
	out       io.Writer
	logger    *slog.Logger
}

// NewProcessor creates a new importer. Progress lines go to out.
func NewProcessor(explainer wizard.Explainer, store Store, out io.Writer, logger *slog.Logger) *Processor {
	return &Processor{
		explainer: explainer,
		store:     store,
		out:       out,
		logger:    logging.OrDefault(logger).With("component", "processor"),
	}
}

// ProcessBatch imports entries one by one. A failing word is reported and
// the batch continues.
func (p *Processor) ProcessBatch(ctx context.Context, entries []batch.Entry) (Summary, error) {
	summary := Summary{Total: len(entries)}

	existing, err := p.existingWords(ctx)
	if err != nil {
		fmt.Fprintf(p.out, "Warning: could not load word list, duplicates will not be skipped: %v\n", err)
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Word)
		if existing[strings.ToLower(entry.Word)] {
			fmt.Fprintf(p.out, "  ✓ Skipping '%s' - already in your word list\n", entry.Word)
			summary.Skipped++
			continue
		}

		if _, err := p.ProcessWord(ctx, entry.Word, entry.Definition); err != nil {
			fmt.Fprintf(p.out, "  Error: %v\n", err)
			p.logger.Warn("import failed", "word", entry.Word, "line", entry.Line, "error", err)
			summary.Failed++
			continue
		}
		summary.Saved++
	}

	return summary, nil
}

func (p *Processor) existingWords(ctx context.Context) (map[string]bool, error) {
	words, err := p.store.ListWords(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w.Text)] = true
	}
	return set, nil
}

// ProcessWord saves one word. With a definition it is stored directly;
// otherwise it is explained first and saved with the explained definition.
func (p *Processor) ProcessWord(ctx context.Context, word, definition string) (vocab.Word, error) {
	if vocab.IsBlank(word) {
		return vocab.Word{}, fmt.Errorf("word cannot be empty")
	}

	if definition != "" {
		fmt.Fprintf(p.out, "  Using provided definition: %s\n", definition)
		saved, err := p.store.CreateWord(ctx, word, definition)
		if err != nil {
			return vocab.Word{}, errors.New(vocab.Message(err, wizard.MsgSaveFailed))
		}
		fmt.Fprintf(p.out, "  Saved\n")
		return saved, nil
	}

	var saved vocab.Word
	flow := wizard.New(wizard.Deps{
		Explainer: p.explainer,
		Store:     p.store,
		OnSaved:   func(w vocab.Word) { saved = w },
		Logger:    p.logger,
	}, wizard.Options{Seed: word})
	defer flow.Close()

	fmt.Fprintf(p.out, "  Explaining...\n")
	if err := flow.Start(ctx); err != nil {
		return vocab.Word{}, err
	}
	snap := flow.Snapshot()
	if snap.Step != wizard.Explained {
		return vocab.Word{}, errors.New(snap.Error)
	}
	fmt.Fprintf(p.out, "  Definition: %s\n", snap.Draft.Definition)
	if snap.Draft.Example != "" {
		fmt.Fprintf(p.out, "  Example: %s\n", snap.Draft.Example)
	}

	if err := flow.Confirm(ctx); err != nil {
		return vocab.Word{}, err
	}
	if snap = flow.Snapshot(); !snap.Closed {
		return vocab.Word{}, errors.New(snap.Error)
	}
	fmt.Fprintf(p.out, "  Saved\n")
	return saved, nil
}

// PrintSummary writes the batch summary the way the CLI shows it.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\n=== Import Summary ===\n")
	fmt.Fprintf(w, "Total words: %d\n", s.Total)
	fmt.Fprintf(w, "Saved: %d\n", s.Saved)
	fmt.Fprintf(w, "Skipped (already saved): %d\n", s.Skipped)
	if s.Failed > 0 {
		fmt.Fprintf(w, "Errors: %d\n", s.Failed)
	}
	fmt.Fprintf(w, "======================\n")
}
