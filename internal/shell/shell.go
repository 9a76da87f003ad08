package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/review"
	"codeberg.org/snonux/wordsmith/internal/speech"
	"codeberg.org/snonux/wordsmith/internal/suggest"
	"codeberg.org/snonux/wordsmith/internal/vocab"
	"codeberg.org/snonux/wordsmith/internal/wizard"
)

// WordList is the remote word store.
type WordList interface {
	wizard.WordStore
	ListWords(ctx context.Context) ([]vocab.Word, error)
}

// Hinter returns a pronunciation hint for a word.
type Hinter interface {
	Fetch(ctx context.Context, word string) (string, error)
}

// Deps are the services the shell drives.
type Deps struct {
	Scheduler review.Scheduler
	Explainer wizard.Explainer
	Words     WordList
	Suggester suggest.Suggester
	Arena     *speech.Arena // optional
	Hinter    Hinter        // optional
	Logger    *slog.Logger
}

// Shell is a line-oriented terminal UI.
type Shell struct {
	deps   Deps
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

// New creates a shell reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, deps Deps) *Shell {
	return &Shell{
		deps:   deps,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logging.OrDefault(deps.Logger).With("component", "shell"),
	}
}

// prompt prints label and reads one trimmed line. ok is false at end of
// input, which every loop treats as quit.
func (s *Shell) prompt(label string) (line string, ok bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// Words prints the saved word list.
func (s *Shell) Words(ctx context.Context) error {
	words, err := s.deps.Words.ListWords(ctx)
	if err != nil {
		s.logger.Warn("list words failed", "error", err)
		s.printf("%s\n", vocab.Message(err, "Could not load your words."))
		return nil
	}
	if len(words) == 0 {
		s.printf("No words saved yet. Add one with 'wordsmith add'.\n")
		return nil
	}

	s.printf("Your words (%d):\n", len(words))
	for _, w := range words {
		s.printf("  - %s: %s\n", w.Text, w.Definition)
	}
	return nil
}

// Suggest shows a batch of suggestions and offers to add one of them.
func (s *Shell) Suggest(ctx context.Context) error {
	feed := suggest.New(s.deps.Suggester, s.deps.Logger)

	for {
		s.printf("Fetching suggestions...\n")
		if err := feed.Load(ctx); err != nil {
			return err
		}
		snap := feed.Snapshot()
		if snap.Error != "" {
			s.printf("%s\n", snap.Error)
		}
		if len(snap.Words) == 0 {
			if snap.Error == "" {
				s.printf("No suggestions right now.\n")
			}
			return nil
		}

		for i, w := range snap.Words {
			s.printf("  %d) %s\n", i+1, w)
		}

		line, ok := s.prompt("Pick a number to add, [m]ore, or [q]uit: ")
		switch {
		case !ok, line == "", line == "q":
			return nil
		case line == "m":
			continue
		}

		var n int
		if _, err := fmt.Sscanf(line, "%d", &n); err != nil {
			s.printf("Unknown choice %q.\n", line)
			return nil
		}
		seed, err := feed.Select(n - 1)
		if err != nil {
			s.printf("No suggestion number %d.\n", n)
			return nil
		}
		return s.AddWord(ctx, seed)
	}
}

// Menu lets the user pick a flow until they quit.
func (s *Shell) Menu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n=== wordsmith ===\n")
		line, ok := s.prompt("[r]eview, [a]dd a word, [s]uggestions, [w]ords, [q]uit: ")
		var err error
		switch {
		case !ok, line == "q":
			return nil
		case line == "r":
			err = s.Review(ctx)
		case line == "a":
			err = s.AddWord(ctx, "")
		case line == "s":
			err = s.Suggest(ctx)
		case line == "w":
			err = s.Words(ctx)
		default:
			s.printf("Unknown command %q.\n", line)
		}
		if err != nil {
			return err
		}
	}
}
