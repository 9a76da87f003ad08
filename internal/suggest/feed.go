package suggest

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

var (
	// ErrBusy is returned by Load while a request is in flight.
	ErrBusy = errors.New("suggestions already loading")
	// ErrNoSuchWord is returned by Select for an index outside the batch.
	ErrNoSuchWord = errors.New("no suggestion at that position")
)

// MsgLoadFailed is shown when suggestions cannot be fetched.
const MsgLoadFailed = "Could not fetch suggestions."

// Suggester returns a batch of candidate words.
type Suggester interface {
	Suggest(ctx context.Context) ([]string, error)
}

// Snapshot is a copy of the feed state.
type Snapshot struct {
	Loading bool
	Words   []string
	Error   string
}

// Feed holds the latest batch of suggestions.
type Feed struct {
	src    Suggester
	logger *slog.Logger

	mu      sync.Mutex
	loading bool
	words   []string
	errMsg  string
}

// New creates an empty feed.
func New(src Suggester, logger *slog.Logger) *Feed {
	return &Feed{
		src:    src,
		logger: logging.OrDefault(logger).With("component", "suggest"),
	}
}

// Load replaces the current batch. On failure the previous batch is kept.
func (f *Feed) Load(ctx context.Context) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return ErrBusy
	}
	f.loading = true
	f.errMsg = ""
	f.mu.Unlock()

	words, err := f.src.Suggest(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.logger.Warn("suggest failed", "error", err)
		f.errMsg = vocab.Message(err, MsgLoadFailed)
		return nil
	}

	f.words = f.words[:0]
	for _, w := range words {
		if !vocab.IsBlank(w) {
			f.words = append(f.words, w)
		}
	}
	return nil
}

// Select returns the i-th suggestion, to be used as a workflow seed.
func (f *Feed) Select(i int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.words) {
		return "", ErrNoSuchWord
	}
	return f.words[i], nil
}

// Snapshot returns the current state.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Loading: f.loading,
		Words:   append([]string(nil), f.words...),
		Error:   f.errMsg,
	}
}
