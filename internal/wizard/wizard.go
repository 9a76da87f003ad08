package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/practice"
	"codeberg.org/snonux/wordsmith/internal/speech"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

var (
	// ErrBusy is returned when the same request is already in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrClosed is returned by every operation after Close or a save.
	ErrClosed = errors.New("workflow closed")
	// ErrInvalidState is returned when an operation does not apply to the
	// current step.
	ErrInvalidState = errors.New("operation not valid in current step")
)

// Fallback messages for failures without a server detail.
const (
	MsgExplainFailed    = "Could not explain the word."
	MsgRegenerateFailed = "Could not get a new example."
	MsgSaveFailed       = "Could not save the word."
)

// Step tags the workflow state.
type Step int

const (
	Input Step = iota
	Explained
)

func (s Step) String() string {
	if s == Explained {
		return "explained"
	}
	return "input"
}

// Explainer produces and regenerates explanation drafts.
type Explainer interface {
	Explain(ctx context.Context, word string) (vocab.Explanation, error)
	Regenerate(ctx context.Context, word, previousExample, previousMnemonic string) (vocab.Alternative, error)
}

// WordStore persists confirmed words.
type WordStore interface {
	CreateWord(ctx context.Context, text, definition string) (vocab.Word, error)
}

// Deps are the collaborators of a Workflow.
type Deps struct {
	Explainer Explainer
	Store     WordStore
	// Arena, when set, lends the speech adapter to a practice coordinator
	// for the explained word.
	Arena *speech.Arena
	// OnSaved is told about every persisted word.
	OnSaved func(vocab.Word)
	Logger  *slog.Logger
}

// Options tune a single Workflow.
type Options struct {
	// Seed is explained automatically by Start.
	Seed string
	// OnChange receives a snapshot after every state change.
	OnChange func(Snapshot)
}

// Snapshot is a copy of the workflow state.
type Snapshot struct {
	Step         Step
	Word         string             // Input: text field; Explained: the explained word
	Draft        *vocab.Explanation // nil in Input
	Loading      bool
	Regenerating bool
	Saving       bool
	Error        string
	Closed       bool
}

// CanSubmit reports whether Submit would start a request.
func (s Snapshot) CanSubmit() bool {
	return !s.Closed && s.Step == Input && !s.Loading && !vocab.IsBlank(s.Word)
}

// CanRegenerate reports whether Regenerate would start a request.
func (s Snapshot) CanRegenerate() bool {
	return !s.Closed && s.Step == Explained && !s.Regenerating
}

// CanConfirm reports whether Confirm would start a request.
func (s Snapshot) CanConfirm() bool {
	return !s.Closed && s.Step == Explained && !s.Saving
}

// explained is the data that exists only in the Explained step.
type explained struct {
	word  string
	draft vocab.Explanation
}

// Workflow is one run of the add-word flow.
type Workflow struct {
	deps   Deps
	opts   Options
	logger *slog.Logger

	mu           sync.Mutex
	input        string
	current      *explained // nil in Input
	loading      bool
	regenerating bool
	saving       bool
	errMsg       string
	closed       bool
	seeded       bool
	coach        *practice.Coordinator
}

// New creates a workflow in the Input step. A seed pre-populates the text
// field.
func New(deps Deps, opts Options) *Workflow {
	return &Workflow{
		deps:   deps,
		opts:   opts,
		logger: logging.OrDefault(deps.Logger).With("component", "wizard"),
		input:  opts.Seed,
	}
}

// Start explains the seed word, once. Without a seed it does nothing.
func (w *Workflow) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.seeded || vocab.IsBlank(w.opts.Seed) {
		w.mu.Unlock()
		return nil
	}
	w.seeded = true
	w.mu.Unlock()

	return w.Explain(ctx, w.opts.Seed)
}

// SetWord updates the Input text field.
func (w *Workflow) SetWord(text string) error {
	w.mu.Lock()
	if err := w.usableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.current != nil {
		w.mu.Unlock()
		return ErrInvalidState
	}
	w.input = text
	s := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(s)
	return nil
}

// Submit explains the text field. Blank input is ignored.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	word := w.input
	w.mu.Unlock()
	return w.Explain(ctx, word)
}

// Explain asks for an explanation of word and moves to Explained on
// success. Blank words are ignored. On failure the workflow stays in Input
// with an error message.
func (w *Workflow) Explain(ctx context.Context, word string) error {
	if vocab.IsBlank(word) {
		return nil
	}

	w.mu.Lock()
	if err := w.usableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.current != nil {
		w.mu.Unlock()
		return ErrInvalidState
	}
	if w.loading {
		w.mu.Unlock()
		return ErrBusy
	}
	w.loading = true
	w.errMsg = ""
	w.input = word
	s := w.snapshotLocked()
	w.mu.Unlock()
	w.notify(s)

	draft, err := w.deps.Explainer.Explain(ctx, word)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Debug("discarding explanation for closed workflow", "word", word)
		return nil
	}
	w.loading = false
	if err != nil {
		w.logger.Warn("explain failed", "word", word, "error", err)
		w.errMsg = vocab.Message(err, MsgExplainFailed)
	} else {
		w.current = &explained{word: word, draft: draft}
	}
	s = w.snapshotLocked()
	w.mu.Unlock()

	if err == nil {
		w.startPractice(word)
	}
	w.notify(s)
	return nil
}

// Regenerate replaces the draft's example and mnemonic. The definition is
// kept. On failure the draft is unchanged.
func (w *Workflow) Regenerate(ctx context.Context) error {
	w.mu.Lock()
	if err := w.usableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.current == nil {
		w.mu.Unlock()
		return ErrInvalidState
	}
	if w.regenerating {
		w.mu.Unlock()
		return ErrBusy
	}
	w.regenerating = true
	w.errMsg = ""
	cur := w.current
	word, prevExample, prevMnemonic := cur.word, cur.draft.Example, cur.draft.Mnemonic
	s := w.snapshotLocked()
	w.mu.Unlock()
	w.notify(s)

	alt, err := w.deps.Explainer.Regenerate(ctx, word, prevExample, prevMnemonic)

	w.mu.Lock()
	if w.closed || w.current != cur {
		w.mu.Unlock()
		return nil
	}
	w.regenerating = false
	if err != nil {
		w.logger.Warn("regenerate failed", "word", word, "error", err)
		w.errMsg = vocab.Message(err, MsgRegenerateFailed)
	} else {
		cur.draft = cur.draft.WithAlternative(alt)
	}
	s = w.snapshotLocked()
	w.mu.Unlock()

	w.notify(s)
	return nil
}

// Confirm saves the word with the draft's definition, tells OnSaved and
// closes the workflow. On failure it stays open in Explained.
func (w *Workflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	if err := w.usableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.current == nil {
		w.mu.Unlock()
		return ErrInvalidState
	}
	if w.saving {
		w.mu.Unlock()
		return ErrBusy
	}
	w.saving = true
	w.errMsg = ""
	word, definition := w.current.word, w.current.draft.Definition
	s := w.snapshotLocked()
	w.mu.Unlock()
	w.notify(s)

	saved, err := w.deps.Store.CreateWord(ctx, word, definition)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	if err != nil {
		w.saving = false
		w.logger.Warn("save failed", "word", word, "error", err)
		w.errMsg = vocab.Message(err, MsgSaveFailed)
		s = w.snapshotLocked()
		w.mu.Unlock()
		w.notify(s)
		return nil
	}
	// Closed before the lock is dropped so OnSaved sees a finished workflow.
	coach := w.closeLocked()
	s = w.snapshotLocked()
	w.mu.Unlock()

	w.logger.Info("word saved", "word", saved.Text, "word_id", saved.ID)
	if w.deps.OnSaved != nil {
		w.deps.OnSaved(saved)
	}
	w.teardown(coach, s)
	return nil
}

// Close discards the draft and stops practice. Results of calls still in
// flight are dropped. Close is idempotent.
func (w *Workflow) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	coach := w.closeLocked()
	s := w.snapshotLocked()
	w.mu.Unlock()

	w.teardown(coach, s)
}

// closeLocked marks the workflow closed and detaches the coordinator, which
// the caller must hand to teardown once the lock is released.
func (w *Workflow) closeLocked() *practice.Coordinator {
	w.closed = true
	w.current = nil
	w.loading, w.regenerating, w.saving = false, false, false
	coach := w.coach
	w.coach = nil
	return coach
}

func (w *Workflow) teardown(coach *practice.Coordinator, s Snapshot) {
	if coach != nil {
		coach.Close()
	}
	w.notify(s)
}

// Practice returns the pronunciation coordinator for the explained word,
// or nil when there is none.
func (w *Workflow) Practice() *practice.Coordinator {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.coach
}

// Snapshot returns the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() Snapshot {
	s := Snapshot{
		Step:         Input,
		Word:         w.input,
		Loading:      w.loading,
		Regenerating: w.regenerating,
		Saving:       w.saving,
		Error:        w.errMsg,
		Closed:       w.closed,
	}
	if w.current != nil {
		draft := w.current.draft
		s.Step = Explained
		s.Word = w.current.word
		s.Draft = &draft
	}
	return s
}

func (w *Workflow) usableLocked() error {
	if w.closed {
		return ErrClosed
	}
	return nil
}

func (w *Workflow) notify(s Snapshot) {
	if w.opts.OnChange != nil {
		w.opts.OnChange(s)
	}
}

// startPractice checks the speech adapter out for word. A busy or missing
// arena leaves the workflow without practice.
func (w *Workflow) startPractice(word string) {
	if w.deps.Arena == nil {
		return
	}
	coach, err := practice.New(w.deps.Arena, word, practice.WithLogger(w.deps.Logger))
	if err != nil {
		w.logger.Warn("pronunciation practice unavailable", "word", word, "error", err)
		return
	}

	w.mu.Lock()
	if w.closed || w.coach != nil {
		w.mu.Unlock()
		coach.Close()
		return
	}
	w.coach = coach
	w.mu.Unlock()
}
