package review

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

var (
	// ErrBusy is returned while a fetch or grade is still in flight.
	ErrBusy = errors.New("request already in flight")
	// ErrClosed is returned by operations after End.
	ErrClosed = errors.New("session ended")
	// ErrInvalidState is returned when an operation does not apply to the
	// current state.
	ErrInvalidState = errors.New("operation not valid in current state")
)

// User-facing messages.
const (
	MsgFetchFailed  = "Failed to fetch the next word. Please try again later."
	MsgSubmitFailed = "Could not submit review. Please try again."
)

// State of a session.
type State int

const (
	Loading State = iota
	Front
	Flipped
	Complete
	Failed
	Ended
)

func (s State) String() string {
	switch s {
	case Front:
		return "front"
	case Flipped:
		return "flipped"
	case Complete:
		return "complete"
	case Failed:
		return "error"
	case Ended:
		return "ended"
	default:
		return "loading"
	}
}

// Scheduler is the remote review service.
type Scheduler interface {
	NextDue(ctx context.Context) (vocab.Card, error)
	SubmitReview(ctx context.Context, cardID int64, outcome vocab.Outcome) error
}

// Stats are the counters of one session.
type Stats struct {
	Attempted int
	Correct   int
	// Unsynced counts grades the scheduler did not acknowledge.
	Unsynced int
}

// Accuracy is the rounded percentage of correct grades, 0 before the first grade.
func (s Stats) Accuracy() int {
	if s.Attempted == 0 {
		return 0
	}
	return int(math.Round(float64(s.Correct) / float64(s.Attempted) * 100))
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	SessionID string
	State     State
	Card      *vocab.Card // set in Front and Flipped
	Stats     Stats
	Error     string // why the session is in Failed
	Notice    string // last grade submission failure
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The session id is attached to it.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithOnChange registers a callback that receives a snapshot after every
// state change.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller is one review session.
type Controller struct {
	id       string
	sched    Scheduler
	logger   *slog.Logger
	onChange func(Snapshot)

	mu       sync.Mutex
	state    State
	card     *vocab.Card
	stats    Stats
	errMsg   string
	notice   string
	started  bool
	fetching bool
	grading  bool
	gen      uint64 // bumped by End so late results are dropped
}

// New creates a session in the Loading state. Nothing is fetched until Start.
func New(sched Scheduler, opts ...Option) *Controller {
	c := &Controller{
		id:    uuid.NewString(),
		sched: sched,
		state: Loading,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDefault(c.logger).With("component", "review", "session_id", c.id)
	return c
}

// ID returns the session id.
func (c *Controller) ID() string {
	return c.id
}

// Start fetches the first card. It may be called once.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Ended {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.started = true
	c.mu.Unlock()

	c.logger.Info("review session started")
	return c.FetchNext(ctx)
}

// FetchNext requests the next due card. It is valid while Loading with no
// request in flight, and in Failed.
func (c *Controller) FetchNext(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == Ended:
		c.mu.Unlock()
		return ErrClosed
	case c.fetching || c.grading:
		c.mu.Unlock()
		return ErrBusy
	case c.state != Loading && c.state != Failed:
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.started = true
	gen := c.beginFetchLocked()
	s := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(s)

	c.fetch(ctx, gen)
	return nil
}

// Retry fetches again after a failure.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if state == Ended {
		return ErrClosed
	}
	if state != Failed {
		return ErrInvalidState
	}
	return c.FetchNext(ctx)
}

func (c *Controller) beginFetchLocked() uint64 {
	c.fetching = true
	c.state = Loading
	c.card = nil
	c.errMsg = ""
	return c.gen
}

func (c *Controller) fetch(ctx context.Context, gen uint64) {
	card, err := c.sched.NextDue(ctx)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.logger.Debug("discarding fetch result for ended session")
		return
	}
	c.fetching = false
	switch {
	case errors.Is(err, vocab.ErrNoneDue):
		c.state = Complete
		c.logger.Info("review session complete",
			"attempted", c.stats.Attempted, "correct", c.stats.Correct, "unsynced", c.stats.Unsynced)
	case err != nil:
		c.state = Failed
		c.errMsg = MsgFetchFailed
		c.logger.Warn("fetch next card failed", "error", err)
	default:
		c.state = Front
		c.card = &card
		c.logger.Debug("presenting card", "card_id", card.ID)
	}
	s := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(s)
}

// Reveal flips the current card.
func (c *Controller) Reveal() error {
	c.mu.Lock()
	if c.state == Ended {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != Front {
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.state = Flipped
	s := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(s)
	return nil
}

// Grade submits outcome for the flipped card, counts it and fetches the
// next card whether or not the submission succeeded. A failed submission
// only sets Notice and increments Stats.Unsynced.
func (c *Controller) Grade(ctx context.Context, outcome vocab.Outcome) error {
	c.mu.Lock()
	if c.state == Ended {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.grading || c.fetching {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != Flipped || c.card == nil {
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.grading = true
	c.notice = ""
	cardID := c.card.ID
	gen := c.gen
	s := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(s)

	err := c.sched.SubmitReview(ctx, cardID, outcome)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return nil
	}
	c.grading = false
	c.stats.Attempted++
	if outcome == vocab.Correct {
		c.stats.Correct++
	}
	if err != nil {
		c.stats.Unsynced++
		c.notice = vocab.Message(err, MsgSubmitFailed)
		c.logger.Warn("submit review failed", "card_id", cardID, "outcome", outcome.String(), "error", err)
	}
	gen = c.beginFetchLocked()
	s = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(s)

	c.fetch(ctx, gen)
	return nil
}

// End terminates the session from any state, dropping the card and stats.
func (c *Controller) End() {
	c.mu.Lock()
	if c.state == Ended {
		c.mu.Unlock()
		return
	}
	c.logger.Info("review session ended",
		"attempted", c.stats.Attempted, "correct", c.stats.Correct)
	c.gen++
	c.state = Ended
	c.card = nil
	c.stats = Stats{}
	c.errMsg, c.notice = "", ""
	c.fetching, c.grading = false, false
	s := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(s)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID: c.id,
		State:     c.state,
		Stats:     c.stats,
		Error:     c.errMsg,
		Notice:    c.notice,
	}
	if c.card != nil {
		card := *c.card
		s.Card = &card
	}
	return s
}

func (c *Controller) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
