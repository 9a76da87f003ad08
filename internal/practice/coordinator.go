package practice

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/speech"
)

var (
	// ErrBusy is returned when listen or record is called while a speech
	// operation is active. State is left unchanged.
	ErrBusy = errors.New("speech operation already active")
	// ErrClosed is returned by operations after Close.
	ErrClosed = errors.New("practice coordinator closed")
)

// Activity is the speech operation currently running.
type Activity int

const (
	Idle Activity = iota
	Speaking
	Recognizing
)

func (a Activity) String() string {
	switch a {
	case Speaking:
		return "speaking"
	case Recognizing:
		return "recognizing"
	default:
		return "idle"
	}
}

// Snapshot is a copy of the coordinator state.
type Snapshot struct {
	Target    string
	Activity  Activity
	Feedback  Feedback
	CanListen bool
	CanRecord bool
	Closed    bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithOnChange registers a callback that receives a snapshot after every
// state change. It is not called once Close has returned and must not call
// Close itself.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

// Coordinator drives pronunciation practice for a single target word. It
// holds the arena's speech handle until Close.
type Coordinator struct {
	target     string
	normTarget string
	handle     *speech.Handle
	logger     *slog.Logger
	onChange   func(Snapshot)

	notifyMu sync.Mutex // serializes onChange calls with Close

	mu       sync.Mutex
	activity Activity
	feedback Feedback
	closed   bool
}

// New checks the speech adapter out of arena for target. It fails with
// speech.ErrBusy while another coordinator holds the arena.
func New(arena *speech.Arena, target string, opts ...Option) (*Coordinator, error) {
	handle, err := arena.Acquire()
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		target:     target,
		normTarget: Normalize(target),
		handle:     handle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDefault(c.logger).With("component", "practice", "word", target)
	return c, nil
}

// Normalize trims and case-folds s for transcript comparison.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	idle := c.activity == Idle && !c.closed
	return Snapshot{
		Target:    c.target,
		Activity:  c.activity,
		Feedback:  c.feedback,
		CanListen: idle && c.handle.CanSpeak(),
		CanRecord: idle && c.handle.CanRecognize(),
		Closed:    c.closed,
	}
}

func (c *Coordinator) notify(s Snapshot) {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if !closed {
		c.onChange(s)
	}
}

// begin claims the operation slot. It returns false with a nil error when
// the attempt ended immediately with CapabilityUnavailable.
func (c *Coordinator) begin(a Activity, available bool, missing Capability) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if c.activity != Idle {
		c.mu.Unlock()
		return false, ErrBusy
	}

	if !available {
		c.feedback = unavailable(missing)
		s := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(s)
		return false, nil
	}

	c.activity = a
	c.feedback = Feedback{}
	s := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(s)
	return true, nil
}

// finish applies fb unless the coordinator was closed meanwhile.
func (c *Coordinator) finish(fb Feedback) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.activity = Idle
	c.feedback = fb
	s := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(s)
}

// Listen plays the target word and blocks until playback ends.
func (c *Coordinator) Listen(ctx context.Context) error {
	ok, err := c.begin(Speaking, c.handle.CanSpeak(), Synthesis)
	if !ok {
		return err
	}

	var fb Feedback
	if err := c.handle.Speak(ctx, c.target); err != nil {
		c.logger.Warn("playback failed", "error", err)
		fb = playbackFailed()
	}
	c.finish(fb)
	return nil
}

// Record captures one utterance and compares it with the target word.
func (c *Coordinator) Record(ctx context.Context) error {
	ok, err := c.begin(Recognizing, c.handle.CanRecognize(), Recognition)
	if !ok {
		return err
	}

	transcript, err := c.handle.RecognizeOnce(ctx)
	switch {
	case err != nil:
		code := speech.CodeAborted
		var re *speech.RecognitionError
		if errors.As(err, &re) {
			code = re.Code
		}
		c.logger.Warn("recognition failed", "code", code, "error", err)
		c.finish(recognitionFailed(code))
	case Normalize(transcript) == c.normTarget:
		c.finish(matched())
	default:
		c.logger.Debug("transcript mismatch", "transcript", transcript)
		c.finish(mismatched(transcript))
	}
	return nil
}

// Close stops any running speech operation, waits for it to unwind and
// releases the speech handle.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	// wait out a delivery that read closed before it was set
	c.notifyMu.Lock()
	c.notifyMu.Unlock()

	c.handle.Release()
}
