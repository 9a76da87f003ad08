package testutil

import (
	"context"
	"sync"
)

// Tracker counts speech operations that are running at the same time.
type Tracker struct {
	mu     sync.Mutex
	active int
	max    int
}

func (t *Tracker) enter() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active++
	if t.active > t.max {
		t.max = t.active
	}
}

func (t *Tracker) leave() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active--
}

// Max returns the highest number of overlapping operations seen.
func (t *Tracker) Max() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.max
}

// BlockingSynth blocks in Speak until Finish is called or the context ends.
type BlockingSynth struct {
	tracker *Tracker
	started chan string
	finish  chan error

	mu    sync.Mutex
	calls int
}

// NewBlockingSynth creates a blocking synthesizer. tracker may be nil.
func NewBlockingSynth(tracker *Tracker) *BlockingSynth {
	return &BlockingSynth{
		tracker: tracker,
		started: make(chan string, 16),
		finish:  make(chan error),
	}
}

func (b *BlockingSynth) Name() string { return "blocking-synth" }

func (b *BlockingSynth) Speak(ctx context.Context, text string) error {
	b.tracker.enter()
	defer b.tracker.leave()

	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	b.started <- text
	select {
	case err := <-b.finish:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Started delivers the text of each Speak call once it is running.
func (b *BlockingSynth) Started() <-chan string { return b.started }

// Finish ends the running Speak call with err.
func (b *BlockingSynth) Finish(err error) { b.finish <- err }

// Calls returns how often Speak was invoked.
func (b *BlockingSynth) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type recognition struct {
	text string
	err  error
}

// BlockingRecognizer blocks in RecognizeOnce until Finish is called or the
// context ends.
type BlockingRecognizer struct {
	tracker *Tracker
	started chan struct{}
	finish  chan recognition

	mu    sync.Mutex
	calls int
}

// NewBlockingRecognizer creates a blocking recognizer. tracker may be nil.
func NewBlockingRecognizer(tracker *Tracker) *BlockingRecognizer {
	return &BlockingRecognizer{
		tracker: tracker,
		started: make(chan struct{}, 16),
		finish:  make(chan recognition),
	}
}

func (b *BlockingRecognizer) Name() string { return "blocking-recognizer" }

func (b *BlockingRecognizer) RecognizeOnce(ctx context.Context) (string, error) {
	b.tracker.enter()
	defer b.tracker.leave()

	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	b.started <- struct{}{}
	select {
	case r := <-b.finish:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Started signals each RecognizeOnce call once it is running.
func (b *BlockingRecognizer) Started() <-chan struct{} { return b.started }

// Finish ends the running RecognizeOnce call.
func (b *BlockingRecognizer) Finish(text string, err error) {
	b.finish <- recognition{text: text, err: err}
}

// Calls returns how often RecognizeOnce was invoked.
func (b *BlockingRecognizer) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// StaticRecognizer returns a fixed transcript or error immediately.
type StaticRecognizer struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls int
}

func (s *StaticRecognizer) Name() string { return "static-recognizer" }

func (s *StaticRecognizer) RecognizeOnce(context.Context) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.Text, s.Err
}

// Calls returns how often RecognizeOnce was invoked.
func (s *StaticRecognizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StaticSynth returns Err immediately.
type StaticSynth struct {
	Err error

	mu     sync.Mutex
	spoken []string
}

func (s *StaticSynth) Name() string { return "static-synth" }

func (s *StaticSynth) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	return s.Err
}

// Spoken returns every text passed to Speak.
func (s *StaticSynth) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}
