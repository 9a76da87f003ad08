package practice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordsmith/internal/speech"
	"codeberg.org/snonux/wordsmith/internal/testutil"
)

type snapshotLog struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (l *snapshotLog) add(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snaps = append(l.snaps, s)
}

func (l *snapshotLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.snaps)
}

func newCoordinator(t *testing.T, synth speech.Synthesizer, rec speech.Recognizer, target string, opts ...Option) *Coordinator {
	t.Helper()
	c, err := New(speech.NewArena(speech.NewAdapter(synth, rec)), target, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Serendipity", "serendipity"},
		{"  serendipity \n", "serendipity"},
		{"STRASSE", "strasse"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestRecordMatching(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       Feedback
		message    string
	}{
		{"case differs", "Serendipity", Feedback{Kind: Match}, "Correct! Great job!"},
		{"surrounding space", "  serendipity ", Feedback{Kind: Match}, "Correct! Great job!"},
		{"different word", "circuit", Feedback{Kind: Mismatch, Heard: "circuit"}, `We heard: "circuit". Try again!`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCoordinator(t, nil, &testutil.StaticRecognizer{Text: tt.transcript}, "serendipity")

			require.NoError(t, c.Record(context.Background()))
			snap := c.Snapshot()
			assert.Equal(t, tt.want, snap.Feedback)
			assert.Equal(t, tt.message, snap.Feedback.Message())
			assert.Equal(t, Idle, snap.Activity)
		})
	}
}

func TestRecordWithoutRecognition(t *testing.T) {
	synth := &testutil.StaticSynth{}
	c := newCoordinator(t, synth, nil, "serendipity")

	assert.False(t, c.Snapshot().CanRecord)
	require.NoError(t, c.Record(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, Feedback{Kind: CapabilityUnavailable, Capability: Recognition}, snap.Feedback)
	assert.Equal(t, Idle, snap.Activity)
	assert.Empty(t, synth.Spoken(), "adapter must not be used")
}

func TestListenWithoutSynthesis(t *testing.T) {
	rec := &testutil.StaticRecognizer{Text: "x"}
	c := newCoordinator(t, nil, rec, "serendipity")

	require.NoError(t, c.Listen(context.Background()))
	assert.Equal(t, Feedback{Kind: CapabilityUnavailable, Capability: Synthesis}, c.Snapshot().Feedback)
	assert.Equal(t, 0, rec.Calls())
}

func TestListenPlaybackError(t *testing.T) {
	synth := &testutil.StaticSynth{Err: errors.New("no device")}
	c := newCoordinator(t, synth, nil, "serendipity")

	require.NoError(t, c.Listen(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, PlaybackError, snap.Feedback.Kind)
	assert.Equal(t, "Sorry, couldn't play the audio.", snap.Feedback.Message())
	assert.True(t, snap.CanListen, "failed playback returns to idle")
	assert.Equal(t, []string{"serendipity"}, synth.Spoken())
}

func TestRecordRecognitionError(t *testing.T) {
	rec := &testutil.StaticRecognizer{Err: &speech.RecognitionError{Code: speech.CodeNoSpeech}}
	c := newCoordinator(t, nil, rec, "serendipity")

	require.NoError(t, c.Record(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, Feedback{Kind: RecognitionError, Code: speech.CodeNoSpeech}, snap.Feedback)
	assert.Equal(t, "Error in recognition: no-speech", snap.Feedback.Message())
	assert.Equal(t, Idle, snap.Activity)
}

func TestListenAndRecordAreMutuallyExclusive(t *testing.T) {
	tracker := &testutil.Tracker{}
	synth := testutil.NewBlockingSynth(tracker)
	rec := testutil.NewBlockingRecognizer(tracker)
	c := newCoordinator(t, synth, rec, "serendipity")
	ctx := context.Background()

	listenDone := make(chan error, 1)
	go func() { listenDone <- c.Listen(ctx) }()
	<-synth.Started()

	snap := c.Snapshot()
	assert.Equal(t, Speaking, snap.Activity)
	assert.False(t, snap.CanListen)
	assert.False(t, snap.CanRecord)
	assert.ErrorIs(t, c.Record(ctx), ErrBusy)
	assert.ErrorIs(t, c.Listen(ctx), ErrBusy)

	synth.Finish(nil)
	require.NoError(t, <-listenDone)

	recordDone := make(chan error, 1)
	go func() { recordDone <- c.Record(ctx) }()
	<-rec.Started()
	assert.ErrorIs(t, c.Listen(ctx), ErrBusy)

	rec.Finish("Serendipity", nil)
	require.NoError(t, <-recordDone)

	assert.Equal(t, Match, c.Snapshot().Feedback.Kind)
	assert.Equal(t, 1, synth.Calls())
	assert.Equal(t, 1, rec.Calls())
	assert.Equal(t, 1, tracker.Max())
}

func TestConcurrentCallsNeverOverlap(t *testing.T) {
	tracker := &testutil.Tracker{}
	synth := testutil.NewBlockingSynth(tracker)
	rec := testutil.NewBlockingRecognizer(tracker)
	c := newCoordinator(t, synth, rec, "word")
	ctx := context.Background()

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-synth.Started():
				synth.Finish(nil)
			case <-rec.Started():
				rec.Finish("word", nil)
			case <-stop:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = c.Listen(ctx)
			} else {
				_ = c.Record(ctx)
			}
		}(i)
	}
	wg.Wait()
	close(stop)

	assert.Equal(t, 1, tracker.Max())
	assert.Equal(t, Idle, c.Snapshot().Activity)
}

func TestNewAttemptReplacesFeedback(t *testing.T) {
	synth := testutil.NewBlockingSynth(nil)
	c := newCoordinator(t, synth, &testutil.StaticRecognizer{Text: "circuit"}, "serendipity")
	ctx := context.Background()

	require.NoError(t, c.Record(ctx))
	require.Equal(t, Mismatch, c.Snapshot().Feedback.Kind)

	done := make(chan error, 1)
	go func() { done <- c.Listen(ctx) }()
	<-synth.Started()
	assert.Equal(t, None, c.Snapshot().Feedback.Kind)

	synth.Finish(nil)
	require.NoError(t, <-done)
	assert.Equal(t, None, c.Snapshot().Feedback.Kind)
}

func TestCloseDuringRecognitionDiscardsResult(t *testing.T) {
	rec := testutil.NewBlockingRecognizer(nil)
	arena := speech.NewArena(speech.NewAdapter(nil, rec))
	log := &snapshotLog{}
	c, err := New(arena, "serendipity", WithOnChange(log.add))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.Record(context.Background()) }()
	<-rec.Started()
	delivered := log.len()

	c.Close()
	require.NoError(t, <-done)

	assert.Equal(t, delivered, log.len(), "no snapshot after teardown")
	snap := c.Snapshot()
	assert.True(t, snap.Closed)
	assert.Equal(t, None, snap.Feedback.Kind)
	assert.False(t, arena.Held())

	assert.ErrorIs(t, c.Record(context.Background()), ErrClosed)
	assert.ErrorIs(t, c.Listen(context.Background()), ErrClosed)
	c.Close()
}

func TestCloseDuringPlaybackCancelsIt(t *testing.T) {
	synth := testutil.NewBlockingSynth(nil)
	c := newCoordinator(t, synth, nil, "serendipity")

	done := make(chan error, 1)
	go func() { done <- c.Listen(context.Background()) }()
	<-synth.Started()

	c.Close()
	require.NoError(t, <-done)
	assert.Equal(t, None, c.Snapshot().Feedback.Kind)
}

func TestArenaAllowsOneCoordinator(t *testing.T) {
	arena := speech.NewArena(speech.NewAdapter(&testutil.StaticSynth{}, nil))

	first, err := New(arena, "alpha")
	require.NoError(t, err)

	_, err = New(arena, "beta")
	assert.ErrorIs(t, err, speech.ErrBusy)

	first.Close()
	second, err := New(arena, "beta")
	require.NoError(t, err)
	second.Close()
}
