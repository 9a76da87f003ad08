package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordsmith/internal/speech"
	"codeberg.org/snonux/wordsmith/internal/testutil"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

var serendipity = vocab.Explanation{
	Definition: "The occurrence of events by chance in a happy way.",
	Example:    "Finding the book was pure serendipity.",
	Mnemonic:   "Serene + dip: a calm dip into luck.",
}

func explainWith(exp vocab.Explanation, err error) func(context.Context, string) (vocab.Explanation, error) {
	return func(context.Context, string) (vocab.Explanation, error) { return exp, err }
}

func newWorkflow(svc *testutil.Services, opts Options) *Workflow {
	return New(Deps{Explainer: svc, Store: svc}, opts)
}

func TestConfirmPersistsExplainedDefinition(t *testing.T) {
	for _, word := range []string{"serendipity", "ad hoc", "naïve"} {
		t.Run(word, func(t *testing.T) {
			var gotText, gotDef string
			svc := &testutil.Services{
				ExplainFunc: explainWith(serendipity, nil),
				CreateWordFunc: func(_ context.Context, text, def string) (vocab.Word, error) {
					gotText, gotDef = text, def
					return vocab.Word{ID: 7, Text: text, Definition: def}, nil
				},
			}
			var saved []vocab.Word
			w := New(Deps{Explainer: svc, Store: svc, OnSaved: func(v vocab.Word) { saved = append(saved, v) }}, Options{})
			ctx := context.Background()

			require.NoError(t, w.SetWord(word))
			require.NoError(t, w.Submit(ctx))
			require.Equal(t, Explained, w.Snapshot().Step)
			require.NoError(t, w.Confirm(ctx))

			assert.Equal(t, word, gotText)
			assert.Equal(t, serendipity.Definition, gotDef)
			require.Len(t, saved, 1)
			assert.Equal(t, int64(7), saved[0].ID)

			snap := w.Snapshot()
			assert.True(t, snap.Closed)
			assert.Nil(t, snap.Draft)
		})
	}
}

func TestSubmitIgnoresBlankInput(t *testing.T) {
	svc := &testutil.Services{}
	w := newWorkflow(svc, Options{})

	for _, text := range []string{"", "   ", "\t\n"} {
		require.NoError(t, w.SetWord(text))
		require.NoError(t, w.Submit(context.Background()))
	}
	assert.Equal(t, 0, svc.Calls("explain"))
	assert.False(t, w.Snapshot().CanSubmit())
}

func TestExplainFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server detail", &vocab.ServiceError{Op: "explain", Status: 400, Detail: "word too short"}, "word too short"},
		{"no detail", &vocab.ServiceError{Op: "explain", Status: 500}, MsgExplainFailed},
		{"transport", errors.New("connection refused"), MsgExplainFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorkflow(&testutil.Services{ExplainFunc: explainWith(vocab.Explanation{}, tt.err)}, Options{})

			require.NoError(t, w.Explain(context.Background(), "ab"))
			snap := w.Snapshot()
			assert.Equal(t, Input, snap.Step)
			assert.Nil(t, snap.Draft)
			assert.Equal(t, tt.want, snap.Error)
			assert.False(t, snap.Loading)
			assert.Equal(t, "ab", snap.Word)
		})
	}
}

func TestSeedIsExplainedOnceOnStart(t *testing.T) {
	release := make(chan struct{})
	svc := &testutil.Services{
		ExplainFunc: func(context.Context, string) (vocab.Explanation, error) {
			<-release
			return serendipity, nil
		},
	}
	var snaps []Snapshot
	w := newWorkflow(svc, Options{Seed: "serendipity", OnChange: func(s Snapshot) { snaps = append(snaps, s) }})

	assert.Equal(t, "serendipity", w.Snapshot().Word, "seed pre-populates the field")

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()
	close(release)
	require.NoError(t, <-done)
	require.NoError(t, w.Start(context.Background()))

	assert.Equal(t, 1, svc.Calls("explain"))
	require.NotEmpty(t, snaps)
	assert.True(t, snaps[0].Loading)
	assert.Equal(t, "serendipity", snaps[0].Word)
	assert.Equal(t, Explained, w.Snapshot().Step)
}

func TestStartWithoutSeedDoesNothing(t *testing.T) {
	svc := &testutil.Services{}
	require.NoError(t, newWorkflow(svc, Options{}).Start(context.Background()))
	assert.Equal(t, 0, svc.Calls("explain"))
}

func TestRegenerateReplacesOnlyExampleAndMnemonic(t *testing.T) {
	var prev [3]string
	svc := &testutil.Services{
		ExplainFunc: explainWith(serendipity, nil),
		RegenerateFunc: func(_ context.Context, word, ex, mn string) (vocab.Alternative, error) {
			prev = [3]string{word, ex, mn}
			return vocab.Alternative{Example: "A new example.", Mnemonic: ""}, nil
		},
	}
	w := newWorkflow(svc, Options{})
	ctx := context.Background()

	require.NoError(t, w.Explain(ctx, "serendipity"))
	require.NoError(t, w.Regenerate(ctx))

	assert.Equal(t, [3]string{"serendipity", serendipity.Example, serendipity.Mnemonic}, prev)
	draft := w.Snapshot().Draft
	require.NotNil(t, draft)
	assert.Equal(t, serendipity.Definition, draft.Definition)
	assert.Equal(t, "A new example.", draft.Example)
	assert.Empty(t, draft.Mnemonic, "fields are replaced, not merged")
}

func TestRegenerateFailureKeepsDraft(t *testing.T) {
	svc := &testutil.Services{
		ExplainFunc: explainWith(serendipity, nil),
		RegenerateFunc: func(context.Context, string, string, string) (vocab.Alternative, error) {
			return vocab.Alternative{}, &vocab.ServiceError{Op: "regenerate", Status: 502}
		},
	}
	w := newWorkflow(svc, Options{})
	ctx := context.Background()

	require.NoError(t, w.Explain(ctx, "serendipity"))
	require.NoError(t, w.Regenerate(ctx))

	snap := w.Snapshot()
	assert.Equal(t, MsgRegenerateFailed, snap.Error)
	assert.Equal(t, serendipity, *snap.Draft)
	assert.True(t, snap.CanRegenerate())
}

func TestRegenerateDoesNotBlockConfirm(t *testing.T) {
	release := make(chan struct{})
	svc := &testutil.Services{
		ExplainFunc: explainWith(serendipity, nil),
		RegenerateFunc: func(context.Context, string, string, string) (vocab.Alternative, error) {
			<-release
			return vocab.Alternative{Example: "late", Mnemonic: "late"}, nil
		},
	}
	w := newWorkflow(svc, Options{})
	ctx := context.Background()
	require.NoError(t, w.Explain(ctx, "serendipity"))

	regenDone := make(chan error, 1)
	go func() { regenDone <- w.Regenerate(ctx) }()

	require.Eventually(t, func() bool { return w.Snapshot().Regenerating }, timeout, tick)
	snap := w.Snapshot()
	assert.True(t, snap.CanConfirm())
	assert.False(t, snap.CanRegenerate())
	assert.ErrorIs(t, w.Regenerate(ctx), ErrBusy)

	require.NoError(t, w.Confirm(ctx))
	close(release)
	require.NoError(t, <-regenDone)

	snap = w.Snapshot()
	assert.True(t, snap.Closed)
	assert.Nil(t, snap.Draft, "late regeneration must not resurrect the draft")
}

func TestConfirmFailureStaysOpen(t *testing.T) {
	svc := &testutil.Services{
		ExplainFunc: explainWith(serendipity, nil),
		CreateWordFunc: func(context.Context, string, string) (vocab.Word, error) {
			return vocab.Word{}, &vocab.ServiceError{Op: "create_word", Status: 409, Detail: "Word already exists"}
		},
	}
	saved := 0
	w := New(Deps{Explainer: svc, Store: svc, OnSaved: func(vocab.Word) { saved++ }}, Options{})
	ctx := context.Background()

	require.NoError(t, w.Explain(ctx, "serendipity"))
	require.NoError(t, w.Confirm(ctx))

	snap := w.Snapshot()
	assert.False(t, snap.Closed)
	assert.Equal(t, Explained, snap.Step)
	assert.Equal(t, "Word already exists", snap.Error)
	assert.True(t, snap.CanConfirm())
	assert.Equal(t, 0, saved)
}

func TestConfirmFromOnSavedDoesNotSaveTwice(t *testing.T) {
	svc := &testutil.Services{ExplainFunc: explainWith(serendipity, nil)}
	ctx := context.Background()
	var (
		w        *Workflow
		saved    int
		innerErr error
		inner    Snapshot
	)
	w = New(Deps{Explainer: svc, Store: svc, OnSaved: func(vocab.Word) {
		saved++
		inner = w.Snapshot()
		innerErr = w.Confirm(ctx)
	}}, Options{})

	require.NoError(t, w.Explain(ctx, "serendipity"))
	require.NoError(t, w.Confirm(ctx))

	assert.Equal(t, 1, svc.Calls("create_word"))
	assert.Equal(t, 1, saved)
	assert.ErrorIs(t, innerErr, ErrClosed)
	assert.True(t, inner.Closed)
	assert.False(t, inner.CanConfirm())
	assert.False(t, inner.CanRegenerate())
}

func TestCloseDiscardsLateExplanation(t *testing.T) {
	release := make(chan struct{})
	svc := &testutil.Services{
		ExplainFunc: func(context.Context, string) (vocab.Explanation, error) {
			<-release
			return serendipity, nil
		},
	}
	w := newWorkflow(svc, Options{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- w.Explain(ctx, "serendipity") }()
	require.Eventually(t, func() bool { return w.Snapshot().Loading }, timeout, tick)
	assert.ErrorIs(t, w.Explain(ctx, "serendipity"), ErrBusy)

	w.Close()
	close(release)
	require.NoError(t, <-done)

	snap := w.Snapshot()
	assert.True(t, snap.Closed)
	assert.Equal(t, Input, snap.Step)
	assert.Nil(t, snap.Draft)

	assert.ErrorIs(t, w.Submit(ctx), ErrClosed)
	assert.ErrorIs(t, w.Regenerate(ctx), ErrClosed)
	assert.ErrorIs(t, w.Confirm(ctx), ErrClosed)
	assert.ErrorIs(t, w.SetWord("x"), ErrClosed)
	w.Close()
}

func TestStepGuards(t *testing.T) {
	svc := &testutil.Services{ExplainFunc: explainWith(serendipity, nil)}
	w := newWorkflow(svc, Options{})
	ctx := context.Background()

	assert.ErrorIs(t, w.Regenerate(ctx), ErrInvalidState)
	assert.ErrorIs(t, w.Confirm(ctx), ErrInvalidState)
	assert.Equal(t, 0, svc.Calls("create_word"))

	require.NoError(t, w.Explain(ctx, "serendipity"))
	assert.ErrorIs(t, w.SetWord("other"), ErrInvalidState)
	assert.ErrorIs(t, w.Explain(ctx, "other"), ErrInvalidState)
}

func TestPracticeFollowsExplainedWord(t *testing.T) {
	arena := speech.NewArena(speech.NewAdapter(&testutil.StaticSynth{}, nil))
	svc := &testutil.Services{ExplainFunc: explainWith(serendipity, nil)}
	w := New(Deps{Explainer: svc, Store: svc, Arena: arena}, Options{})

	assert.Nil(t, w.Practice())
	require.NoError(t, w.Explain(context.Background(), "serendipity"))

	coach := w.Practice()
	require.NotNil(t, coach)
	assert.Equal(t, "serendipity", coach.Snapshot().Target)
	assert.True(t, arena.Held())

	w.Close()
	assert.Nil(t, w.Practice())
	assert.False(t, arena.Held())
	assert.True(t, coach.Snapshot().Closed)
}

func TestPracticeSkippedWhenArenaBusy(t *testing.T) {
	arena := speech.NewArena(nil)
	h, err := arena.Acquire()
	require.NoError(t, err)
	defer h.Release()

	svc := &testutil.Services{ExplainFunc: explainWith(serendipity, nil)}
	w := New(Deps{Explainer: svc, Store: svc, Arena: arena}, Options{})

	require.NoError(t, w.Explain(context.Background(), "serendipity"))
	assert.Equal(t, Explained, w.Snapshot().Step)
	assert.Nil(t, w.Practice())
}
