package processor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"codeberg.org/snonux/wordsmith/internal/batch"
	"codeberg.org/snonux/wordsmith/internal/testutil"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

func newServices() *testutil.Services {
	return &testutil.Services{
		ExplainFunc: func(_ context.Context, word string) (vocab.Explanation, error) {
			if word == "broken" {
				return vocab.Explanation{}, &vocab.ServiceError{Op: "explain", Status: 422, Detail: "not an English word"}
			}
			return vocab.Explanation{Definition: "def of " + word, Example: "ex"}, nil
		},
		ListWordsFunc: func(context.Context) ([]vocab.Word, error) {
			return []vocab.Word{{ID: 1, Text: "Laconic"}}, nil
		},
	}
}

func TestProcessBatch(t *testing.T) {
	svc := newServices()
	var created []string
	svc.CreateWordFunc = func(_ context.Context, text, def string) (vocab.Word, error) {
		created = append(created, text+"|"+def)
		return vocab.Word{Text: text, Definition: def}, nil
	}
	var out bytes.Buffer
	p := NewProcessor(svc, svc, &out, nil)

	entries := []batch.Entry{
		{Word: "serendipity"},
		{Word: "laconic"},
		{Word: "ubiquitous", Definition: "found everywhere"},
		{Word: "broken"},
	}
	summary, err := p.ProcessBatch(context.Background(), entries)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	want := Summary{Total: 4, Saved: 2, Skipped: 1, Failed: 1}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}
	wantCreated := []string{"serendipity|def of serendipity", "ubiquitous|found everywhere"}
	if strings.Join(created, ",") != strings.Join(wantCreated, ",") {
		t.Errorf("created = %v, want %v", created, wantCreated)
	}
	if svc.Calls("explain") != 2 {
		t.Errorf("explain calls = %d, want 2", svc.Calls("explain"))
	}
	if !strings.Contains(out.String(), "not an English word") {
		t.Errorf("server detail missing from output:\n%s", out.String())
	}
}

func TestProcessBatchWithoutWordList(t *testing.T) {
	svc := newServices()
	svc.ListWordsFunc = func(context.Context) ([]vocab.Word, error) { return nil, errors.New("offline") }
	var out bytes.Buffer

	summary, err := NewProcessor(svc, svc, &out, nil).ProcessBatch(context.Background(), []batch.Entry{{Word: "laconic"}})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if summary.Saved != 1 || summary.Skipped != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if !strings.Contains(out.String(), "Warning") {
		t.Error("expected a warning about the word list")
	}
}

func TestProcessWordSaveFailure(t *testing.T) {
	svc := newServices()
	svc.CreateWordFunc = func(context.Context, string, string) (vocab.Word, error) {
		return vocab.Word{}, &vocab.ServiceError{Op: "create_word", Status: 500}
	}
	p := NewProcessor(svc, svc, &bytes.Buffer{}, nil)

	_, err := p.ProcessWord(context.Background(), "serendipity", "")
	if err == nil || err.Error() != "Could not save the word." {
		t.Errorf("ProcessWord() error = %v", err)
	}

	_, err = p.ProcessWord(context.Background(), "serendipity", "given")
	if err == nil || err.Error() != "Could not save the word." {
		t.Errorf("ProcessWord() with definition error = %v", err)
	}
}

func TestProcessWordEmpty(t *testing.T) {
	p := NewProcessor(newServices(), newServices(), &bytes.Buffer{}, nil)
	if _, err := p.ProcessWord(context.Background(), "  ", ""); err == nil {
		t.Error("Expected error for empty word")
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	PrintSummary(&out, Summary{Total: 3, Saved: 1, Skipped: 1, Failed: 1})
	for _, want := range []string{"Total words: 3", "Saved: 1", "Skipped (already saved): 1", "Errors: 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
