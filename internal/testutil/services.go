package testutil

import (
	"context"
	"sync"

	"codeberg.org/snonux/wordsmith/internal/vocab"
)

// Services is a configurable fake of the backend word store and AI routes.
// Nil funcs return zero values.
type Services struct {
	ExplainFunc    func(ctx context.Context, word string) (vocab.Explanation, error)
	RegenerateFunc func(ctx context.Context, word, prevExample, prevMnemonic string) (vocab.Alternative, error)
	CreateWordFunc func(ctx context.Context, text, definition string) (vocab.Word, error)
	ListWordsFunc  func(ctx context.Context) ([]vocab.Word, error)
	SuggestFunc    func(ctx context.Context) ([]string, error)

	mu    sync.Mutex
	calls map[string]int
}

func (s *Services) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
}

// Calls returns how often op was called.
func (s *Services) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Services) Explain(ctx context.Context, word string) (vocab.Explanation, error) {
	s.record("explain")
	if s.ExplainFunc == nil {
		return vocab.Explanation{}, nil
	}
	return s.ExplainFunc(ctx, word)
}

func (s *Services) Regenerate(ctx context.Context, word, prevExample, prevMnemonic string) (vocab.Alternative, error) {
	s.record("regenerate")
	if s.RegenerateFunc == nil {
		return vocab.Alternative{}, nil
	}
	return s.RegenerateFunc(ctx, word, prevExample, prevMnemonic)
}

func (s *Services) CreateWord(ctx context.Context, text, definition string) (vocab.Word, error) {
	s.record("create_word")
	if s.CreateWordFunc == nil {
		return vocab.Word{Text: text, Definition: definition}, nil
	}
	return s.CreateWordFunc(ctx, text, definition)
}

func (s *Services) ListWords(ctx context.Context) ([]vocab.Word, error) {
	s.record("list_words")
	if s.ListWordsFunc == nil {
		return nil, nil
	}
	return s.ListWordsFunc(ctx)
}

func (s *Services) Suggest(ctx context.Context) ([]string, error) {
	s.record("suggest")
	if s.SuggestFunc == nil {
		return nil, nil
	}
	return s.SuggestFunc(ctx)
}
