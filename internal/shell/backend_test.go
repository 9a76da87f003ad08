package shell

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordsmith/internal/api"
	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

// backend is an in-memory stand-in for the vocabulary server.
type backend struct {
	mu          sync.Mutex
	due         []vocab.Card
	words       []vocab.Word
	reviews     map[int64]bool
	suggestions []string
	failReview  bool
	failNext    int // number of next-card requests to fail
	explainDown bool
}

func newBackend() *backend {
	return &backend{reviews: make(map[int64]bool)}
}

func (b *backend) router() http.Handler {
	r := chi.NewRouter()

	r.Get("/review/next/", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failNext > 0 {
			b.failNext--
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
			return
		}
		if len(b.due) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No words due for review"})
			return
		}
		writeJSON(w, http.StatusOK, b.due[0])
	})

	r.Post("/review/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		var body struct {
			WasCorrect bool `json:"was_correct"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		// The card leaves the queue even when the grade is rejected, so
		// the session can move on.
		if len(b.due) > 0 && b.due[0].ID == id {
			b.due = b.due[1:]
		}
		if b.failReview {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "scheduler down"})
			return
		}
		b.reviews[id] = body.WasCorrect
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/ai/explain-word/", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		b.mu.Lock()
		down := b.explainDown
		b.mu.Unlock()
		if down {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Unknown word"})
			return
		}
		writeJSON(w, http.StatusOK, vocab.Explanation{
			Definition: "meaning of " + body["word_text"],
			Example:    "an example with " + body["word_text"],
			Mnemonic:   "remember " + body["word_text"],
		})
	})

	r.Post("/ai/regenerate-explanation/", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		writeJSON(w, http.StatusOK, vocab.Alternative{
			Example:  "another example with " + body["word_text"],
			Mnemonic: "another way to remember",
		})
	})

	r.Get("/ai/suggest-words/", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string][]string{"suggestions": b.suggestions})
	})

	r.Get("/words/", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.words)
	})

	r.Post("/words/", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Text       string `json:"text"`
			Definition string `json:"definition"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		word := vocab.Word{ID: int64(len(b.words) + 1), Text: body.Text, Definition: body.Definition}
		b.words = append(b.words, word)
		writeJSON(w, http.StatusCreated, word)
	})

	return r
}

func (b *backend) savedWords() []vocab.Word {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]vocab.Word(nil), b.words...)
}

func (b *backend) reviewed() map[int64]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[int64]bool, len(b.reviews))
	for id, ok := range b.reviews {
		out[id] = ok
	}
	return out
}

func (b *backend) setWords(words []vocab.Word) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.words = words
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, b *backend) *api.Client {
	t.Helper()
	srv := httptest.NewServer(b.router())
	t.Cleanup(srv.Close)

	cfg := api.DefaultClientConfig(srv.URL)
	cfg.Logger = logging.Discard()
	cfg.BreakerFailures = 100
	c, err := api.NewClient(cfg)
	require.NoError(t, err)
	return c
}
