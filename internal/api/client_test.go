package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, r http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig(srv.URL)
	cfg.Token = "test-token"
	cfg.Logger = logging.Discard()
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)
}

func TestExplain(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/ai/explain-word/", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "ephemeral", body["word_text"])
		writeJSON(w, http.StatusOK, map[string]string{
			"definition": "Lasting for a very short time.",
			"example":    "Fame is ephemeral.",
			"mnemonic":   "Ephemeral sounds like 'a femoral' bone that vanishes.",
		})
	})

	got, err := newTestClient(t, r).Explain(context.Background(), "ephemeral")
	require.NoError(t, err)
	assert.Equal(t, "Lasting for a very short time.", got.Definition)
	assert.Equal(t, "Fame is ephemeral.", got.Example)
}

func TestExplainErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"word too short"}`, "word too short"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","word_text"],"msg":"field required"}]}`, ""},
		{"no detail", http.StatusBadRequest, `{"error":"nope"}`, ""},
		{"html", http.StatusBadGateway, `<html>bad gateway</html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Post("/ai/explain-word/", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := newTestClient(t, r).Explain(context.Background(), "a")
			var se *vocab.ServiceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Status)
			assert.Equal(t, tt.wantDetail, se.Detail)
			assert.Equal(t, "explain", se.Op)
		})
	}
}

func TestRegenerateSendsPreviousValues(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/ai/regenerate-explanation/", func(w http.ResponseWriter, req *http.Request) {
		var body regenerateRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "ephemeral", body.WordText)
		assert.Equal(t, "old example", body.PreviousExample)
		assert.Equal(t, "old mnemonic", body.PreviousMnemonic)
		writeJSON(w, http.StatusOK, map[string]string{"example": "new example", "mnemonic": "new mnemonic"})
	})

	alt, err := newTestClient(t, r).Regenerate(context.Background(), "ephemeral", "old example", "old mnemonic")
	require.NoError(t, err)
	assert.Equal(t, vocab.Alternative{Example: "new example", Mnemonic: "new mnemonic"}, alt)
}

func TestWords(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/words/", func(w http.ResponseWriter, req *http.Request) {
		var body createWordRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		writeJSON(w, http.StatusCreated, vocab.Word{ID: 11, Text: body.Text, Definition: body.Definition})
	})
	r.Get("/words/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []vocab.Word{{ID: 1, Text: "auspicious", Definition: "favourable"}})
	})
	c := newTestClient(t, r)

	word, err := c.CreateWord(context.Background(), "ephemeral", "short-lived")
	require.NoError(t, err)
	assert.Equal(t, vocab.Word{ID: 11, Text: "ephemeral", Definition: "short-lived"}, word)

	words, err := c.ListWords(context.Background())
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "auspicious", words[0].Text)
}

func TestSuggest(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/ai/suggest-words/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"suggestions": {"ubiquitous", "laconic"}})
	})

	got, err := newTestClient(t, r).Suggest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ubiquitous", "laconic"}, got)
}

func TestNextDueAndExhaustion(t *testing.T) {
	var remaining int32 = 1
	r := chi.NewRouter()
	r.Get("/review/next/", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&remaining, -1) < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No more words due for review today."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 3, "text": "laconic", "definition": "using few words", "difficulty": 2})
	})
	c := newTestClient(t, r)

	card, err := c.NextDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), card.ID)
	assert.Contains(t, card.Meta, "difficulty")

	_, err = c.NextDue(context.Background())
	assert.ErrorIs(t, err, vocab.ErrNoneDue)
}

func TestSubmitReview(t *testing.T) {
	got := make(chan string, 1)
	r := chi.NewRouter()
	r.Post("/review/{wordID}", func(w http.ResponseWriter, req *http.Request) {
		var body reviewRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		got <- chi.URLParam(req, "wordID") + ":" + strconv.FormatBool(body.WasCorrect)
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 3})
	})

	require.NoError(t, newTestClient(t, r).SubmitReview(context.Background(), 3, vocab.Correct))
	assert.Equal(t, "3:true", <-got)
}

func TestBreakerOpensOnServerErrorsOnly(t *testing.T) {
	var hits int32
	r := chi.NewRouter()
	r.Get("/words/", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "db down"})
	})
	r.Get("/review/next/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "none"})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()
	c, err := NewClient(ClientConfig{
		BaseURL:         srv.URL,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
		Logger:          logging.Discard(),
	})
	require.NoError(t, err)
	ctx := context.Background()

	// Client errors never trip the breaker.
	for i := 0; i < 5; i++ {
		_, err := c.NextDue(ctx)
		require.ErrorIs(t, err, vocab.ErrNoneDue)
	}

	for i := 0; i < 2; i++ {
		_, err := c.ListWords(ctx)
		assert.Equal(t, "db down", vocab.Message(err, "generic"))
	}

	_, err = c.ListWords(ctx)
	var se *vocab.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "list_words", se.Op)
	assert.Equal(t, "generic", vocab.Message(err, "generic"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: url, Logger: logging.Discard()})
	require.NoError(t, err)

	_, err = c.NextDue(context.Background())
	var se *vocab.ServiceError
	require.ErrorAs(t, err, &se)
	assert.False(t, errors.Is(err, vocab.ErrNoneDue))
	assert.Zero(t, se.Status)
}

func TestCountsAsSuccess(t *testing.T) {
	assert.True(t, countsAsSuccess(nil))
	assert.True(t, countsAsSuccess(&vocab.ServiceError{Status: 404}))
	assert.True(t, countsAsSuccess(&vocab.ServiceError{Status: 422}))
	assert.False(t, countsAsSuccess(&vocab.ServiceError{Status: 503}))
	assert.False(t, countsAsSuccess(&vocab.ServiceError{Err: errors.New("dial")}))
}
