package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"codeberg.org/snonux/wordsmith/internal/vocab"
)

type explainRequest struct {
	WordText string `json:"word_text"`
}

type regenerateRequest struct {
	WordText         string `json:"word_text"`
	PreviousExample  string `json:"previous_example"`
	PreviousMnemonic string `json:"previous_mnemonic"`
}

type createWordRequest struct {
	Text       string `json:"text"`
	Definition string `json:"definition"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

type reviewRequest struct {
	WasCorrect bool `json:"was_correct"`
}

// Explain asks the backend for a definition, example and mnemonic.
func (c *Client) Explain(ctx context.Context, word string) (vocab.Explanation, error) {
	var out vocab.Explanation
	err := c.do(ctx, "explain", http.MethodPost, "/ai/explain-word/", explainRequest{WordText: word}, &out)
	return out, err
}

// Regenerate asks for a fresh example and mnemonic, passing the previous
// ones so the service can avoid repeating them.
func (c *Client) Regenerate(ctx context.Context, word, previousExample, previousMnemonic string) (vocab.Alternative, error) {
	var out vocab.Alternative
	req := regenerateRequest{
		WordText:         word,
		PreviousExample:  previousExample,
		PreviousMnemonic: previousMnemonic,
	}
	err := c.do(ctx, "regenerate", http.MethodPost, "/ai/regenerate-explanation/", req, &out)
	return out, err
}

// CreateWord persists a confirmed word.
func (c *Client) CreateWord(ctx context.Context, text, definition string) (vocab.Word, error) {
	var out vocab.Word
	err := c.do(ctx, "create_word", http.MethodPost, "/words/", createWordRequest{Text: text, Definition: definition}, &out)
	return out, err
}

// ListWords returns the user's vocabulary.
func (c *Client) ListWords(ctx context.Context) ([]vocab.Word, error) {
	var out []vocab.Word
	err := c.do(ctx, "list_words", http.MethodGet, "/words/", nil, &out)
	return out, err
}

// Suggest returns candidate words to learn next.
func (c *Client) Suggest(ctx context.Context) ([]string, error) {
	var out suggestResponse
	if err := c.do(ctx, "suggest", http.MethodGet, "/ai/suggest-words/", nil, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// NextDue fetches the card the scheduler wants reviewed next. It returns
// vocab.ErrNoneDue when nothing is due.
func (c *Client) NextDue(ctx context.Context) (vocab.Card, error) {
	var out vocab.Card
	err := c.do(ctx, "next_due", http.MethodGet, "/review/next/", nil, &out)
	var se *vocab.ServiceError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return vocab.Card{}, vocab.ErrNoneDue
	}
	return out, err
}

// SubmitReview records the outcome for a card.
func (c *Client) SubmitReview(ctx context.Context, cardID int64, outcome vocab.Outcome) error {
	path := fmt.Sprintf("/review/%d", cardID)
	return c.do(ctx, "submit_review", http.MethodPost, path, reviewRequest{WasCorrect: outcome == vocab.Correct}, nil)
}
