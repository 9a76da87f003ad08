package vocab

import (
	"encoding/json"
	"strings"
)

// Word is a vocabulary entry owned by the remote word store.
type Word struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	Definition string `json:"definition"`
}

// Explanation is the AI-produced bundle for a word that has not been
// persisted yet. Only Definition survives confirmation.
type Explanation struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
	Mnemonic   string `json:"mnemonic"`
}

// WithAlternative returns a copy with example and mnemonic replaced by alt.
// The definition is kept.
func (e Explanation) WithAlternative(alt Alternative) Explanation {
	return Explanation{
		Definition: e.Definition,
		Example:    alt.Example,
		Mnemonic:   alt.Mnemonic,
	}
}

// Alternative is a regenerated example and mnemonic.
type Alternative struct {
	Example  string `json:"example"`
	Mnemonic string `json:"mnemonic"`
}

// Card is the item the scheduler currently designates as due. Meta carries
// whatever else the scheduler sent; it is passed through untouched.
type Card struct {
	ID         int64                      `json:"id"`
	Text       string                     `json:"text"`
	Definition string                     `json:"definition"`
	Meta       map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps unknown fields in Meta.
func (c *Card) UnmarshalJSON(data []byte) error {
	type plain Card
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "id")
	delete(all, "text")
	delete(all, "definition")
	if len(all) > 0 {
		p.Meta = all
	}

	*c = Card(p)
	return nil
}

// Outcome is the learner's self-assessment of a revealed card.
type Outcome int

const (
	Incorrect Outcome = iota
	Correct
)

func (o Outcome) String() string {
	if o == Correct {
		return "correct"
	}
	return "incorrect"
}

// IsBlank reports whether s has no non-space characters.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
