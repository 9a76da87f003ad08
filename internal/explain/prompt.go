package explain

import (
	"encoding/json"
	"fmt"
	"strings"

	"codeberg.org/snonux/wordsmith/internal/vocab"
)

const systemPrompt = "You are a vocabulary tutor for English learners. Always answer with a single JSON object and nothing else."

func explainPrompt(word string) string {
	return fmt.Sprintf(`Explain the English word '%s' for a vocabulary learner.
Return a JSON object with three keys:
  "definition": a concise definition,
  "example": one clear example sentence using the word,
  "mnemonic": a short memory aid that helps remember the meaning.
For the word 'ephemeral' the output could be:
{
  "definition": "Lasting for a very short time.",
  "example": "The beauty of the cherry blossoms is ephemeral, enjoyed for only a few weeks each year.",
  "mnemonic": "Think of an 'e-fem-eral' e-mail that deletes itself after one read."
}`, word)
}

func regeneratePrompt(word, previousExample, previousMnemonic string) string {
	return fmt.Sprintf(`Give a different example sentence and a different mnemonic for the English word '%s'.
Do not reuse this example: %q
Do not reuse this mnemonic: %q
Return a JSON object with two keys: "example" and "mnemonic".`, word, previousExample, previousMnemonic)
}

func suggestPrompt(count int) string {
	return fmt.Sprintf(`Suggest %d useful, moderately advanced English words for a learner to add to their vocabulary.
Return a JSON object with one key "suggestions" holding an array of single words.`, count)
}

// stripFences removes markdown code fences models like to wrap JSON in.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func parseExplanation(op, text string) (vocab.Explanation, error) {
	var out vocab.Explanation
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return out, &vocab.ServiceError{Op: op, Err: fmt.Errorf("parse explanation JSON: %w", err)}
	}
	if vocab.IsBlank(out.Definition) {
		return out, &vocab.ServiceError{Op: op, Err: fmt.Errorf("explanation has no definition")}
	}
	return out, nil
}

func parseAlternative(op, text string) (vocab.Alternative, error) {
	var out vocab.Alternative
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return out, &vocab.ServiceError{Op: op, Err: fmt.Errorf("parse alternative JSON: %w", err)}
	}
	if vocab.IsBlank(out.Example) && vocab.IsBlank(out.Mnemonic) {
		return out, &vocab.ServiceError{Op: op, Err: fmt.Errorf("alternative is empty")}
	}
	return out, nil
}

func parseSuggestions(op, text string) ([]string, error) {
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return nil, &vocab.ServiceError{Op: op, Err: fmt.Errorf("parse suggestions JSON: %w", err)}
	}

	words := make([]string, 0, len(out.Suggestions))
	for _, s := range out.Suggestions {
		if s = strings.TrimSpace(s); s != "" {
			words = append(words, s)
		}
	}
	return words, nil
}
