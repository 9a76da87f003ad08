package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one line of a word-list file.
type Entry struct {
	Word string
	// Definition is set when the line supplies its own definition; such
	// entries are saved without asking the AI service.
	Definition string
	Line       int
}

// ReadFile reads entries from filename.
// Supported line formats:
//   - "serendipity"                     explained by the AI service
//   - "serendipity = a happy accident"  saved with the given definition
//   - "# comment" and blank lines are skipped
func ReadFile(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses entries from r.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := Entry{Word: line, Line: n}
		if word, def, ok := strings.Cut(line, "="); ok {
			entry.Word = strings.TrimSpace(word)
			entry.Definition = strings.TrimSpace(def)
		}
		if entry.Word == "" {
			continue
		}

		key := strings.ToLower(entry.Word)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan batch file: %w", err)
	}

	return entries, nil
}
