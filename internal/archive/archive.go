package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// now is swapped in tests.
var now = time.Now

// Previous moves an existing file or directory at path into an "archive"
// directory next to it, tagged with a timestamp. It returns the new
// location, or "" when nothing existed at path.
func Previous(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	archiveDir := filepath.Join(filepath.Dir(path), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	t := now()
	target := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, t.Format("20060102-150405"), ext))
	if _, err := os.Stat(target); err == nil {
		// Same second: add microseconds to make it unique
		target = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, t.Format("20060102-150405.000000"), ext))
	}

	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return target, nil
}
