// Package export handles client-side saving of server-generated
// spreadsheet exports.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Filename builds the export filename: <prefix>_data_<YYYY-MM-DD>.xlsx,
// dated at call time.
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_data_%s.xlsx", prefix, now.Format("2006-01-02"))
}

// Save writes an export blob under dir using the standard filename and
// returns the full path.
func Save(dir, prefix string, blob []byte, now time.Time) (string, error) {
	path := filepath.Join(dir, Filename(prefix, now))
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}
