package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chanilino/romscrape/pkg/errors"
)

// ListROMs returns the regular files directly under dir, sorted by name.
// Subdirectories are not descended into and hidden files are skipped.
func ListROMs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read ROM directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
