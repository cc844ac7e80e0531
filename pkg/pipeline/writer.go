package pipeline

import (
	"os"
	"path/filepath"
	"sync"

	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
	"github.com/chanilino/romscrape/pkg/fsutil"
	"github.com/chanilino/romscrape/pkg/romlist"
)

// RowWriter owns the per-system romlist files and serializes appends across
// the lookup workers. A fresh file gets the romlist header before its first
// row.
type RowWriter struct {
	mu    sync.Mutex
	dir   string
	files map[string]*os.File
}

// NewRowWriter creates a writer that places romlist files under dir.
func NewRowWriter(dir string) *RowWriter {
	return &RowWriter{dir: dir, files: make(map[string]*os.File)}
}

// Append writes one row to the named per-system file.
func (w *RowWriter) Append(fileName string, row romlist.Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	file, err := w.open(fileName)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(row.Format() + "\n"); err != nil {
		return pkgerrors.Wrapf(err, "failed to append row to %s", fileName)
	}
	return nil
}

// open returns the cached handle for fileName, creating the file with its
// header on first use. Callers hold w.mu.
func (w *RowWriter) open(fileName string) (*os.File, error) {
	if file, ok := w.files[fileName]; ok {
		return file, nil
	}

	path := filepath.Join(w.dir, fileName)
	if err := fsutil.EnsureFileDir(path); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create romlist directory for %s", fileName)
	}

	info, statErr := os.Stat(path)
	needHeader := os.IsNotExist(statErr) || (statErr == nil && info.Size() == 0)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, fsutil.FileModeDefault)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open romlist %s", path)
	}
	if needHeader {
		if _, err := file.WriteString(romlist.Header + "\n"); err != nil {
			_ = file.Close()
			return nil, pkgerrors.Wrapf(err, "failed to write romlist header to %s", path)
		}
	}

	w.files[fileName] = file
	return file, nil
}

// Close flushes and closes every open romlist file.
func (w *RowWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	for name, file := range w.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = pkgerrors.Wrapf(err, "failed to close romlist %s", name)
		}
		delete(w.files, name)
	}
	return firstErr
}
