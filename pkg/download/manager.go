// Package download fetches media asset bytes to disk. Transfers are
// streamed, finalized atomically, and skipped entirely when the destination
// already matches the digests the lookup service advertised.
package download

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chanilino/romscrape/internal/logger"
	"github.com/chanilino/romscrape/pkg/catalog"
	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
	"github.com/chanilino/romscrape/pkg/fsutil"
	"github.com/chanilino/romscrape/pkg/hashing"
)

// Status is the outcome of an Ensure call.
type Status int

const (
	// StatusDownloaded means the asset bytes were transferred.
	StatusDownloaded Status = iota
	// StatusSkipped means a file matching the expected digests was
	// already present at the destination.
	StatusSkipped
	// StatusFailed means the transfer did not complete; the destination
	// is untouched.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Manager is an HTTP download manager with digest-based idempotency. Safe
// for concurrent use.
type Manager struct {
	client    *http.Client
	userAgent string
}

// NewManager creates a download manager with the given timeout and user agent.
func NewManager(timeout time.Duration, userAgent string) *Manager {
	if userAgent == "" {
		userAgent = "romscrape/1.0"
	}
	return &Manager{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Ensure makes the asset's bytes present at its destination path. If a file
// already there matches every digest the asset carries, no transfer happens.
// Any failure leaves the destination untouched.
func (m *Manager) Ensure(ctx context.Context, asset catalog.MediaAsset) (Status, error) {
	if asset.DestinationPath == "" {
		return StatusFailed, pkgerrors.Wrap(pkgerrors.ErrInvalidPath, "asset has no destination path")
	}

	// A FileNotFound here means "not present", never an error.
	if ok, err := hashing.Verify(asset.DestinationPath, asset.Expected); err != nil {
		return StatusFailed, pkgerrors.Wrapf(err, "failed to check existing file %s", asset.DestinationPath)
	} else if ok {
		logger.Debug("destination already matches expected digests",
			logger.Fields{"path": asset.DestinationPath})
		return StatusSkipped, nil
	}

	if err := m.fetch(ctx, asset); err != nil {
		return StatusFailed, err
	}
	return StatusDownloaded, nil
}

func (m *Manager) fetch(ctx context.Context, asset catalog.MediaAsset) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, http.NoBody)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return pkgerrors.Wrapf(pkgerrors.ErrDownloadFailed, "%s: %v", asset.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.Wrapf(pkgerrors.ErrDownloadFailed,
			"%s: unexpected status code %d", asset.URL, resp.StatusCode)
	}

	tmpPath, err := m.writeBodyToTemp(resp.Body, asset.DestinationPath)
	if err != nil {
		return err
	}

	if err := m.verifyDownload(tmpPath, asset); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := fsutil.Move(tmpPath, asset.DestinationPath); err != nil {
		_ = os.Remove(tmpPath)
		return pkgerrors.Wrap(err, "could not finalize file")
	}
	return nil
}

// verifyDownload checks the fetched bytes against the digests the asset
// carries before they replace the destination. An asset without digests is
// accepted as-is.
func (m *Manager) verifyDownload(tmpPath string, asset catalog.MediaAsset) error {
	if asset.Expected.CRC32 == "" && asset.Expected.MD5 == "" && asset.Expected.SHA1 == "" {
		return nil
	}
	triple, err := hashing.Compute(tmpPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to hash downloaded file for %s", asset.URL)
	}
	if !triple.Matches(asset.Expected) {
		return pkgerrors.Wrapf(pkgerrors.ErrFileHashMismatch,
			"%s does not match its advertised digests", asset.URL)
	}
	return nil
}

// writeBodyToTemp streams the response body to a temp file next to the
// destination so large video assets never get buffered in memory.
func (m *Manager) writeBodyToTemp(body io.Reader, destPath string) (string, error) {
	if err := fsutil.EnsureFileDir(destPath); err != nil {
		return "", pkgerrors.Wrap(err, "could not create destination directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "dl-*.tmp")
	if err != nil {
		return "", pkgerrors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not write file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not close file")
	}
	return tmpPath, nil
}
