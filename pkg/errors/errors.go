// Package errors defines the sentinel error values shared across the
// romscrape packages plus small helpers for wrapping errors with context.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath  = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse      = fmt.Errorf("failed to parse config")
	ErrConfigValidation = fmt.Errorf("invalid configuration")
	ErrConfigEncode     = fmt.Errorf("failed to encode config")
	ErrConfigExists     = fmt.Errorf("configuration file already exists (use --force to overwrite)")

	// Lookup service errors.
	ErrRequestFailed    = fmt.Errorf("lookup request failed")
	ErrGameNotFound     = fmt.Errorf("game not found")
	ErrEmptyCatalog     = fmt.Errorf("system catalog is empty")
	ErrMalformedRecord  = fmt.Errorf("malformed game record")
	ErrMissingMediaType = fmt.Errorf("media URL has no mediaformat parameter")

	// Template errors.
	ErrUnknownPlaceholder = fmt.Errorf("unknown template placeholder")

	// Download errors.
	ErrDownloadFailed   = fmt.Errorf("download failed")
	ErrFileHashMismatch = fmt.Errorf("file hash mismatch")
	ErrInvalidPath      = fmt.Errorf("invalid path")

	// Romlist errors.
	ErrRomlistParse = fmt.Errorf("failed to parse romlist")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
