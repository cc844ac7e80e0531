// Package hashing computes the content fingerprint used to identify ROM
// files against the lookup service: CRC32, MD5 and SHA1 over a single
// streaming pass.
package hashing

import (
	"bufio"
	"crypto/md5"  //nolint:gosec // lookup key, not a security boundary
	"crypto/sha1" //nolint:gosec // lookup key, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"os"

	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
)

// readBufferSize bounds the per-file read buffer so large ROMs never get
// loaded into memory whole.
const readBufferSize = 64 * 1024

// Triple is the (CRC32, MD5, SHA1) fingerprint of a file's bytes. Digests
// are lower-case hex, zero-padded to the algorithm's natural width.
// Immutable after creation.
type Triple struct {
	CRC32      string
	MD5        string
	SHA1       string
	SourcePath string
}

// Compute reads the file at path exactly once in bounded chunks, feeding all
// three digest accumulators in parallel.
func Compute(path string) (Triple, error) {
	f, err := os.Open(path)
	if err != nil {
		return Triple{}, pkgerrors.Wrapf(err, "failed to open %s for hashing", path)
	}
	defer func() { _ = f.Close() }()

	return FromReader(bufio.NewReaderSize(f, readBufferSize), path)
}

// FromReader computes a Triple from an arbitrary byte stream. sourcePath is
// recorded verbatim on the result.
func FromReader(r io.Reader, sourcePath string) (Triple, error) {
	crcHash := crc32.NewIEEE()
	md5Hash := md5.New()   //nolint:gosec
	sha1Hash := sha1.New() //nolint:gosec

	w := io.MultiWriter(crcHash, md5Hash, sha1Hash)
	if _, err := io.Copy(w, r); err != nil {
		return Triple{}, pkgerrors.Wrapf(err, "failed to read %s for hashing", sourcePath)
	}

	return Triple{
		CRC32:      fmt.Sprintf("%08x", crcHash.Sum32()),
		MD5:        hex.EncodeToString(md5Hash.Sum(nil)),
		SHA1:       hex.EncodeToString(sha1Hash.Sum(nil)),
		SourcePath: sourcePath,
	}, nil
}

// Matches reports whether every digest present on expected equals the
// corresponding digest of t. Empty fields on expected are not compared.
func (t Triple) Matches(expected Triple) bool {
	if expected.CRC32 != "" && t.CRC32 != expected.CRC32 {
		return false
	}
	if expected.MD5 != "" && t.MD5 != expected.MD5 {
		return false
	}
	if expected.SHA1 != "" && t.SHA1 != expected.SHA1 {
		return false
	}
	return true
}

// Verify hashes the file at path and compares it against the digests present
// on expected. A missing file is reported as (false, nil); the caller treats
// it as "not present", not an error.
func Verify(path string, expected Triple) (bool, error) {
	computed, err := Compute(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return computed.Matches(expected), nil
}
