package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanilino/romscrape/pkg/catalog"
	"github.com/chanilino/romscrape/pkg/hashing"
)

// helloTriple holds the digests of the ASCII string "hello".
var helloTriple = hashing.Triple{
	CRC32: "3610a686",
	MD5:   "5d41402abc4b2a76b9719d911017c592",
	SHA1:  "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
}

func newCountingServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestEnsure_Downloads(t *testing.T) {
	server, hits := newCountingServer(t, http.StatusOK, "hello")
	dest := filepath.Join(t.TempDir(), "media", "screenshot", "Sonic.png")

	m := NewManager(time.Second, "test")
	status, err := m.Ensure(context.Background(), catalog.MediaAsset{
		Category:        "screenshot",
		URL:             server.URL,
		Expected:        helloTriple,
		DestinationPath: dest,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusDownloaded, status)
	assert.Equal(t, int32(1), hits.Load())

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	// No temp files left next to the destination.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEnsure_Idempotent(t *testing.T) {
	server, hits := newCountingServer(t, http.StatusOK, "hello")
	dest := filepath.Join(t.TempDir(), "Sonic.png")
	asset := catalog.MediaAsset{URL: server.URL, Expected: helloTriple, DestinationPath: dest}

	m := NewManager(time.Second, "test")

	status, err := m.Ensure(context.Background(), asset)
	require.NoError(t, err)
	assert.Equal(t, StatusDownloaded, status)

	// Second call finds matching digests and performs no transfer.
	status, err = m.Ensure(context.Background(), asset)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, status)
	assert.Equal(t, int32(1), hits.Load())

	ok, err := hashing.Verify(dest, helloTriple)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnsure_PartialDigestsSufficient(t *testing.T) {
	server, hits := newCountingServer(t, http.StatusOK, "hello")
	dest := filepath.Join(t.TempDir(), "Sonic.png")
	require.NoError(t, os.WriteFile(dest, []byte("hello"), 0o644))

	// Only a CRC is advertised; matching it alone is enough to skip.
	m := NewManager(time.Second, "test")
	status, err := m.Ensure(context.Background(), catalog.MediaAsset{
		URL:             server.URL,
		Expected:        hashing.Triple{CRC32: "3610a686"},
		DestinationPath: dest,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, status)
	assert.Equal(t, int32(0), hits.Load())
}

func TestEnsure_MismatchRedownloads(t *testing.T) {
	server, hits := newCountingServer(t, http.StatusOK, "hello")
	dest := filepath.Join(t.TempDir(), "Sonic.png")
	require.NoError(t, os.WriteFile(dest, []byte("stale bytes"), 0o644))

	m := NewManager(time.Second, "test")
	status, err := m.Ensure(context.Background(), catalog.MediaAsset{
		URL:             server.URL,
		Expected:        helloTriple,
		DestinationPath: dest,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusDownloaded, status)
	assert.Equal(t, int32(1), hits.Load())

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestEnsure_CorruptBodyRejected(t *testing.T) {
	server, hits := newCountingServer(t, http.StatusOK, "not hello at all")
	dest := filepath.Join(t.TempDir(), "Sonic.png")

	m := NewManager(time.Second, "test")
	status, err := m.Ensure(context.Background(), catalog.MediaAsset{
		URL:             server.URL,
		Expected:        helloTriple,
		DestinationPath: dest,
	})

	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, int32(1), hits.Load())

	// Neither the destination nor a temp file survives a bad body.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnsure_HTTPErrorLeavesDestinationUntouched(t *testing.T) {
	server, _ := newCountingServer(t, http.StatusNotFound, "")
	dest := filepath.Join(t.TempDir(), "Sonic.png")

	m := NewManager(time.Second, "test")
	status, err := m.Ensure(context.Background(), catalog.MediaAsset{
		URL:             server.URL,
		DestinationPath: dest,
	})

	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsure_NoDestination(t *testing.T) {
	m := NewManager(time.Second, "test")
	status, err := m.Ensure(context.Background(), catalog.MediaAsset{URL: "http://example.invalid"})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "downloaded", StatusDownloaded.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
