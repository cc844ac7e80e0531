// Package screenscraper talks to the ScreenScraper.fr lookup service: system
// catalog, per-user session limits and per-ROM game records keyed by content
// hash or, as a fallback, by filename.
package screenscraper

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/chanilino/romscrape/internal/logger"
	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
	"github.com/chanilino/romscrape/pkg/hashing"
	"github.com/chanilino/romscrape/pkg/resolve"
)

// DefaultBaseURL is the production endpoint of the lookup service.
const DefaultBaseURL = "https://www.screenscraper.fr/api/"

// Developer credentials identifying this software to the service. These are
// fixed per application; the user account credentials come from config.
const (
	devID       = "chanilino"
	devPassword = "rGU9nm4Pr39GVnC2"
	softName    = "romscrape-0.1"
)

// DefaultMaxThreads is the per-account thread allowance assumed when the
// user-info call fails or reports nothing.
const DefaultMaxThreads = 1

// Credentials identify the user session on the lookup service.
type Credentials struct {
	SSID       string
	SSPassword string
}

// Client issues requests against the lookup service. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
}

// New creates a lookup client. An empty baseURL selects the production
// endpoint.
func New(baseURL string, timeout time.Duration, creds Credentials) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		creds:      creds,
	}
}

// payloadBase builds the fixed query payload common to every call.
func (c *Client) payloadBase() url.Values {
	payload := url.Values{}
	payload.Set("devid", devID)
	payload.Set("devpassword", devPassword)
	payload.Set("softname", softName)
	payload.Set("ssid", c.creds.SSID)
	payload.Set("sspassword", c.creds.SSPassword)
	payload.Set("output", "json")
	return payload
}

// get issues a GET against endpoint with the given payload and returns the
// parsed response envelope.
func (c *Client) get(ctx context.Context, endpoint string, payload url.Values) (resolve.Node, error) {
	reqURL := c.baseURL + endpoint + "?" + payload.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return resolve.Node{}, pkgerrors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return resolve.Node{}, pkgerrors.Wrapf(pkgerrors.ErrRequestFailed, "%s: %v", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return resolve.Node{}, pkgerrors.Wrapf(pkgerrors.ErrRequestFailed,
			"%s: unexpected status code %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resolve.Node{}, pkgerrors.Wrapf(pkgerrors.ErrRequestFailed, "%s: reading body: %v", endpoint, err)
	}

	return parseEnvelope(endpoint, body)
}

// UserInfo returns the per-account concurrent thread allowance. Callers
// treat a failure as non-fatal and fall back to DefaultMaxThreads.
func (c *Client) UserInfo(ctx context.Context) (int, error) {
	node, err := c.get(ctx, "ssuserInfos.php", c.payloadBase())
	if err != nil {
		return DefaultMaxThreads, err
	}
	threads, ok := node.At("response", "ssuser", "maxthreads").Int()
	if !ok || threads < 1 {
		return DefaultMaxThreads, nil
	}
	return threads, nil
}

// Systems fetches the system catalog from the live service as an id to name
// mapping. An empty result is the caller's signal that nothing downstream
// can be resolved.
func (c *Client) Systems(ctx context.Context) (map[int]string, error) {
	node, err := c.get(ctx, "systemesListe.php", c.payloadBase())
	if err != nil {
		return nil, err
	}
	return systemsFromEnvelope(node)
}

// SystemsFromReader parses an offline snapshot of the systemesListe.php
// response body.
func SystemsFromReader(r io.Reader) (map[int]string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read systems snapshot")
	}
	node, err := parseEnvelope("systems snapshot", body)
	if err != nil {
		return nil, err
	}
	return systemsFromEnvelope(node)
}

func systemsFromEnvelope(node resolve.Node) (map[int]string, error) {
	list, ok := node.At("response", "systemes").List()
	if !ok {
		return nil, pkgerrors.Wrap(pkgerrors.ErrRequestFailed, "response has no systemes list")
	}

	systems := make(map[int]string, len(list))
	for _, entry := range list {
		system := resolve.Tree(entry)
		id, ok := system.At("id").Int()
		if !ok {
			continue
		}
		name, ok := system.At("noms", "nom_eu").Str()
		if !ok || name == "" {
			continue
		}
		systems[id] = name
	}
	return systems, nil
}

// LookupByHash looks a game up by its content fingerprint. Any failure,
// network, envelope or parse, degrades to ErrGameNotFound so a single bad
// ROM never stops the run.
func (c *Client) LookupByHash(ctx context.Context, triple hashing.Triple) (resolve.Node, error) {
	payload := c.payloadBase()
	payload.Set("crc", triple.CRC32)
	payload.Set("md5", triple.MD5)
	payload.Set("sha1", triple.SHA1)
	return c.lookup(ctx, payload, triple.SourcePath)
}

// LookupByFilename looks a game up by its ROM filename. systemID scopes the
// search to one system; zero or negative means no system filter.
func (c *Client) LookupByFilename(ctx context.Context, baseName string, systemID int) (resolve.Node, error) {
	payload := c.payloadBase()
	payload.Set("romnom", baseName)
	if systemID > 0 {
		payload.Set("systemeid", strconv.Itoa(systemID))
	}
	return c.lookup(ctx, payload, baseName)
}

func (c *Client) lookup(ctx context.Context, payload url.Values, subject string) (resolve.Node, error) {
	node, err := c.get(ctx, "jeuInfos.php", payload)
	if err != nil {
		logger.Debug("lookup request failed", logger.Fields{"subject": subject, "error": err.Error()})
		return resolve.Node{}, pkgerrors.Wrapf(pkgerrors.ErrGameNotFound, "%s", subject)
	}
	game := node.At("response", "jeu")
	if game.Absent() {
		return resolve.Node{}, pkgerrors.Wrapf(pkgerrors.ErrGameNotFound, "%s", subject)
	}
	return node.At("response"), nil
}
