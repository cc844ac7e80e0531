package screenscraper

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/chanilino/romscrape/internal/logger"
	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
	"github.com/chanilino/romscrape/pkg/resolve"
)

// parseEnvelope decodes a service response body. The JSON payload starts at
// the first '{'; any preceding bytes are a service-level diagnostic message
// and are logged as a warning, not treated as an error. A header.success
// flag other than "true" fails the request.
func parseEnvelope(endpoint string, body []byte) (resolve.Node, error) {
	start := bytes.IndexByte(body, '{')
	if start < 0 {
		return resolve.Node{}, pkgerrors.Wrapf(pkgerrors.ErrRequestFailed,
			"%s: response contains no JSON payload", endpoint)
	}
	if start > 0 {
		diagnostic := strings.TrimSpace(string(body[:start]))
		if diagnostic != "" {
			logger.Warn("service diagnostic before payload",
				logger.Fields{"endpoint": endpoint, "message": diagnostic})
		}
	}

	var payload any
	if err := json.Unmarshal(body[start:], &payload); err != nil {
		return resolve.Node{}, pkgerrors.Wrapf(pkgerrors.ErrRequestFailed,
			"%s: malformed JSON payload: %v", endpoint, err)
	}

	node := resolve.Tree(payload)
	if success := node.At("header", "success").StrOr(""); success != "true" {
		return resolve.Node{}, pkgerrors.Wrapf(pkgerrors.ErrRequestFailed,
			"%s: request not successful (success=%q)", endpoint, success)
	}
	return node, nil
}
