// Package remote implements history.RemoteClient over plain HTTP, the
// transport the teacher's internal/remote/http.Client already spoke —
// generalized here from a git-style smart-HTTP protocol down to a single
// POST/GET pair exchanging a whole encoded bundle (spec.md §4.9: "the
// bundle is the unit of exchange; transport itself is out of scope").
package remote

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meltosvc/tvc/internal/bundle"
	"github.com/meltosvc/tvc/internal/config"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

// DefaultTimeout bounds a single push or fetch round trip, mirroring the
// teacher's internal/remote/http.DefaultTimeout.
const DefaultTimeout = 60 * time.Second

const bundleContentType = "application/x-meltos-bundle"

// HTTPClient sends and receives bundles against one configured remote's
// URL, applying its configured auth token and extra headers the way the
// teacher's ConfigAuth/BasicAuth pair did for its git-style protocol.
type HTTPClient struct {
	URL        string
	Auth       string
	Headers    map[string]string
	HTTPClient *http.Client
}

// NewHTTPClient builds a client from a configured remote.
func NewHTTPClient(r config.Remote) *HTTPClient {
	return &HTTPClient{
		URL:     r.URL,
		Auth:    r.Auth,
		Headers: r.Headers,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

func (c *HTTPClient) applyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", bundleContentType)
	if c.Auth != "" {
		req.Header.Set("Authorization", "Bearer "+c.Auth)
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
}

// Send POSTs the encoded bundle to the remote's URL.
func (c *HTTPClient) Send(b *bundle.Bundle) error {
	encoded, err := b.Encode()
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.URL, bytes.NewReader(encoded))
	if err != nil {
		return tvcerr.Wrap("remote.Send", tvcerr.KindIO, err)
	}
	c.applyHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return tvcerr.Wrap("remote.Send", tvcerr.KindIO, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return tvcerr.Wrap("remote.Send", tvcerr.KindIO, fmt.Errorf("remote returned status %d", resp.StatusCode))
	}
	return nil
}

// Receive GETs the encoded bundle from the remote's URL.
func (c *HTTPClient) Receive() (*bundle.Bundle, error) {
	req, err := http.NewRequest(http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, tvcerr.Wrap("remote.Receive", tvcerr.KindIO, err)
	}
	c.applyHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, tvcerr.Wrap("remote.Receive", tvcerr.KindIO, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, tvcerr.Wrap("remote.Receive", tvcerr.KindIO, fmt.Errorf("remote returned status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tvcerr.Wrap("remote.Receive", tvcerr.KindIO, err)
	}
	return bundle.Decode(data)
}
