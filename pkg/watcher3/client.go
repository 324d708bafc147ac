package watcher3

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/moonbuggy/watcher3-api-adapter/pkg/config"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/logger"
)

// UpstreamError wraps every failure to reach or understand the Watcher3
// server. Handlers map it to a 502 response.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("watcher3 %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client talks to a single Watcher3 server. Safe for concurrent use; every
// call is a single attempt with no retries.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New builds a Client from the adapter configuration. The TLS setup honours
// an optional CA certificate path (pinning) and the verification flag.
func New(cfg *config.Config) (*Client, error) {
	tlsConfig := &tls.Config{}

	if cfg.Watcher3SSLCert != "" {
		pem, err := os.ReadFile(cfg.Watcher3SSLCert)
		if err != nil {
			return nil, fmt.Errorf("reading Watcher3 SSL certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.Watcher3SSLCert)
		}
		tlsConfig.RootCAs = pool
	} else if !cfg.Watcher3SSLVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     tlsConfig,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL: fmt.Sprintf("%s://%s:%d/api", cfg.Watcher3Scheme, cfg.Watcher3Host, cfg.Watcher3Port),
		apiKey:  cfg.Watcher3APIKey,
		http: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}, nil
}

// buildURL assembles a mode request against the Watcher3 api endpoint.
func (c *Client) buildURL(mode string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	params.Set("mode", mode)
	return c.baseURL + "?" + params.Encode()
}

// getJSON performs one GET for the given mode and decodes the response into
// out. Transport, status and decode failures all come back as *UpstreamError.
func (c *Client) getJSON(ctx context.Context, mode string, params url.Values, out interface{}) error {
	rawURL := c.buildURL(mode, params)
	logger.Debug("Fetching URL: %s", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &UpstreamError{Op: mode, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Op: mode, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return &UpstreamError{Op: mode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Op: mode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Op: mode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// idParams maps a movie identifier onto the query parameter Watcher3 expects:
// imdbid for tt-prefixed ids, tmdbid otherwise.
func idParams(movieID string) url.Values {
	params := url.Values{}
	if movieID == "" {
		return params
	}
	if strings.HasPrefix(movieID, "tt") {
		params.Set("imdbid", movieID)
	} else {
		params.Set("tmdbid", movieID)
	}
	return params
}

// GetConfig fetches the Watcher3 server configuration.
func (c *Client) GetConfig(ctx context.Context) (*ServerConfig, error) {
	var envelope configEnvelope
	if err := c.getJSON(ctx, "getconfig", nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Config == nil {
		return nil, &UpstreamError{Op: "getconfig", Err: errorFrom(envelope.Error)}
	}
	return envelope.Config, nil
}

// Version fetches the Watcher3 server version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var envelope struct {
		Response bool   `json:"response"`
		Error    string `json:"error"`
		Version  string `json:"version"`
	}
	if err := c.getJSON(ctx, "version", nil, &envelope); err != nil {
		return "", err
	}
	if envelope.Version == "" {
		return "", &UpstreamError{Op: "version", Err: errorFrom(envelope.Error)}
	}
	return envelope.Version, nil
}

// ListStatus fetches tracked movies. An empty movieID lists the whole
// library; otherwise the single matching movie (if any) is returned.
func (c *Client) ListStatus(ctx context.Context, movieID string) ([]Movie, error) {
	var envelope listStatusEnvelope
	if err := c.getJSON(ctx, "liststatus", idParams(movieID), &envelope); err != nil {
		return nil, err
	}
	if envelope.Movies == nil && envelope.Error != "" {
		return nil, &UpstreamError{Op: "liststatus", Err: errorFrom(envelope.Error)}
	}
	return envelope.Movies, nil
}

// MovieMetadata fetches extended TMDB metadata for one movie. A nil Metadata
// with nil error means Watcher3 holds no metadata for the id.
func (c *Client) MovieMetadata(ctx context.Context, imdbID string) (*Metadata, error) {
	params := url.Values{}
	params.Set("imdbid", imdbID)

	var envelope metadataEnvelope
	if err := c.getJSON(ctx, "movie_metadata", params, &envelope); err != nil {
		return nil, err
	}
	return envelope.TmdbData, nil
}

// AddMovie asks Watcher3 to track a movie. Rejections come back in the reply
// rather than as an error, the caller decides how to surface them.
func (c *Client) AddMovie(ctx context.Context, movieID string) (*StatusReply, error) {
	var reply StatusReply
	if err := c.getJSON(ctx, "addmovie", idParams(movieID), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// RemoveMovie asks Watcher3 to stop tracking a movie.
func (c *Client) RemoveMovie(ctx context.Context, movieID string) (*StatusReply, error) {
	var reply StatusReply
	if err := c.getJSON(ctx, "removemovie", idParams(movieID), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// SearchResults fetches Watcher3's indexer search results for an imdb id.
// The payload is passed through untranslated.
func (c *Client) SearchResults(ctx context.Context, imdbID string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("imdbid", imdbID)

	var raw json.RawMessage
	if err := c.getJSON(ctx, "search_results", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func errorFrom(message string) error {
	if message == "" {
		return fmt.Errorf("malformed response")
	}
	return fmt.Errorf("%s", message)
}
