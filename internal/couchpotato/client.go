package couchpotato

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of an error response is read for diagnostics.
const maxErrorBody = 64 << 10

// Fetcher performs a GET against a URL and decodes the JSON body into out.
type Fetcher interface {
	GetJSON(ctx context.Context, rawURL string, out any) error
}

// ClientConfig contains configuration for creating a new Client.
type ClientConfig struct {
	HTTPClient *http.Client // nil uses a client with transport defaults
	Logger     zerolog.Logger
}

// Client is the HTTP Fetcher used against CouchPotato. It never retries.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new CouchPotato HTTP client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient: httpClient,
		logger:     cfg.Logger.With().Str("component", "couchpotato-client").Logger(),
	}
}

// GetJSON implements Fetcher.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	safeURL := redactURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", safeURL, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", safeURL).Msg("executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = scrubURLError(err, safeURL)
		c.logger.Error().Err(err).Str("url", safeURL).Msg("request failed")
		return &UnreachableError{URL: safeURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := responseDetail(resp.Header.Get("Content-Type"), body)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("url", safeURL).
			Str("detail", detail).
			Msg("request returned error status")
		return &ResponseError{URL: safeURL, StatusCode: resp.StatusCode, Detail: detail}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response from %s: %v", ErrInvalidResponse, safeURL, err)
	}
	return nil
}

// scrubURLError rewrites transport errors so they do not leak the API key.
func scrubURLError(err error, safeURL string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: safeURL, Err: urlErr.Err}
	}
	return err
}

// responseDetail summarizes an error body. CouchPotato answers a bad API key
// with its HTML login page, so for HTML the page title is used.
func responseDetail(contentType string, body []byte) string {
	if strings.Contains(contentType, "html") || bytes.HasPrefix(bytes.TrimSpace(body), []byte("<")) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				return title
			}
			return truncate(strings.Join(strings.Fields(doc.Text()), " "), 200)
		}
	}
	return truncate(strings.TrimSpace(string(body)), 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
