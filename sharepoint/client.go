// Package sharepoint extracts the folder hierarchy of a digitisation
// project from a SharePoint document library over its REST API, producing
// the structure document the generation pipeline consumes.
package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the SharePoint REST API using cookie-based federated
// authentication.
type Client struct {
	httpClient *http.Client
	siteURL    string
	fedAuth    string
	rtFa       string
	maxRetries int
	backoff    func(attempt int) time.Duration
	logger     *slog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets the retry budget for rate-limited requests.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

// WithBackoff replaces the retry delay function.
func WithBackoff(f func(attempt int) time.Duration) ClientOption {
	return func(c *Client) { c.backoff = f }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the given site, authenticated with the
// FedAuth and rtFa cookies of an existing browser session.
func NewClient(siteURL, fedAuth, rtFa string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		siteURL:    strings.TrimSuffix(siteURL, "/"),
		fedAuth:    fedAuth,
		rtFa:       rtFa,
		maxRetries: 5,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SiteRelativeURL returns the server-relative part of the site URL.
func (c *Client) SiteRelativeURL() string {
	u, err := url.Parse(c.siteURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// get performs an authenticated GET, retrying on HTTP 429 with exponential
// backoff. Any other non-2xx status is an error.
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Cookie", fmt.Sprintf("FedAuth=%s; rtFa=%s", c.fedAuth, c.rtFa))
		req.Header.Set("Accept", "application/json;odata=verbose")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", requestURL, err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := c.backoff(attempt)
			c.logger.Warn("Rate limited, backing off",
				slog.String("url", requestURL),
				slog.Duration("wait", wait))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("request %s: unexpected status %s", requestURL, resp.Status)
		}
		if readErr != nil {
			return nil, fmt.Errorf("read response from %s: %w", requestURL, readErr)
		}
		return body, nil
	}
	return nil, fmt.Errorf("rate limited after %d retries for %s", c.maxRetries, requestURL)
}

// itemResult is one entry of an odata=verbose listing.
type itemResult struct {
	Name              string `json:"Name"`
	ServerRelativeURL string `json:"ServerRelativeUrl"`
}

type listResponse struct {
	D struct {
		Results []itemResult `json:"results"`
	} `json:"d"`
}

// FolderContents lists the subfolders and files of a server-relative folder.
func (c *Client) FolderContents(ctx context.Context, folderPath string) (folders, files []itemResult, err error) {
	apiURL := fmt.Sprintf("%s/_api/web/GetFolderByServerRelativeUrl('%s')", c.siteURL, folderPath)

	folders, err = c.list(ctx, apiURL+"/Folders")
	if err != nil {
		return nil, nil, err
	}
	files, err = c.list(ctx, apiURL+"/Files")
	if err != nil {
		return nil, nil, err
	}
	return folders, files, nil
}

func (c *Client) list(ctx context.Context, requestURL string) ([]itemResult, error) {
	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}
	var parsed listResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response from %s: %w", requestURL, err)
	}
	return parsed.D.Results, nil
}
