// Package catalog looks up books in the external catalog (the Google
// Books volumes API).
//
// The catalog is a black-box collaborator: a free-text query in, a list
// of title/author/description/cover results out. Results are transient;
// nothing is persisted until a user explicitly saves one.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/model"
)

// DefaultBaseURL is the public Google Books volumes endpoint.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// noAuthorPlaceholder stands in when the catalog returns a volume with
// no author list.
const noAuthorPlaceholder = "No author to display"

// Client queries the book catalog.
//
// The base URL and http.Client are injectable so tests can point at an
// httptest server. Outbound calls are rate-limited; the public API
// throttles unauthenticated callers, and queueing briefly on our side
// beats surfacing 429s to users.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a catalog Client. Pass "" and nil to get the public
// endpoint and a default http.Client with a sane timeout.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		logger:     logger,
	}
}

// volumesResponse mirrors the slice of the Google Books payload we
// consume. Everything else in the response is ignored.
type volumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title       string   `json:"title"`
			Authors     []string `json:"authors"`
			Description string   `json:"description"`
			InfoLink    string   `json:"infoLink"`
			ImageLinks  struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search runs a free-text query against the catalog.
//
// Any transport failure or non-200 status maps to
// apperror.ErrUnavailable; the caller can't do anything more granular
// with a broken collaborator, and the UI just needs a retryable error.
func (c *Client) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("catalog: waiting for rate limiter: %w", err)
	}

	u := fmt.Sprintf("%s/volumes?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed", slog.String("error", err.Error()))
		return nil, apperror.Unavailable("book catalog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("catalog returned non-200",
			slog.Int("status", resp.StatusCode),
			slog.String("query", query),
		)
		return nil, apperror.Unavailable("book catalog")
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("catalog returned unparsable body", slog.String("error", err.Error()))
		return nil, apperror.Unavailable("book catalog")
	}

	results := make([]model.SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		authors := item.VolumeInfo.Authors
		if len(authors) == 0 {
			authors = []string{noAuthorPlaceholder}
		}
		results = append(results, model.SearchResult{
			BookID:      item.ID,
			Title:       item.VolumeInfo.Title,
			Authors:     authors,
			Description: item.VolumeInfo.Description,
			Image:       item.VolumeInfo.ImageLinks.Thumbnail,
			Link:        item.VolumeInfo.InfoLink,
		})
	}

	return results, nil
}
