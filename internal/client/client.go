// Package client is the HTTP client for the bookshelf API, used by the
// CLI. It mirrors the server's JSON surface one method per route and
// translates the error envelope back into apperror values so callers
// can branch with errors.Is.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/model"
)

// Client talks to a bookshelf server.
//
// The base URL and http.Client are injectable for tests. Token is the
// session token attached to every request as a bearer header; leave it
// empty for anonymous calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a Client. Pass nil to get a default http.Client with a
// sane timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// WithToken returns a copy of the Client that authenticates with the
// given session token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// AuthResult is the server's response to register and login.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates an account and returns the issued token and profile.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/users", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me returns the caller's profile including saved books.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveBook saves a book draft and returns the updated profile.
func (c *Client) SaveBook(ctx context.Context, draft model.SavedBook) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPut, "/api/me/books", draft, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RemoveBook deletes a saved book and returns the updated profile.
func (c *Client) RemoveBook(ctx context.Context, bookID string) (*model.User, error) {
	var user model.User
	path := "/api/me/books/" + url.PathEscape(bookID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search runs a catalog search through the server.
func (c *Client) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	var results []model.SearchResult
	path := "/api/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// errorEnvelope mirrors the server's ErrorResponse.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends one JSON request and decodes the response into out. Non-2xx
// responses are decoded from the error envelope into apperror values.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("client: decoding response: %w", err)
		}
	}
	return nil
}

// decodeError turns the server's error envelope back into the matching
// apperror sentinel, so CLI code can errors.Is against the same
// taxonomy the server uses.
func decodeError(resp *http.Response) error {
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("client: server returned status %d", resp.StatusCode)
	}

	sentinel := map[string]error{
		"validation_error":    apperror.ErrValidation,
		"unauthenticated":     apperror.ErrUnauthenticated,
		"invalid_credentials": apperror.ErrInvalidCredentials,
		"not_found":           apperror.ErrNotFound,
		"conflict":            apperror.ErrConflict,
		"catalog_unavailable": apperror.ErrUnavailable,
	}[envelope.Error]
	if sentinel == nil {
		return fmt.Errorf("client: %s (status %d)", envelope.Message, resp.StatusCode)
	}

	return &apperror.AppError{Err: sentinel, Message: envelope.Message}
}
