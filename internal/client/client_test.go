package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/server"
)

// newTestStack boots the real server (in-memory database, stubbed
// catalog) behind httptest and returns a Client pointed at it. These
// are end-to-end tests: every request crosses the same router,
// middleware, and services production uses.
func newTestStack(t *testing.T) *Client {
	t.Helper()

	catalogStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"id":"B1","volumeInfo":{"title":"The Hobbit","authors":["J.R.R. Tolkien"],"description":"There and back again."}}]}`))
	}))
	t.Cleanup(catalogStub.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv, err := server.New(server.Config{
		DBPath:         ":memory:",
		JWTSecret:      "test-secret-at-least-16-chars!!",
		CatalogBaseURL: catalogStub.URL,
	}, logger)
	require.NoError(t, err)

	api := httptest.NewServer(srv.Handler())
	t.Cleanup(api.Close)

	return New(api.URL, api.Client())
}

func TestRegisterLoginFlow(t *testing.T) {
	c := newTestStack(t)
	ctx := context.Background()

	registered, err := c.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)

	loggedIn, err := c.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, loggedIn.Token)

	_, err = c.Login(ctx, "a@x.com", "wrongpw")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = c.Login(ctx, "nobody@x.com", "pw123")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = c.Register(ctx, "alice2", "a@x.com", "pw456")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestShelfFlow(t *testing.T) {
	c := newTestStack(t)
	ctx := context.Background()

	registered, err := c.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)
	authed := c.WithToken(registered.Token)

	// Anonymous access to owner-scoped routes is refused
	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	_, err = c.SaveBook(ctx, model.SavedBook{BookID: "B1", Title: "T"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	// Save and read back
	user, err := authed.SaveBook(ctx, model.SavedBook{
		BookID:  "B1",
		Title:   "The Hobbit",
		Authors: []string{"J.R.R. Tolkien"},
	})
	require.NoError(t, err)
	require.Len(t, user.SavedBooks, 1)

	profile, err := authed.Me(ctx)
	require.NoError(t, err)
	require.Len(t, profile.SavedBooks, 1)
	assert.Equal(t, "B1", profile.SavedBooks[0].BookID)

	// Another user does not see alice's books
	other, err := c.Register(ctx, "bob", "b@x.com", "pw123")
	require.NoError(t, err)
	bobProfile, err := c.WithToken(other.Token).Me(ctx)
	require.NoError(t, err)
	assert.Empty(t, bobProfile.SavedBooks)

	// Remove round-trips back to empty
	user, err = authed.RemoveBook(ctx, "B1")
	require.NoError(t, err)
	assert.Empty(t, user.SavedBooks)
}

func TestSearch(t *testing.T) {
	c := newTestStack(t)

	results, err := c.Search(context.Background(), "hobbit")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "B1", results[0].BookID)
	assert.Equal(t, "The Hobbit", results[0].Title)
}

func TestTamperedTokenActsAnonymous(t *testing.T) {
	c := newTestStack(t)
	ctx := context.Background()

	registered, err := c.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	tampered := registered.Token[:len(registered.Token)-2] + "xx"
	_, err = c.WithToken(tampered).Me(ctx)
	// The gate fails open to anonymous; the owner-scoped route then rejects
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}
