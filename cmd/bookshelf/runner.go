package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/bookcache"
	"github.com/sakif/bookshelf/internal/client"
	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/session"
)

// Runner holds the CLI's dependencies and implements every command
// action.
type Runner struct {
	api     *client.Client
	session *session.Store
	cache   *bookcache.Cache
	results string // path of the last-search results file
	logger  *log.Logger
}

// NewRunner wires a Runner from config.
func NewRunner(cfg *Config, logger *log.Logger) *Runner {
	return &Runner{
		api:     client.New(cfg.Server.URL, nil),
		session: session.NewStore(filepath.Join(cfg.State.Dir, "session.token")),
		cache:   bookcache.New(filepath.Join(cfg.State.Dir, "saved_books.json")),
		results: filepath.Join(cfg.State.Dir, "last_search.json"),
		logger:  logger,
	}
}

// authed returns an API client carrying the stored session token, or an
// error when no live session exists.
func (r *Runner) authed() (*client.Client, error) {
	if !r.session.LoggedIn() {
		return nil, errors.New("not logged in; run `bookshelf login` first")
	}
	return r.api.WithToken(r.session.Token()), nil
}

// syncCache reconciles the local save-state cache with the server's
// authoritative saved-book list.
func (r *Runner) syncCache(user *model.User) {
	ids := make(map[string]bool, len(user.SavedBooks))
	for _, b := range user.SavedBooks {
		ids[b.BookID] = true
	}
	if err := r.cache.SaveBookIDs(ids); err != nil {
		// A stale cache only costs redundant save attempts
		r.logger.Warn("could not update save-state cache", "error", err)
	}
}

// =========================================================================
// ACCOUNT COMMANDS
// =========================================================================

// Register creates an account and starts a session.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	result, err := r.api.Register(ctx,
		cmd.String("username"),
		cmd.String("email"),
		cmd.String("password"),
	)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return errors.New("that email is already registered")
		}
		return err
	}

	if err := r.session.Login(result.Token); err != nil {
		return err
	}
	r.logger.Info("registered and logged in", "username", result.User.Username)

	// A fresh account starts with an empty shelf; overwrite whatever a
	// previous session left in the cache.
	r.syncCache(result.User)
	return nil
}

// Login starts a session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	result, err := r.api.Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) || errors.Is(err, apperror.ErrNotFound) {
			return errors.New("login failed: check your email and password")
		}
		return err
	}

	if err := r.session.Login(result.Token); err != nil {
		return err
	}
	r.logger.Info("logged in", "username", result.User.Username)

	// Seed the cache from the server's list right away
	r.syncCache(result.User)
	return nil
}

// Logout clears the session and derived state.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.session.Logout(); err != nil {
		return err
	}
	if err := r.cache.SaveBookIDs(map[string]bool{}); err != nil {
		r.logger.Warn("could not clear save-state cache", "error", err)
	}
	os.Remove(r.results)
	r.logger.Info("logged out")
	return nil
}

// WhoAmI prints the identity decoded from the stored token.
func (r *Runner) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	if !r.session.LoggedIn() {
		fmt.Println("not logged in")
		return nil
	}
	claim := r.session.Identity()
	fmt.Printf("%s <%s>\n", claim.Username, claim.Email)
	return nil
}

// =========================================================================
// BOOK COMMANDS
// =========================================================================

// Search queries the catalog and remembers the results so `save` can
// refer to them by bookId.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return errors.New("a search query is required")
	}

	results, err := r.api.Search(ctx, query)
	if err != nil {
		if errors.Is(err, apperror.ErrUnavailable) {
			return errors.New("the book catalog is unavailable right now, try again later")
		}
		return err
	}

	if err := r.writeResults(results); err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	saved := r.cache.SavedBookIDs()
	for _, b := range results {
		marker := " "
		if saved[b.BookID] {
			marker = "*" // already on the shelf
		}
		fmt.Printf("%s %-14s %s by %s\n", marker, b.BookID, b.Title, strings.Join(b.Authors, ", "))
	}
	return nil
}

// Save saves a book from the last search results onto the shelf.
func (r *Runner) Save(ctx context.Context, cmd *cli.Command) error {
	bookID := cmd.StringArg("bookId")
	if bookID == "" {
		return errors.New("a bookId from the last search is required")
	}

	// The cache suppresses redundant saves; the server would treat a
	// duplicate as a no-op anyway.
	if r.cache.SavedBookIDs()[bookID] {
		fmt.Println("already saved")
		return nil
	}

	result, ok, err := r.lookupResult(bookID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bookId %s is not in the last search results; run `bookshelf search` first", bookID)
	}

	api, err := r.authed()
	if err != nil {
		return err
	}

	user, err := api.SaveBook(ctx, model.SavedBook{
		BookID:      result.BookID,
		Title:       result.Title,
		Authors:     result.Authors,
		Description: result.Description,
		Image:       result.Image,
		Link:        result.Link,
	})
	if err != nil {
		return err
	}

	r.syncCache(user)
	r.logger.Info("book saved", "bookId", bookID, "title", result.Title)
	return nil
}

// Remove deletes a book from the shelf.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	bookID := cmd.StringArg("bookId")
	if bookID == "" {
		return errors.New("a bookId is required")
	}

	api, err := r.authed()
	if err != nil {
		return err
	}

	user, err := api.RemoveBook(ctx, bookID)
	if err != nil {
		return err
	}

	r.syncCache(user)
	r.logger.Info("book removed", "bookId", bookID)
	return nil
}

// Shelf lists the saved books from the server and reconciles the cache.
func (r *Runner) Shelf(ctx context.Context, cmd *cli.Command) error {
	api, err := r.authed()
	if err != nil {
		return err
	}

	user, err := api.Me(ctx)
	if err != nil {
		return err
	}

	r.syncCache(user)

	if len(user.SavedBooks) == 0 {
		fmt.Println("your shelf is empty")
		return nil
	}
	for _, b := range user.SavedBooks {
		fmt.Printf("%-14s %s by %s\n", b.BookID, b.Title, strings.Join(b.Authors, ", "))
	}
	return nil
}

// =========================================================================
// LAST-SEARCH STATE
// =========================================================================

func (r *Runner) writeResults(results []model.SearchResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encoding search results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.results), 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(r.results, data, 0o600); err != nil {
		return fmt.Errorf("writing search results: %w", err)
	}
	return nil
}

func (r *Runner) lookupResult(bookID string) (model.SearchResult, bool, error) {
	data, err := os.ReadFile(r.results)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.SearchResult{}, false, nil
		}
		return model.SearchResult{}, false, fmt.Errorf("reading search results: %w", err)
	}

	var results []model.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return model.SearchResult{}, false, nil // stale or corrupt, treat as no results
	}
	for _, result := range results {
		if result.BookID == bookID {
			return result, true, nil
		}
	}
	return model.SearchResult{}, false, nil
}
