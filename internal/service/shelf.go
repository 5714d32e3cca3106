package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/repository"
)

// ShelfService owns the saved-book list: the owner-scoped operations.
//
// Every method takes the caller's resolved claim and refuses a nil one
// with apperror.ErrUnauthenticated: the auth gate fails open, so this
// is the layer where anonymous callers actually get stopped.
type ShelfService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewShelfService creates a ShelfService.
func NewShelfService(users repository.UserRepository, logger *slog.Logger) *ShelfService {
	return &ShelfService{users: users, logger: logger}
}

// SaveBook appends a book draft to the caller's saved list and returns
// the updated user. Saving a bookId the caller already has is a no-op:
// the list comes back unchanged and no error is raised.
func (s *ShelfService) SaveBook(ctx context.Context, claim *model.Claim, draft model.SavedBook) (*model.User, error) {
	if claim == nil {
		return nil, apperror.Unauthenticated("saveBook")
	}

	draft.BookID = strings.TrimSpace(draft.BookID)
	if draft.BookID == "" {
		return nil, apperror.ValidationFailed("bookId", "bookId is required")
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}

	if err := s.users.AddBook(ctx, claim.ID, draft); err != nil {
		return nil, fmt.Errorf("service/shelf: saving book %s: %w", draft.BookID, err)
	}

	s.logger.Info("book saved",
		slog.String("userID", claim.ID),
		slog.String("bookID", draft.BookID),
	)

	return s.users.GetUserByID(ctx, claim.ID)
}

// RemoveBook deletes the entry matching bookID from the caller's list
// and returns the updated user. Removing an absent bookId is a no-op.
func (s *ShelfService) RemoveBook(ctx context.Context, claim *model.Claim, bookID string) (*model.User, error) {
	if claim == nil {
		return nil, apperror.Unauthenticated("removeBook")
	}

	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return nil, apperror.ValidationFailed("bookId", "bookId is required")
	}

	if err := s.users.RemoveBook(ctx, claim.ID, bookID); err != nil {
		return nil, fmt.Errorf("service/shelf: removing book %s: %w", bookID, err)
	}

	s.logger.Info("book removed",
		slog.String("userID", claim.ID),
		slog.String("bookID", bookID),
	)

	return s.users.GetUserByID(ctx, claim.ID)
}

// Profile returns the caller's full record, saved books in insertion
// order (least recently added first).
func (s *ShelfService) Profile(ctx context.Context, claim *model.Claim) (*model.User, error) {
	if claim == nil {
		return nil, apperror.Unauthenticated("me")
	}

	user, err := s.users.GetUserByID(ctx, claim.ID)
	if err != nil {
		return nil, fmt.Errorf("service/shelf: fetching profile %s: %w", claim.ID, err)
	}
	return user, nil
}
