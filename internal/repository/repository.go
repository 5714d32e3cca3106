// Package repository defines the persistence interfaces consumed by the
// service layer. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/bookshelf/internal/model"
)

// UserRepository persists user accounts and their saved-book lists.
//
// SavedBook entries are unique per (user, bookId); AddBook is an
// idempotent insert and RemoveBook a no-op when the id is absent, so
// the service layer never has to pre-check membership.
type UserRepository interface {
	// CreateUser inserts a new account. Returns apperror.ErrConflict if
	// the email is already registered. Fills in ID and timestamps.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByID returns the full user record including SavedBooks in
	// insertion order. Returns apperror.ErrNotFound if no such user.
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// GetUserByEmail is GetUserByID keyed by email; used by login.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// AddBook appends a book to the user's list. Saving a bookId the
	// user already has is a no-op.
	AddBook(ctx context.Context, userID string, book model.SavedBook) error

	// RemoveBook deletes the entry matching bookID. Removing an absent
	// bookId is a no-op, not an error.
	RemoveBook(ctx context.Context, userID, bookID string) error
}
