package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bookshelf/internal/apperror"
	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/repository/sqlite"
)

// newTestServices wires an AccountService and ShelfService against an
// in-memory SQLite repository, the same dependency graph as
// production, minus the network.
func newTestServices(t *testing.T) (*AccountService, *ShelfService) {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	// bcrypt cost 4 keeps the hashing in these tests fast
	passwords := auth.NewPasswordServiceForTest(4)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAccountService(db, tokens, passwords, logger), NewShelfService(db, logger)
}

func TestRegister(t *testing.T) {
	accounts, _ := newTestServices(t)
	ctx := context.Background()

	result, err := accounts.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice", result.User.Username)
	assert.Equal(t, "a@x.com", result.User.Email)
	assert.Empty(t, result.User.SavedBooks)

	// The issued token embeds the identity claim
	claim, _, err := auth.DecodeUnverified(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claim.Username)
	assert.Equal(t, result.User.ID, claim.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	accounts, _ := newTestServices(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	_, err = accounts.Register(ctx, "another-alice", "a@x.com", "pw456")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRegister_Validation(t *testing.T) {
	accounts, _ := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "", "a@x.com", "pw123"},
		{"bad email", "alice", "not-an-email", "pw123"},
		{"short password", "alice", "a@x.com", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := accounts.Register(ctx, tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	accounts, _ := newTestServices(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	result, err := accounts.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	claim, _, err := auth.DecodeUnverified(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claim.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	accounts, _ := newTestServices(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	_, err = accounts.Login(ctx, "a@x.com", "wrongpw")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	accounts, _ := newTestServices(t)

	_, err := accounts.Login(context.Background(), "nobody@x.com", "pw123")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	accounts, _ := newTestServices(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "alice", "A@X.com", "pw123")
	require.NoError(t, err)

	_, err = accounts.Login(ctx, "a@x.com", "pw123")
	assert.NoError(t, err)
}
