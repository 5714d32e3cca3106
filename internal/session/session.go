// Package session is the client-side session store: it keeps the
// issued token on disk between runs and answers logged-in questions by
// decoding the token payload.
//
// The client never holds the signing secret, so nothing here verifies a
// signature. It decodes the payload without trusting it. The server
// re-verifies every request; this store only decides what the local UI
// should assume.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/model"
)

// Store persists the session token in a single file.
type Store struct {
	path string
}

// NewStore creates a Store rooted at the given file path, typically
// <state-dir>/session.token.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Login durably stores the token. It survives process restarts and is
// removed only by Logout.
func (s *Store) Login(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: creating state directory: %w", err)
	}
	// 0600: the token is a capability; other users on the machine
	// should not be able to read it.
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("session: writing token: %w", err)
	}
	return nil
}

// Logout clears the stored token and all derived state. Logging out
// when not logged in is a no-op.
func (s *Store) Logout() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: removing token: %w", err)
	}
	return nil
}

// Token returns the stored token, or "" if there is none.
func (s *Store) Token() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// LoggedIn reports whether a token is present AND its embedded expiry
// is in the future. A malformed token counts as not logged in.
func (s *Store) LoggedIn() bool {
	token := s.Token()
	if token == "" {
		return false
	}
	_, expiry, err := auth.DecodeUnverified(token)
	if err != nil {
		return false
	}
	return expiry.After(time.Now())
}

// Identity returns the identity claim decoded from the stored token, or
// nil if no token is stored or it cannot be decoded.
func (s *Store) Identity() *model.Claim {
	token := s.Token()
	if token == "" {
		return nil
	}
	claim, _, err := auth.DecodeUnverified(token)
	if err != nil {
		return nil
	}
	return &claim
}
