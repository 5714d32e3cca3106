package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/bookshelf/internal/model"
)

// contextKey is an unexported type for context keys in this package.
// A package-private key type means only this package can read or write
// the identity value in a request context.
type contextKey string

const claimKey contextKey = "claim"

// Identify is the auth gate: it resolves a request's identity claim and
// stores it in the request context for downstream handlers.
//
// The candidate token is taken from, in priority order:
//  1. the JSON body field "token"
//  2. the query parameter "token"
//  3. the Authorization header, with the "Bearer " prefix stripped
//
// The gate FAILS OPEN: a missing token is simply an anonymous request,
// and a token that fails verification is logged and also treated as
// anonymous. The gate never rejects a request; each owner-scoped
// handler is responsible for refusing anonymous callers.
func Identify(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claim, err := tokens.Verify(tokenStr)
			if err != nil {
				logger.Warn("invalid session token",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), claimKey, &claim)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimFromContext retrieves the authenticated identity claim from the
// request context. Returns (nil, false) for anonymous requests.
func ClaimFromContext(ctx context.Context) (*model.Claim, bool) {
	claim, ok := ctx.Value(claimKey).(*model.Claim)
	return claim, ok && claim != nil
}

// maxPeekBytes bounds how much of a request body the gate will buffer
// while looking for a token field.
const maxPeekBytes = 1 << 20

// extractToken pulls the candidate token out of the request. Body wins
// over query, query wins over header.
func extractToken(r *http.Request) string {
	if token := tokenFromBody(r); token != "" {
		return token
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); header != "" {
		// "Bearer <token>": take the last space-separated part so a
		// bare token without the prefix still works. A whitespace-only
		// header yields no parts and no token.
		parts := strings.Fields(header)
		if len(parts) == 0 {
			return ""
		}
		return parts[len(parts)-1]
	}
	return ""
}

// replayBody stitches already-peeked bytes back in front of the unread
// remainder of a request body.
type replayBody struct {
	io.Reader
	io.Closer
}

// tokenFromBody peeks at a JSON request body for a top-level "token"
// field. The peeked bytes are re-buffered ahead of the unread rest so
// handlers see the full body again; a non-JSON or unparsable body is
// left as-is and yields no token. Bodies larger than maxPeekBytes
// never parse as a complete JSON object, so they yield no token
// either, but they still reach the handler intact.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return ""
	}

	rest := r.Body
	body, err := io.ReadAll(io.LimitReader(rest, maxPeekBytes))
	r.Body = replayBody{io.MultiReader(bytes.NewReader(body), rest), rest}
	if err != nil {
		return ""
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Token
}
