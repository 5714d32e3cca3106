// Package auth provides session-token signing and verification plus
// password hashing for the bookshelf API.
//
// A session token is a signed JWT carrying the caller's identity claim
// ({id, username, email}) under the payload key "data". Validity is a
// pure function of the signature, the secret, and the clock: the server
// stores nothing per token and cannot revoke one before it expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/bookshelf/internal/model"
)

// DefaultTokenTTL is the validity window for newly issued tokens.
const DefaultTokenTTL = 2 * time.Hour

const issuer = "bookshelf"

var (
	// ErrTokenExpired means the signature was fine but the validity
	// window has passed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrInvalidToken covers everything else: bad signature, wrong
	// algorithm, malformed payload, missing claim.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// TokenService signs and verifies session tokens.
//
// The HMAC secret and the expiry horizon are injected at construction;
// the secret comes from the environment at process start and is never
// hard-coded. The same secret must be used for both operations.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and the
// default 2-hour token lifetime. The secret should be at least 32 bytes
// of random data in production, e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	return NewTokenServiceWithTTL(secret, DefaultTokenTTL)
}

// NewTokenServiceWithTTL creates a TokenService with a custom token
// lifetime. Used in tests to mint already-expired tokens.
func NewTokenServiceWithTTL(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// sessionClaims is the JWT payload. The identity triple sits under the
// fixed key "data"; jwt.RegisteredClaims contributes iat/exp/iss.
type sessionClaims struct {
	Data model.Claim `json:"data"`
	jwt.RegisteredClaims
}

// Issue creates and signs a session token embedding the given claim.
//
// Signing algorithm: HS256 (HMAC-SHA256). Two tokens for the same claim
// are not required to be byte-equal; the issuance timestamp is part of
// the payload.
func (s *TokenService) Issue(claim model.Claim) (string, error) {
	now := time.Now()

	c := sessionClaims{
		Data: claim,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a session token and returns the embedded
// claim unchanged.
//
// Restricting the algorithm to HS256 with jwt.WithValidMethods prevents
// algorithm-confusion attacks where a token signed with "none" would
// otherwise be accepted.
func (s *TokenService) Verify(tokenStr string) (model.Claim, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Claim{}, ErrTokenExpired
		}
		return model.Claim{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return model.Claim{}, ErrInvalidToken
	}
	if c.Data.ID == "" {
		return model.Claim{}, fmt.Errorf("%w: missing identity claim", ErrInvalidToken)
	}

	return c.Data, nil
}

// DecodeUnverified extracts the identity claim and expiry from a token
// WITHOUT checking the signature.
//
// This exists for the client side, which never holds the signing secret:
// deciding whether to show a logged-in UI is payload parsing, not a
// trust decision. The server must never call this to authorize anything.
func DecodeUnverified(tokenStr string) (model.Claim, time.Time, error) {
	var c sessionClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &c); err != nil {
		return model.Claim{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.ExpiresAt == nil {
		return model.Claim{}, time.Time{}, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	return c.Data, c.ExpiresAt.Time, nil
}
