package model

// Claim is the identity triple embedded in a session token.
//
// It is everything the server knows about a request's caller without a
// database lookup. The token is a capability: the server keeps no record
// of issued tokens, so a claim is valid exactly as long as its signature
// checks out and its expiry is in the future.
type Claim struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
