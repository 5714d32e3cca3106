// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account and its saved-book list.
//
// PasswordHash is the full bcrypt output (salt embedded) and is never
// serialized; the json:"-" tag keeps it out of every API response.
// Email is unique across all users; the repository enforces this with a
// UNIQUE constraint.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	SavedBooks   []SavedBook `json:"savedBooks"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// BookCount reports the number of saved books.
func (u *User) BookCount() int {
	return len(u.SavedBooks)
}
