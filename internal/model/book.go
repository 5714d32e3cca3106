package model

import "time"

// SavedBook is one entry in a user's saved-book list.
//
// BookID is the external catalog identifier (a Google Books volume ID),
// unique within a user's list. Entries are created when a search result
// is saved and deleted when removed, never mutated in place.
type SavedBook struct {
	BookID      string    `json:"bookId"`
	Title       string    `json:"title"`
	Authors     []string  `json:"authors"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Link        string    `json:"link,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SearchResult is a transient catalog hit. It is never persisted
// server-side until a user explicitly saves it, at which point it
// becomes a SavedBook.
type SearchResult struct {
	BookID      string   `json:"bookId"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Image       string   `json:"image,omitempty"`
	Link        string   `json:"link,omitempty"`
}
