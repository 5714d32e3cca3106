// Package bookcache is the client-side save-state cache: a durable set
// of bookIds this device believes are saved on the server.
//
// It exists to suppress redundant save attempts in the UI and to
// survive restarts. It is a cache, never a source of truth. After
// every successful save or remove round-trip the caller must reconcile
// it against the server's response, and nothing may consult it to
// authorize an action.
package bookcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Cache persists the saved-bookId set in a single JSON file.
type Cache struct {
	path string
}

// New creates a Cache rooted at the given file path, typically
// <state-dir>/saved_books.json.
func New(path string) *Cache {
	return &Cache{path: path}
}

// SavedBookIDs restores the set from disk. An absent or corrupt file
// yields an empty set; losing the cache only costs a few redundant
// save attempts, so corruption is dropped, not fatal.
func (c *Cache) SavedBookIDs() map[string]bool {
	ids := make(map[string]bool)

	data, err := os.ReadFile(c.path)
	if err != nil {
		return ids
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return ids
	}
	for _, id := range list {
		if id != "" {
			ids[id] = true
		}
	}
	return ids
}

// SaveBookIDs durably overwrites the stored set.
func (c *Cache) SaveBookIDs(ids map[string]bool) error {
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Strings(list) // stable file content for identical sets

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("bookcache: encoding ids: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("bookcache: creating state directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("bookcache: writing ids: %w", err)
	}
	return nil
}

// AddBookID records one id as saved.
func (c *Cache) AddBookID(id string) error {
	ids := c.SavedBookIDs()
	ids[id] = true
	return c.SaveBookIDs(ids)
}

// RemoveBookID removes one id from the set; removing an absent id is a
// no-op.
func (c *Cache) RemoveBookID(id string) error {
	ids := c.SavedBookIDs()
	if !ids[id] {
		return nil
	}
	delete(ids, id)
	return c.SaveBookIDs(ids)
}
