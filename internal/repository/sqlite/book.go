package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sakif/bookshelf/internal/model"
)

// AddBook appends a book to the user's saved list.
//
// INSERT OR IGNORE lands on the UNIQUE(user_id, book_id) constraint,
// which makes a duplicate save a silent no-op; the caller always sees
// success, and the list never grows a second copy of the same book.
func (db *DB) AddBook(ctx context.Context, userID string, book model.SavedBook) error {
	authors, err := json.Marshal(book.Authors)
	if err != nil {
		return fmt.Errorf("sqlite: encoding authors for book %s: %w", book.BookID, err)
	}

	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO saved_books
		 (user_id, book_id, title, authors, description, image, link, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID,
		book.BookID,
		book.Title,
		string(authors),
		book.Description,
		book.Image,
		book.Link,
		book.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving book %s for user %s: %w", book.BookID, userID, err)
	}

	return nil
}

// RemoveBook deletes the entry matching bookID from the user's list.
// Deleting a bookId that isn't there is a no-op.
func (db *DB) RemoveBook(ctx context.Context, userID, bookID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM saved_books WHERE user_id = ? AND book_id = ?`,
		userID, bookID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing book %s for user %s: %w", bookID, userID, err)
	}
	return nil
}

// listBooks returns a user's saved books least-recently-added first.
// rowid is monotonic per insert, so ordering by it preserves insertion
// order even when two saves share a created_at timestamp.
func (db *DB) listBooks(ctx context.Context, userID string) ([]model.SavedBook, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT book_id, title, authors, description, image, link, created_at
		 FROM saved_books WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing books for user %s: %w", userID, err)
	}
	defer rows.Close()

	books := []model.SavedBook{}
	for rows.Next() {
		var b model.SavedBook
		var authors string
		if err := rows.Scan(
			&b.BookID,
			&b.Title,
			&authors,
			&b.Description,
			&b.Image,
			&b.Link,
			&b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning saved book: %w", err)
		}
		if err := json.Unmarshal([]byte(authors), &b.Authors); err != nil {
			return nil, fmt.Errorf("sqlite: decoding authors for book %s: %w", b.BookID, err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating saved books: %w", err)
	}

	return books, nil
}
