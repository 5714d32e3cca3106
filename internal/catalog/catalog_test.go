package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sakif/bookshelf/internal/apperror"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const volumesPayload = `{
  "items": [
    {
      "id": "vol-1",
      "volumeInfo": {
        "title": "The Go Programming Language",
        "authors": ["Alan Donovan", "Brian Kernighan"],
        "description": "A book about Go.",
        "infoLink": "https://books.example/vol-1",
        "imageLinks": {"thumbnail": "https://books.example/vol-1.jpg"}
      }
    },
    {
      "id": "vol-2",
      "volumeInfo": {
        "title": "Anonymous Manuscript",
        "description": "No listed author."
      }
    }
  ]
}`

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("query parameter q = %q, want %q", got, "golang")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(volumesPayload))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), testLogger())
	results, err := c.Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}

	first := results[0]
	if first.BookID != "vol-1" {
		t.Errorf("BookID = %q, want vol-1", first.BookID)
	}
	if len(first.Authors) != 2 || first.Authors[0] != "Alan Donovan" {
		t.Errorf("Authors = %v", first.Authors)
	}
	if first.Image != "https://books.example/vol-1.jpg" {
		t.Errorf("Image = %q", first.Image)
	}

	// Volume without authors gets the placeholder
	second := results[1]
	if len(second.Authors) != 1 || second.Authors[0] != noAuthorPlaceholder {
		t.Errorf("Authors for author-less volume = %v, want placeholder", second.Authors)
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), testLogger())
	results, err := c.Search(context.Background(), "nothing matches this")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() = %v, want empty slice", results)
	}
}

func TestSearch_Non200IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), testLogger())
	_, err := c.Search(context.Background(), "golang")
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Search() error = %v, want ErrUnavailable", err)
	}
}

func TestSearch_UnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // close before the request so nothing is listening

	c := New(srv.URL, nil, testLogger())
	_, err := c.Search(context.Background(), "golang")
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Search() against closed server error = %v, want ErrUnavailable", err)
	}
}

func TestSearch_GarbageBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>surprise</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), testLogger())
	_, err := c.Search(context.Background(), "golang")
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Search() with garbage body error = %v, want ErrUnavailable", err)
	}
}
