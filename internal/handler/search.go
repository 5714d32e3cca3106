package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/bookshelf/internal/catalog"
)

// SearchHandler proxies free-text queries to the book catalog. Search
// is available anonymously; only mutations need an identity.
type SearchHandler struct {
	catalog *catalog.Client
	logger  *slog.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(c *catalog.Client, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{catalog: c, logger: logger}
}

// HandleSearch runs a catalog search.
//
// HTTP: GET /api/search?q=the+hobbit
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "query parameter q is required",
		})
		return
	}

	results, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
