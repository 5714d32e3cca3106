package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/model"
	"github.com/sakif/bookshelf/internal/service"
)

// ShelfHandler serves the owner-scoped saved-book routes. The auth gate
// has already run; these handlers read the claim out of the context and
// hand it to the service, which rejects anonymous callers.
type ShelfHandler struct {
	shelf  *service.ShelfService
	logger *slog.Logger
}

// NewShelfHandler creates a ShelfHandler.
func NewShelfHandler(shelf *service.ShelfService, logger *slog.Logger) *ShelfHandler {
	return &ShelfHandler{shelf: shelf, logger: logger}
}

// claim returns the request's identity claim, or nil for anonymous.
// The nil goes straight to the service, which owns the authorization decision.
func (h *ShelfHandler) claim(r *http.Request) *model.Claim {
	c, _ := auth.ClaimFromContext(r.Context())
	return c
}

// HandleMe returns the caller's full profile including saved books.
//
// HTTP: GET /api/me
func (h *ShelfHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.shelf.Profile(r.Context(), h.claim(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleSaveBook appends a book to the caller's saved list.
//
// HTTP: PUT /api/me/books
// BODY: {"bookId":"B1","title":"T","authors":["A"],"description":"...","image":"...","link":"..."}
//
// Responds with the full updated user so the client can reconcile its
// local save-state cache against the authoritative list.
func (h *ShelfHandler) HandleSaveBook(w http.ResponseWriter, r *http.Request) {
	var draft model.SavedBook
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.logger.Warn("invalid save-book JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.shelf.SaveBook(r.Context(), h.claim(r), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleRemoveBook deletes a book from the caller's saved list.
//
// HTTP: DELETE /api/me/books/{bookId}
func (h *ShelfHandler) HandleRemoveBook(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("bookId")
	if bookID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "bookId is required",
		})
		return
	}

	user, err := h.shelf.RemoveBook(r.Context(), h.claim(r), bookID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
