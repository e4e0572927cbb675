package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/libroteca/backend/internal/middleware"
	"github.com/libroteca/backend/internal/models"
	"github.com/libroteca/backend/internal/views"
	"go.uber.org/zap"
)

// CatalogEditor is the interface that wraps methods for administrative catalog mutations.
type CatalogEditor interface {
	// Method GetBook returns one book with its authors.
	//
	// "id" parameter identifies the book.
	//
	// If book with such ID does not exist, the error will be returned together with "nil" value.
	GetBook(ctx context.Context, id int) (*models.Book, error)
	// Method UpdateBook applies a partial update to a book. Empty fields keep the stored values.
	//
	// "id" parameter identifies the book.
	// "upd" parameter carries the new field values and, optionally, the new author set.
	//
	// If book with such ID does not exist, or some error occurs during update, the error will be returned together with "nil" value.
	UpdateBook(ctx context.Context, id int, upd models.BookUpdate) (*models.Book, error)
	// Method DeleteBook removes a book and its author associations atomically.
	//
	// "id" parameter identifies the book.
	//
	// If book with such ID does not exist, or some error occurs during deletion, the error will be returned.
	DeleteBook(ctx context.Context, id int) error
	// Method ListAuthors returns all authors, for the edit form's author set.
	//
	// If some error occurs during retrieval, the error will be returned together with "nil" value.
	ListAuthors(ctx context.Context) ([]models.Author, error)
}

// AdminHandler handles the admin-only book mutations. Its routes must be
// mounted behind the RequireAdmin middleware.
type AdminHandler struct {
	BaseHandler
	catalogService CatalogEditor
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalogService CatalogEditor, renderer *views.Renderer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    BaseHandler{Logger: logger, Views: renderer},
		catalogService: catalogService,
	}
}

// RegisterRoutes registers all admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/books/{id}/edit", h.EditForm)
	r.Post("/books/{id}/edit", h.ProcessEdit)
	r.Delete("/books/{id}", h.DeleteBook)
	// HTML forms cannot send DELETE, so the same operation is reachable via POST
	r.Post("/books/{id}/delete", h.DeleteBook)
}

type editBookPage struct {
	Session    models.SessionInfo
	Book       *models.Book
	AllAuthors []models.Author
}

// EditForm handles GET /books/{id}/edit
func (h *AdminHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, "book not found")
		return
	}

	book, err := h.catalogService.GetBook(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			h.NotFound(w, "book not found")
			return
		}
		h.ServerError(w, err)
		return
	}

	authors, err := h.catalogService.ListAuthors(r.Context())
	if err != nil {
		h.ServerError(w, err)
		return
	}

	h.Views.Render(w, http.StatusOK, "edit_book", editBookPage{
		Session:    middleware.GetSession(r.Context()),
		Book:       book,
		AllAuthors: authors,
	})
}

// ProcessEdit handles POST /books/{id}/edit
func (h *AdminHandler) ProcessEdit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, "book not found")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	upd := models.BookUpdate{
		Title:       r.PostFormValue("title"),
		Cover:       r.PostFormValue("cover"),
		Description: r.PostFormValue("description"),
	}

	// The author set only travels with forms that include the author fieldset;
	// a nil set leaves the associations untouched
	if r.PostFormValue("authors_present") != "" {
		authorIDs := []int{}
		for _, raw := range r.PostForm["authors"] {
			authorID, err := strconv.Atoi(raw)
			if err != nil {
				h.RespondError(w, http.StatusBadRequest, "invalid author id")
				return
			}
			authorIDs = append(authorIDs, authorID)
		}
		upd.AuthorIDs = authorIDs
	}

	if _, err := h.catalogService.UpdateBook(r.Context(), id, upd); err != nil {
		if isNotFound(err) {
			h.NotFound(w, "book not found")
			return
		}
		h.ServerError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/books/detail/%d", id), http.StatusSeeOther)
}

// DeleteBook handles DELETE /books/{id} and POST /books/{id}/delete
func (h *AdminHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, "book not found")
		return
	}

	if err := h.catalogService.DeleteBook(r.Context(), id); err != nil {
		if isNotFound(err) {
			h.NotFound(w, "book not found")
			return
		}
		h.ServerError(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
