package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/libroteca/backend/internal/middleware"
	"github.com/libroteca/backend/internal/models"
	"github.com/libroteca/backend/internal/views"
	"go.uber.org/zap"
)

// CatalogBrowser is the interface that wraps methods for catalog browsing business logic.
type CatalogBrowser interface {
	// Method ListBooks returns all books with their authors.
	//
	// If some error occurs during retrieval, the error will be returned together with "nil" value.
	ListBooks(ctx context.Context) ([]models.Book, error)
	// Method GetBook returns one book with its authors.
	//
	// "id" parameter identifies the book.
	//
	// If book with such ID does not exist, the error will be returned together with "nil" value.
	GetBook(ctx context.Context, id int) (*models.Book, error)
	// Method Search returns all books whose title contains the term.
	//
	// "term" parameter is the search term. Empty or whitespace-only terms are rejected.
	//
	// If the term is empty, or some error occurs during search, the error will be returned together with "nil" value.
	Search(ctx context.Context, term string) ([]models.Book, error)
	// Method ListAuthors returns all authors.
	//
	// If some error occurs during retrieval, the error will be returned together with "nil" value.
	ListAuthors(ctx context.Context) ([]models.Author, error)
	// Method GetAuthorBooks returns one author with the associated books.
	//
	// "id" parameter identifies the author.
	//
	// If author with such ID does not exist, the error will be returned together with "nil" value.
	GetAuthorBooks(ctx context.Context, id int) (*models.Author, error)
}

// CatalogHandler handles the public catalog pages
type CatalogHandler struct {
	BaseHandler
	catalogService CatalogBrowser
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService CatalogBrowser, renderer *views.Renderer, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    BaseHandler{Logger: logger, Views: renderer},
		catalogService: catalogService,
	}
}

// RegisterRoutes registers all catalog handler routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/books/detail/{id}", h.BookDetail)
	r.Get("/books/search", h.SearchForm)
	r.Post("/books/search", h.SearchResults)
	r.Get("/authors", h.Authors)
	r.Get("/authors/{id}/books", h.AuthorBooks)
}

type homePage struct {
	Session models.SessionInfo
	Books   []models.Book
}

type bookDetailPage struct {
	Session models.SessionInfo
	Book    *models.Book
}

type searchPage struct {
	Session models.SessionInfo
	Term    string
	Books   []models.Book
}

type authorsPage struct {
	Session models.SessionInfo
	Authors []models.Author
}

type authorBooksPage struct {
	Session models.SessionInfo
	Author  *models.Author
}

// Home handles GET /
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalogService.ListBooks(r.Context())
	if err != nil {
		h.ServerError(w, err)
		return
	}

	h.Views.Render(w, http.StatusOK, "home", homePage{
		Session: middleware.GetSession(r.Context()),
		Books:   books,
	})
}

// BookDetail handles GET /books/detail/{id}
func (h *CatalogHandler) BookDetail(w http.ResponseWriter, r *http.Request) {
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

	h.Views.Render(w, http.StatusOK, "book_detail", bookDetailPage{
		Session: middleware.GetSession(r.Context()),
		Book:    book,
	})
}

// SearchForm handles GET /books/search
func (h *CatalogHandler) SearchForm(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, http.StatusOK, "search", searchPage{
		Session: middleware.GetSession(r.Context()),
	})
}

// SearchResults handles POST /books/search
func (h *CatalogHandler) SearchResults(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	term := r.PostFormValue("title")
	books, err := h.catalogService.Search(r.Context(), term)
	if err != nil {
		if strings.Contains(err.Error(), "empty") {
			h.RespondError(w, http.StatusBadRequest, "the search field is empty")
			return
		}
		h.ServerError(w, err)
		return
	}

	h.Views.Render(w, http.StatusOK, "search", searchPage{
		Session: middleware.GetSession(r.Context()),
		Term:    term,
		Books:   books,
	})
}

// Authors handles GET /authors
func (h *CatalogHandler) Authors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.catalogService.ListAuthors(r.Context())
	if err != nil {
		h.ServerError(w, err)
		return
	}

	h.Views.Render(w, http.StatusOK, "authors", authorsPage{
		Session: middleware.GetSession(r.Context()),
		Authors: authors,
	})
}

// AuthorBooks handles GET /authors/{id}/books
func (h *CatalogHandler) AuthorBooks(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, "author not found")
		return
	}

	author, err := h.catalogService.GetAuthorBooks(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			h.NotFound(w, "author not found")
			return
		}
		h.ServerError(w, err)
		return
	}

	h.Views.Render(w, http.StatusOK, "author_books", authorBooksPage{
		Session: middleware.GetSession(r.Context()),
		Author:  author,
	})
}

// isNotFound reports whether a service error is a missing-record error
func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "not found")
}
