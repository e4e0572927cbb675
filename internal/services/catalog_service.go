package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/libroteca/backend/internal/models"
	"go.uber.org/zap"
)

// BookRepository is the interface that wraps methods for Book table data access
type BookRepository interface {
	// Method GetAll retrieves all books with their authors.
	//
	// If some error occurs during retrieval, the error will be returned together with "nil" value.
	GetAll(ctx context.Context) ([]models.Book, error)
	// Method GetByID retrieves a book by ID together with its authors.
	//
	// "id" parameter is used to retrieve a book by ID.
	//
	// If book with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Book, error)
	// Method SearchByTitle retrieves all books whose title contains the term as a substring.
	//
	// "term" parameter is the search term. LIKE wildcards match literally.
	//
	// If some error occurs during search, the error will be returned together with "nil" value.
	SearchByTitle(ctx context.Context, term string) ([]models.Book, error)
	// Method Update persists the editable fields of a book.
	//
	// "book" parameter carries the full field set to store.
	//
	// If some error occurs during update, the error will be returned.
	Update(ctx context.Context, book *models.Book) error
	// Method ReplaceAuthors replaces the author set of a book within one transaction.
	//
	// "bookID" parameter identifies the book.
	// "authorIDs" parameter is the new author set.
	//
	// If some error occurs during replacement, the error will be returned.
	ReplaceAuthors(ctx context.Context, bookID int, authorIDs []int) error
	// Method Delete removes a book and its author associations within one transaction.
	//
	// "id" parameter identifies the book.
	//
	// If book with such ID does not exist, or some error occurs during deletion, the error will be returned.
	Delete(ctx context.Context, id int) error
}

// AuthorRepository is the interface that wraps methods for Author table data access
type AuthorRepository interface {
	// Method GetAll retrieves all authors.
	//
	// If some error occurs during retrieval, the error will be returned together with "nil" value.
	GetAll(ctx context.Context) ([]models.Author, error)
	// Method GetByIDWithBooks retrieves an author by ID together with the associated books.
	//
	// "id" parameter is used to retrieve an author by ID.
	//
	// If author with such ID does not exist, the error will be returned together with "nil" value.
	GetByIDWithBooks(ctx context.Context, id int) (*models.Author, error)
}

// catalogService implements CatalogService
type catalogService struct {
	bookRepo   BookRepository
	authorRepo AuthorRepository
	logger     *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(bookRepo BookRepository, authorRepo AuthorRepository, logger *zap.Logger) *catalogService {
	return &catalogService{
		bookRepo:   bookRepo,
		authorRepo: authorRepo,
		logger:     logger,
	}
}

// ListBooks returns all books with their authors
func (s *catalogService) ListBooks(ctx context.Context) ([]models.Book, error) {
	return s.bookRepo.GetAll(ctx)
}

// GetBook returns one book with its authors
func (s *catalogService) GetBook(ctx context.Context, id int) (*models.Book, error) {
	return s.bookRepo.GetByID(ctx, id)
}

// Search returns all books whose title contains the term. Empty or
// whitespace-only terms are rejected.
func (s *catalogService) Search(ctx context.Context, term string) ([]models.Book, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("search term is empty")
	}
	return s.bookRepo.SearchByTitle(ctx, term)
}

// ListAuthors returns all authors
func (s *catalogService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return s.authorRepo.GetAll(ctx)
}

// GetAuthorBooks returns one author with the associated books
func (s *catalogService) GetAuthorBooks(ctx context.Context, id int) (*models.Author, error) {
	return s.authorRepo.GetByIDWithBooks(ctx, id)
}

// UpdateBook applies a partial update to a book. Empty fields keep the stored
// values, so applying the same update twice yields the same stored state.
// When the update carries an author set, the book's associations are replaced.
func (s *catalogService) UpdateBook(ctx context.Context, id int, upd models.BookUpdate) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(upd.Title); title != "" {
		book.Title = title
	}
	if cover := strings.TrimSpace(upd.Cover); cover != "" {
		book.Cover = cover
	}
	if description := strings.TrimSpace(upd.Description); description != "" {
		book.Description = description
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	if upd.AuthorIDs != nil {
		if err := s.bookRepo.ReplaceAuthors(ctx, id, upd.AuthorIDs); err != nil {
			return nil, err
		}
	}

	return book, nil
}

// DeleteBook removes a book and its author associations. Author rows survive.
func (s *catalogService) DeleteBook(ctx context.Context, id int) error {
	return s.bookRepo.Delete(ctx, id)
}
