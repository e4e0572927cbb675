package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/libroteca/backend/internal/models"
	"go.uber.org/zap"
)

type authorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuthorRepository creates a new author repository
func NewAuthorRepository(db *sql.DB, logger *zap.Logger) *authorRepository {
	return &authorRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll retrieves all authors, sorted by id
func (r *authorRepository) GetAll(ctx context.Context) ([]models.Author, error) {
	query := `SELECT id, name FROM authors ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query authors", zap.Error(err))
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	var authors []models.Author
	for rows.Next() {
		var author models.Author
		if err := rows.Scan(&author.ID, &author.Name); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, author)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return authors, nil
}

// GetByIDWithBooks retrieves an author by ID together with the associated books
func (r *authorRepository) GetByIDWithBooks(ctx context.Context, id int) (*models.Author, error) {
	query := `SELECT id, name FROM authors WHERE id = ? LIMIT 1`

	author := &models.Author{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&author.ID, &author.Name)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("author not found")
	}
	if err != nil {
		r.logger.Error("failed to get author by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}

	booksQuery := `
		SELECT b.id, b.title, b.cover, b.description
		FROM books b
		JOIN book_authors ba ON ba.book_id = b.id
		WHERE ba.author_id = ?
		ORDER BY b.id
	`

	rows, err := r.db.QueryContext(ctx, booksQuery, id)
	if err != nil {
		r.logger.Error("failed to query author books", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to query author books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Cover, &book.Description); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		author.Books = append(author.Books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return author, nil
}
