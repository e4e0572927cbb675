package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/libroteca/backend/internal/models"
	"go.uber.org/zap"
)

type bookRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *sql.DB, logger *zap.Logger) *bookRepository {
	return &bookRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll retrieves all books with their authors, sorted by book id
func (r *bookRepository) GetAll(ctx context.Context) ([]models.Book, error) {
	query := `
		SELECT b.id, b.title, b.cover, b.description, a.id, a.name
		FROM books b
		LEFT JOIN book_authors ba ON ba.book_id = b.id
		LEFT JOIN authors a ON a.id = ba.author_id
		ORDER BY b.id, a.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query books", zap.Error(err))
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var book models.Book
		var authorID sql.NullInt64
		var authorName sql.NullString
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Cover,
			&book.Description,
			&authorID,
			&authorName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}

		// Rows are ordered by book id, so joined author rows for the same
		// book arrive consecutively
		if len(books) == 0 || books[len(books)-1].ID != book.ID {
			books = append(books, book)
		}
		if authorID.Valid {
			last := &books[len(books)-1]
			last.Authors = append(last.Authors, models.Author{ID: int(authorID.Int64), Name: authorName.String})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return books, nil
}

// GetByID retrieves a book by ID together with its authors
func (r *bookRepository) GetByID(ctx context.Context, id int) (*models.Book, error) {
	query := `SELECT id, title, cover, description FROM books WHERE id = ? LIMIT 1`

	book := &models.Book{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Cover,
		&book.Description,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book not found")
	}
	if err != nil {
		r.logger.Error("failed to get book by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}

	authors, err := r.listAuthors(ctx, id)
	if err != nil {
		return nil, err
	}
	book.Authors = authors

	return book, nil
}

// listAuthors retrieves the author set of a book
func (r *bookRepository) listAuthors(ctx context.Context, bookID int) ([]models.Author, error) {
	query := `
		SELECT a.id, a.name
		FROM authors a
		JOIN book_authors ba ON ba.author_id = a.id
		WHERE ba.book_id = ?
		ORDER BY a.id
	`

	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		r.logger.Error("failed to query book authors", zap.Error(err), zap.Int("bookId", bookID))
		return nil, fmt.Errorf("failed to query book authors: %w", err)
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

// SearchByTitle retrieves all books whose title contains the term as a
// substring. LIKE wildcards in the term match literally.
func (r *bookRepository) SearchByTitle(ctx context.Context, term string) ([]models.Book, error) {
	query := `
		SELECT id, title, cover, description
		FROM books
		WHERE title LIKE ? ESCAPE '\\'
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, "%"+escapeLike(term)+"%")
	if err != nil {
		r.logger.Error("failed to search books", zap.Error(err), zap.String("term", term))
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Cover, &book.Description); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return books, nil
}

// escapeLike escapes LIKE wildcards in a user-supplied search term
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

// Update persists the editable fields of a book
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	query := `UPDATE books SET title = ?, cover = ?, description = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, book.Title, book.Cover, book.Description, book.ID)
	if err != nil {
		r.logger.Error("failed to update book", zap.Error(err), zap.Int("id", book.ID))
		return fmt.Errorf("failed to update book: %w", err)
	}

	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	return nil
}

// ReplaceAuthors replaces the author set of a book with the given author IDs
// in a single transaction
func (r *bookRepository) ReplaceAuthors(ctx context.Context, bookID int, authorIDs []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = ?`, bookID); err != nil {
		r.logger.Error("failed to detach book authors", zap.Error(err), zap.Int("bookId", bookID))
		return fmt.Errorf("failed to detach book authors: %w", err)
	}

	if len(authorIDs) > 0 {
		placeholders := make([]string, len(authorIDs))
		args := []any{}
		for i, authorID := range authorIDs {
			placeholders[i] = "(?, ?)"
			args = append(args, bookID, authorID)
		}

		query := fmt.Sprintf(`INSERT INTO book_authors (book_id, author_id) VALUES %s`,
			strings.Join(placeholders, ","))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to attach book authors", zap.Error(err), zap.Int("bookId", bookID))
			return fmt.Errorf("failed to attach book authors: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a book and its author associations in a single transaction.
// Author rows are left untouched.
func (r *bookRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = ?`, id); err != nil {
		r.logger.Error("failed to detach book authors", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to detach book authors: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete book", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete book: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("book not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
