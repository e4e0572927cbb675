package models

// Book represents a catalog entry with its associated authors
type Book struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Cover       string   `json:"cover"`
	Description string   `json:"description"`
	Authors     []Author `json:"authors"`
}

// Author represents a book author
type Author struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Books []Book `json:"books,omitempty"`
}

// BookUpdate represents a partial update of a book's editable fields.
// Empty fields keep the stored values.
type BookUpdate struct {
	Title       string
	Cover       string
	Description string
	// AuthorIDs, when non-nil, replaces the book's author set.
	AuthorIDs []int
}
