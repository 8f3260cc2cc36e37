package sqlite

import (
	"context"
	"fmt"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// CreateBook inserts a new book.
// Returns store.ErrAlreadyExists if the owner already shelved the catalog title.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	doc, err := encodeDoc(book)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO books (id, user_id, google_books_id, category, created_at, updated_at, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.UserID,
		book.GoogleBooksID,
		string(book.Category),
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		doc,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("book already exists")
	}
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM books WHERE id = ?`, id)
	return scanDoc[domain.Book](row, store.ErrBookNotFound)
}

// UpdateBook replaces an existing book document.
// Owner and catalog ID are immutable and not rewritten.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	doc, err := encodeDoc(book)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET category = ?, updated_at = ?, doc = ?
		WHERE id = ?`,
		string(book.Category),
		formatTime(book.UpdatedAt),
		doc,
		book.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return requireAffected(res, store.ErrBookNotFound)
}

// DeleteBook removes a book. Deleting a missing book is not an error.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// ListBooksByOwner returns an owner's books, newest-created first.
func (s *Store) ListBooksByOwner(ctx context.Context, ownerID string, category domain.Category) ([]*domain.Book, error) {
	if category == "" {
		return queryDocs[domain.Book](ctx, s.db,
			`SELECT doc FROM books WHERE user_id = ? ORDER BY created_at DESC`, ownerID)
	}
	return queryDocs[domain.Book](ctx, s.db,
		`SELECT doc FROM books WHERE user_id = ? AND category = ? ORDER BY created_at DESC`,
		ownerID, string(category))
}

// ListRecentBooksByOwners returns the most recently updated books of any of
// the given owners.
func (s *Store) ListRecentBooksByOwners(ctx context.Context, ownerIDs []string, limit int) ([]*domain.Book, error) {
	if len(ownerIDs) == 0 || limit <= 0 {
		return []*domain.Book{}, nil
	}

	args := make([]any, 0, len(ownerIDs)+1)
	for _, id := range ownerIDs {
		args = append(args, id)
	}
	args = append(args, limit)

	query := `SELECT doc FROM books WHERE user_id IN (` + placeholders(len(ownerIDs)) + `)
		ORDER BY updated_at DESC LIMIT ?`
	return queryDocs[domain.Book](ctx, s.db, query, args...)
}
