package badgerdb

import (
	"context"
	"errors"
	"slices"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// CreateBook stores a new book, rejecting a second copy of the same catalog
// title for the same owner.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := s.books.Create(ctx, book.ID, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return store.ErrAlreadyExists.WithMessage("book already exists").WithCause(err)
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.books.Get(ctx, id)
}

// UpdateBook replaces an existing book document.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	return s.books.Update(ctx, book.ID, book)
}

// DeleteBook removes a book and its index entries.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	return s.books.Delete(ctx, id)
}

// ListBooksByOwner returns an owner's books, newest-created first.
func (s *Store) ListBooksByOwner(ctx context.Context, ownerID string, category domain.Category) ([]*domain.Book, error) {
	var (
		ids []string
		err error
	)
	if category == "" {
		ids, err = s.books.ScanIndex(ctx, idxOwnerCreated, ownerID+":", 0)
	} else {
		ids, err = s.books.ScanIndex(ctx, idxOwnerCategory, ownerID+":"+string(category)+":", 0)
	}
	if err != nil {
		return nil, err
	}
	return s.books.GetMany(ctx, ids)
}

// ListRecentBooksByOwners takes the newest limit books of each owner from
// the owner_updated index and merges them.
func (s *Store) ListRecentBooksByOwners(ctx context.Context, ownerIDs []string, limit int) ([]*domain.Book, error) {
	if len(ownerIDs) == 0 || limit <= 0 {
		return []*domain.Book{}, nil
	}

	var merged []*domain.Book
	for _, owner := range ownerIDs {
		ids, err := s.books.ScanIndex(ctx, idxOwnerUpdated, owner+":", limit)
		if err != nil {
			return nil, err
		}
		books, err := s.books.GetMany(ctx, ids)
		if err != nil {
			return nil, err
		}
		merged = append(merged, books...)
	}

	slices.SortStableFunc(merged, func(a, b *domain.Book) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
