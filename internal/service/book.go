package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
	"github.com/shelfieapp/shelfie-server/internal/id"
	"github.com/shelfieapp/shelfie-server/internal/store"
	"github.com/shelfieapp/shelfie-server/internal/textutil"
	"github.com/shelfieapp/shelfie-server/internal/validation"
)

// BookService manages the books on each user's shelves.
type BookService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, validator *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// CreateBookRequest is a catalog entry plus the owner's shelf state.
type CreateBookRequest struct {
	GoogleBooksID string          `json:"googleBooksId" validate:"required,max=128"`
	Title         string          `json:"title" validate:"required,max=500"`
	Authors       []string        `json:"authors" validate:"max=50,dive,max=200"`
	Thumbnail     string          `json:"thumbnail" validate:"omitempty,url"`
	PublishedDate string          `json:"publishedDate" validate:"max=32"`
	Description   string          `json:"description" validate:"max=20000"`
	PageCount     int             `json:"pageCount" validate:"gte=0"`
	Categories    []string        `json:"categories" validate:"max=50,dive,max=200"`
	Category      domain.Category `json:"category" validate:"required,category"`
	Rating        int             `json:"rating" validate:"gte=0,lte=5"`
	Review        string          `json:"review" validate:"max=10000"`
}

// CreateBook shelves a catalog title for the owner. Shelving the same catalog
// ID twice is a conflict and leaves the first entry untouched.
func (s *BookService) CreateBook(ctx context.Context, ownerID string, req CreateBookRequest) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate book id")
	}

	book := &domain.Book{
		Document:      domain.Document{ID: bookID},
		UserID:        ownerID,
		GoogleBooksID: req.GoogleBooksID,
		Title:         textutil.Normalize(req.Title),
		Authors:       req.Authors,
		Thumbnail:     req.Thumbnail,
		PublishedDate: req.PublishedDate,
		Description:   textutil.Markdown(req.Description),
		PageCount:     req.PageCount,
		Categories:    req.Categories,
		Category:      req.Category,
		Rating:        req.Rating,
		Review:        textutil.Normalize(req.Review),
	}
	book.Normalize()
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict(msgBookExists).WithCause(err)
		}
		return nil, translate(err, "create book", msgBookNotFound)
	}

	s.logger.Info("book shelved",
		"book_id", book.ID, "user_id", ownerID, "category", book.Category)
	return book, nil
}

// GetBook returns a book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "get book", msgBookNotFound)
	}
	book.Normalize()
	return book, nil
}

// ListBooks returns an owner's books, newest first, optionally limited to one
// category.
func (s *BookService) ListBooks(ctx context.Context, ownerID string, category domain.Category) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if category != "" {
		if err := s.validator.Var("category", string(category), "category"); err != nil {
			return nil, err
		}
	}

	books, err := s.store.ListBooksByOwner(ctx, ownerID, category)
	if err != nil {
		return nil, translate(err, "list books", msgBookNotFound)
	}
	for _, b := range books {
		b.Normalize()
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// UpdateBookRequest holds the shelf fields an owner may change.
type UpdateBookRequest struct {
	Category *domain.Category `validate:"omitempty,category"`
	Rating   *int             `validate:"omitempty,gte=0,lte=5"`
	Review   *string          `validate:"omitempty,max=10000"`
}

// UpdateBook changes the shelf state of a book the actor owns.
func (s *BookService) UpdateBook(ctx context.Context, bookID, actorID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.ownedBook(ctx, bookID, actorID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		book.Category = *req.Category
	}
	if req.Rating != nil {
		book.Rating = *req.Rating
	}
	if req.Review != nil {
		book.Review = textutil.Normalize(*req.Review)
	}
	book.Normalize()
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, translate(err, "update book", msgBookNotFound)
	}
	return book, nil
}

// DeleteBook removes a book the actor owns, with its likes and comments.
func (s *BookService) DeleteBook(ctx context.Context, bookID, actorID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	book, err := s.ownedBook(ctx, bookID, actorID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBook(ctx, book.ID); err != nil {
		return translate(err, "delete book", msgBookNotFound)
	}

	s.logger.Info("book deleted", "book_id", book.ID, "user_id", actorID)
	return nil
}

func (s *BookService) ownedBook(ctx context.Context, bookID, actorID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "get book", msgBookNotFound)
	}
	if book.UserID != actorID {
		return nil, domainerrors.Forbidden("Only the owner can change this book")
	}
	return book, nil
}
