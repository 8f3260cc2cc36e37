package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUserBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userId}/books",
		Summary:     "List user's books",
		Description: "Returns a user's shelved books, newest first, optionally filtered by category",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Shelves a catalog title for the signed-in user",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{bookId}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{bookId}",
		Summary:     "Update book",
		Description: "Changes category, rating or review. Owner only.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{bookId}",
		Summary:     "Delete book",
		Description: "Removes a book with its likes and comments. Owner only.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// ListUserBooksInput contains parameters for listing a user's books.
type ListUserBooksInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userId" doc:"Owner user ID"`
	Category      string `query:"category" doc:"To Be Read, Currently Reading or Read"`
}

// BooksResponse contains a list of books.
type BooksResponse struct {
	Books []*domain.Book `json:"books" doc:"Books, newest first"`
}

// BooksOutput wraps a list of books for Huma.
type BooksOutput struct {
	Body BooksResponse
}

// CreateBookRequest is the request body for shelving a book.
type CreateBookRequest struct {
	GoogleBooksID string   `json:"googleBooksId,omitempty" doc:"Google Books volume ID"`
	Title         string   `json:"title,omitempty" doc:"Title"`
	Authors       []string `json:"authors,omitempty" doc:"Authors"`
	Thumbnail     string   `json:"thumbnail,omitempty" doc:"Cover thumbnail URL"`
	PublishedDate string   `json:"publishedDate,omitempty" doc:"Publication date as reported by the catalog"`
	Description   string   `json:"description,omitempty" doc:"Description, HTML is converted to markdown"`
	PageCount     int      `json:"pageCount,omitempty" doc:"Page count"`
	Categories    []string `json:"categories,omitempty" doc:"Catalog categories"`
	Category      string   `json:"category,omitempty" doc:"To Be Read, Currently Reading or Read"`
	Rating        int      `json:"rating,omitempty" doc:"Rating from 0 to 5"`
	Review        string   `json:"review,omitempty" doc:"Review text"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// BookIDInput contains parameters for addressing a book.
type BookIDInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
}

// UpdateBookRequest is the request body for updating a book.
type UpdateBookRequest struct {
	Category *string `json:"category,omitempty" doc:"To Be Read, Currently Reading or Read"`
	Rating   *int    `json:"rating,omitempty" doc:"Rating from 0 to 5"`
	Review   *string `json:"review,omitempty" doc:"Review text"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	Body          UpdateBookRequest
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListUserBooks(ctx context.Context, input *ListUserBooksInput) (*BooksOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooks(ctx, input.UserID, domain.Category(input.Category))
	if err != nil {
		return nil, err
	}
	return &BooksOutput{Body: BooksResponse{Books: books}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	b := input.Body
	book, err := s.services.Book.CreateBook(ctx, userID, service.CreateBookRequest{
		GoogleBooksID: b.GoogleBooksID,
		Title:         b.Title,
		Authors:       b.Authors,
		Thumbnail:     b.Thumbnail,
		PublishedDate: b.PublishedDate,
		Description:   b.Description,
		PageCount:     b.PageCount,
		Categories:    b.Categories,
		Category:      domain.Category(b.Category),
		Rating:        b.Rating,
		Review:        b.Review,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, input.BookID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	req := service.UpdateBookRequest{
		Rating: input.Body.Rating,
		Review: input.Body.Review,
	}
	if input.Body.Category != nil {
		category := domain.Category(*input.Body.Category)
		req.Category = &category
	}

	book, err := s.services.Book.UpdateBook(ctx, input.BookID, userID, req)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.BookID, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}
