package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfieapp/shelfie-server/internal/domain"
)

func (s *Server) registerEngagementRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "toggleLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{bookId}/like",
		Summary:     "Toggle like",
		Description: "Likes the book, or removes the like if the caller already liked it",
		Tags:        []string{"Engagement"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "addComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{bookId}/comments",
		Summary:     "Add comment",
		Tags:        []string{"Engagement"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "addReply",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{bookId}/comments/{commentId}/replies",
		Summary:     "Reply to comment",
		Tags:        []string{"Engagement"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddReply)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{bookId}/comments/{commentId}",
		Summary:     "Delete comment",
		Description: "Deletes a comment and its replies. Allowed for the comment author and the book owner.",
		Tags:        []string{"Engagement"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)
}

// === DTOs ===

// LikesResponse contains the updated like set.
type LikesResponse struct {
	Likes []string `json:"likes" doc:"IDs of users who like the book"`
}

// LikesOutput wraps the likes response for Huma.
type LikesOutput struct {
	Body LikesResponse
}

// CommentRequest is the request body for comments and replies.
type CommentRequest struct {
	Text string `json:"text,omitempty" doc:"Comment text"`
}

// AddCommentInput wraps the add comment request for Huma.
type AddCommentInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	Body          CommentRequest
}

// AddReplyInput wraps the add reply request for Huma.
type AddReplyInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	CommentID     string `path:"commentId" doc:"Comment ID"`
	Body          CommentRequest
}

// CommentIDInput contains parameters for addressing a comment.
type CommentIDInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	CommentID     string `path:"commentId" doc:"Comment ID"`
}

// CommentsResponse contains the updated comment thread.
type CommentsResponse struct {
	Comments []domain.Comment `json:"comments" doc:"All comments on the book, oldest first"`
}

// CommentsOutput wraps the comments response for Huma.
type CommentsOutput struct {
	Body CommentsResponse
}

// === Handlers ===

// engagingActor authenticates a member and charges the per-user rate limit.
func (s *Server) engagingActor(authHeader string) (string, error) {
	userID, err := s.requireMember(authHeader)
	if err != nil {
		return "", err
	}
	if err := s.limitActor(userID); err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Server) handleToggleLike(ctx context.Context, input *BookIDInput) (*LikesOutput, error) {
	userID, err := s.engagingActor(input.Authorization)
	if err != nil {
		return nil, err
	}

	likes, err := s.services.Engagement.ToggleLike(ctx, input.BookID, userID)
	if err != nil {
		return nil, err
	}
	return &LikesOutput{Body: LikesResponse{Likes: likes}}, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentsOutput, error) {
	userID, err := s.engagingActor(input.Authorization)
	if err != nil {
		return nil, err
	}

	actor, err := s.services.User.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	comments, err := s.services.Engagement.AddComment(ctx, input.BookID, userID, actor.Username, input.Body.Text)
	if err != nil {
		return nil, err
	}
	return &CommentsOutput{Body: CommentsResponse{Comments: comments}}, nil
}

func (s *Server) handleAddReply(ctx context.Context, input *AddReplyInput) (*CommentsOutput, error) {
	userID, err := s.engagingActor(input.Authorization)
	if err != nil {
		return nil, err
	}

	actor, err := s.services.User.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	comments, err := s.services.Engagement.AddReply(ctx, input.BookID, input.CommentID, userID, actor.Username, input.Body.Text)
	if err != nil {
		return nil, err
	}
	return &CommentsOutput{Body: CommentsResponse{Comments: comments}}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*CommentsOutput, error) {
	userID, err := s.requireMember(input.Authorization)
	if err != nil {
		return nil, err
	}

	comments, err := s.services.Engagement.DeleteComment(ctx, input.BookID, input.CommentID, userID)
	if err != nil {
		return nil, err
	}
	return &CommentsOutput{Body: CommentsResponse{Comments: comments}}, nil
}
