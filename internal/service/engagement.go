package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
	"github.com/shelfieapp/shelfie-server/internal/metrics"
	"github.com/shelfieapp/shelfie-server/internal/store"
	"github.com/shelfieapp/shelfie-server/internal/textutil"
	"github.com/shelfieapp/shelfie-server/internal/validation"
)

// unknownSender is the notification sender name when the actor cannot be
// resolved.
const unknownSender = "Someone"

// MaxCommentLength is the maximum rune length of a comment or reply.
const MaxCommentLength = 2000

// EngagementService applies likes, comments and replies to posts and fans out
// the resulting notifications.
//
// Every mutation writes the book first and the notification second. A failed
// notification step surfaces as an error after the book change is stored.
type EngagementService struct {
	store         store.Store
	notifications *NotificationService
	validator     *validation.Validator
	metrics       metrics.Recorder
	logger        *slog.Logger
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(
	store store.Store,
	notifications *NotificationService,
	validator *validation.Validator,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *EngagementService {
	if recorder == nil {
		recorder = metrics.Nop
	}
	return &EngagementService{
		store:         store,
		notifications: notifications,
		validator:     validator,
		metrics:       recorder,
		logger:        logger,
	}
}

// ToggleLike likes the book for the actor, or unlikes it if already liked,
// and returns the new likes list.
func (s *EngagementService) ToggleLike(ctx context.Context, bookID, actorID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "get book", msgBookNotFound)
	}
	book.Normalize()

	liked := book.ToggleLike(actorID)
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, translate(err, "update likes", msgBookNotFound)
	}
	s.metrics.Like(liked)

	if actorID == book.UserID {
		return book.Likes, nil
	}

	if liked {
		n := &domain.Notification{
			RecipientID:    book.UserID,
			SenderID:       actorID,
			SenderUsername: s.senderName(ctx, actorID),
			Type:           domain.NotificationLike,
			BookID:         book.ID,
			BookTitle:      book.Title,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return nil, err
		}
		return book.Likes, nil
	}

	s.notifications.Retract(ctx, domain.NotificationMatch{
		RecipientID: book.UserID,
		SenderID:    actorID,
		Type:        domain.NotificationLike,
		BookID:      book.ID,
	})
	return book.Likes, nil
}

// AddComment appends a comment by the actor and returns the book's comments.
func (s *EngagementService) AddComment(ctx context.Context, bookID, actorID, actorHandle, text string) ([]domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := s.cleanText(text)
	if err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "get book", msgBookNotFound)
	}
	book.Normalize()

	book.Comments = append(book.Comments, domain.NewComment(actorID, actorHandle, text))
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, translate(err, "add comment", msgBookNotFound)
	}
	s.metrics.Comment(false)

	if actorID != book.UserID {
		n := &domain.Notification{
			RecipientID:    book.UserID,
			SenderID:       actorID,
			SenderUsername: actorHandle,
			Type:           domain.NotificationComment,
			BookID:         book.ID,
			BookTitle:      book.Title,
			CommentText:    textutil.Snippet(text),
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return nil, err
		}
	}
	return book.Comments, nil
}

// AddReply appends a reply to a comment and notifies the comment's author.
func (s *EngagementService) AddReply(ctx context.Context, bookID, commentID, actorID, actorHandle, text string) ([]domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := s.cleanText(text)
	if err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "get book", msgBookNotFound)
	}
	book.Normalize()

	comment := book.FindComment(commentID)
	if comment == nil {
		return nil, domainerrors.NotFound(msgCommentNotFound)
	}
	comment.Replies = append(comment.Replies, domain.NewReply(actorID, actorHandle, text))
	commentAuthor := comment.UserID

	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, translate(err, "add reply", msgBookNotFound)
	}
	s.metrics.Comment(true)

	if actorID != commentAuthor {
		n := &domain.Notification{
			RecipientID:    commentAuthor,
			SenderID:       actorID,
			SenderUsername: actorHandle,
			Type:           domain.NotificationReply,
			BookID:         book.ID,
			BookTitle:      book.Title,
			CommentText:    textutil.Snippet(text),
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return nil, err
		}
	}
	return book.Comments, nil
}

// DeleteComment removes a comment and its replies. Only the comment's author
// or the book's owner may delete it. Notifications it produced are kept.
func (s *EngagementService) DeleteComment(ctx context.Context, bookID, commentID, actorID string) ([]domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "get book", msgBookNotFound)
	}
	book.Normalize()

	comment := book.FindComment(commentID)
	if comment == nil {
		return nil, domainerrors.NotFound(msgCommentNotFound)
	}
	if comment.UserID != actorID && book.UserID != actorID {
		return nil, domainerrors.Forbidden("Only the comment author or the book owner can delete this comment")
	}

	book.RemoveComment(commentID)
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, translate(err, "delete comment", msgBookNotFound)
	}

	s.logger.Info("comment deleted", "book_id", book.ID, "comment_id", commentID, "actor_id", actorID)
	return book.Comments, nil
}

func (s *EngagementService) cleanText(text string) (string, error) {
	text = textutil.Normalize(text)
	if text == "" {
		return "", domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"text": "is required",
		})
	}
	if err := s.validator.Var("text", text, "max="+strconv.Itoa(MaxCommentLength)); err != nil {
		return "", err
	}
	return text, nil
}

func (s *EngagementService) senderName(ctx context.Context, actorID string) string {
	u, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		s.logger.Debug("like: sender lookup failed", "user_id", actorID, "error", err)
		return unknownSender
	}
	return u.Username
}
