package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
	"github.com/shelfieapp/shelfie-server/internal/handle"
	"github.com/shelfieapp/shelfie-server/internal/id"
	"github.com/shelfieapp/shelfie-server/internal/search"
	"github.com/shelfieapp/shelfie-server/internal/store"
	"github.com/shelfieapp/shelfie-server/internal/textutil"
	"github.com/shelfieapp/shelfie-server/internal/validation"
)

// Profile field limits.
const (
	MaxUsernameLength = 30
	MaxBioLength      = 500
)

var (
	usernameTag = "required,max=" + strconv.Itoa(MaxUsernameLength) + ",handle"
	bioTag      = "max=" + strconv.Itoa(MaxBioLength)
)

// UserService manages user accounts and profiles.
type UserService struct {
	store     store.Store
	index     *search.UserIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service. index may be nil, in which case
// search returns no results and profile changes are not indexed.
func NewUserService(
	store store.Store,
	index *search.UserIndex,
	validator *validation.Validator,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		store:     store,
		index:     index,
		validator: validator,
		logger:    logger,
	}
}

// SignInRequest carries the identity the OAuth front end resolved.
type SignInRequest struct {
	GoogleID   string `json:"googleId" validate:"required,max=255"`
	Email      string `json:"email" validate:"omitempty,email"`
	GivenName  string `json:"given_name" validate:"max=100"`
	FamilyName string `json:"family_name" validate:"max=100"`
	Picture    string `json:"picture" validate:"omitempty,url"`
}

// SignIn returns the user for req.GoogleID, creating it on first sign-in.
// The boolean reports whether the user was created.
func (s *UserService) SignIn(ctx context.Context, req SignInRequest) (*domain.User, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, false, err
	}

	user, err := s.store.GetUserByGoogleID(ctx, req.GoogleID)
	switch {
	case err == nil:
		if user.ProfilePicture == "" && req.Picture != "" {
			user.ProfilePicture = req.Picture
			user.Touch()
			if err := s.store.UpdateUser(ctx, user); err != nil {
				return nil, false, translate(err, "update user picture", msgUserNotFound)
			}
		}
		return user, false, nil
	case !isNotFound(err):
		return nil, false, translate(err, "get user", msgUserNotFound)
	}

	username, err := handle.Unique(ctx, handle.Base(req.GivenName, req.FamilyName), s.handleTaken)
	if err != nil {
		return nil, false, domainerrors.Wrap(err, domainerrors.CodeInternal, "derive username")
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, false, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate user id")
	}

	user = &domain.User{
		Document:       domain.Document{ID: userID},
		GoogleID:       req.GoogleID,
		Email:          req.Email,
		GivenName:      textutil.Normalize(req.GivenName),
		FamilyName:     textutil.Normalize(req.FamilyName),
		Username:       username,
		Bio:            domain.DefaultBio,
		ProfilePicture: req.Picture,
		Following:      []string{},
		Followers:      []string{},
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, false, translate(err, "create user", msgUserNotFound)
		}
		// A concurrent first sign-in won the insert.
		existing, getErr := s.store.GetUserByGoogleID(ctx, req.GoogleID)
		if getErr != nil {
			return nil, false, domainerrors.Conflict(msgUsernameTaken).WithCause(err)
		}
		return existing, false, nil
	}

	s.reindex(user)
	s.logger.Info("user created", "user_id", user.ID, "username", user.Username)
	return user, true, nil
}

func (s *UserService) handleTaken(ctx context.Context, h string) (bool, error) {
	_, err := s.store.GetUserByUsername(ctx, h)
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "get user", msgUserNotFound)
	}
	return user, nil
}

// GetByUsername returns a user by handle.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, translate(err, "get user by username", msgUserNotFound)
	}
	return user, nil
}

// GetByGoogleID returns a user by external auth identifier.
func (s *UserService) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByGoogleID(ctx, googleID)
	if err != nil {
		return nil, translate(err, "get user by google id", msgUserNotFound)
	}
	return user, nil
}

// ProfileUpdate contains optional fields to update. Nil means unchanged.
// An empty ProfilePicture clears the avatar.
type ProfileUpdate struct {
	Username       *string
	Bio            *string
	ProfilePicture *string
}

// UpdateProfile applies update to the actor's profile.
//
// A handle change is written to the actor first, then rewritten in the
// following and followers lists of every related user, one document at a
// time. Failures in that second phase are logged and skipped.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, update ProfileUpdate) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return nil, translate(err, "get user", msgUserNotFound)
	}

	oldUsername := user.Username
	changed := false

	if update.Username != nil && *update.Username != user.Username {
		newUsername := *update.Username
		if err := s.validator.Var("username", newUsername, usernameTag); err != nil {
			return nil, err
		}
		taken, err := s.store.GetUserByUsername(ctx, newUsername)
		switch {
		case err == nil && taken.ID != user.ID:
			return nil, domainerrors.Conflict(msgUsernameTaken)
		case err != nil && !isNotFound(err):
			return nil, translate(err, "check username", msgUserNotFound)
		}
		user.Username = newUsername
		changed = true
	}

	if update.Bio != nil {
		if err := s.validator.Var("bio", *update.Bio, bioTag); err != nil {
			return nil, err
		}
		user.Bio = textutil.Markdown(*update.Bio)
		changed = true
	}

	if update.ProfilePicture != nil {
		picture := *update.ProfilePicture
		if picture != "" {
			if err := s.validator.Var("profilePicture", picture, "url"); err != nil {
				return nil, err
			}
		}
		user.ProfilePicture = picture
		user.HasCustomProfilePicture = picture != ""
		changed = true
	}

	if !changed {
		return user, nil
	}

	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict(msgUsernameTaken).WithCause(err)
		}
		return nil, translate(err, "update user", msgUserNotFound)
	}

	if user.Username != oldUsername {
		s.renameInGraph(ctx, user, oldUsername)
		s.logger.Info("username changed", "user_id", user.ID, "from", oldUsername, "to", user.Username)
	}

	s.reindex(user)
	return user, nil
}

// renameInGraph rewrites oldUsername to the user's new handle in the graph
// lists of every user on either side of an edge.
func (s *UserService) renameInGraph(ctx context.Context, user *domain.User, oldUsername string) {
	for _, h := range user.Related() {
		if ctx.Err() != nil {
			return
		}

		other, err := s.store.GetUserByUsername(ctx, h)
		if err != nil {
			s.logger.Warn("rename: related user lookup failed",
				"user_id", user.ID, "related", h, "error", err)
			continue
		}
		if !other.RenameInGraph(oldUsername, user.Username) {
			continue
		}
		other.Touch()
		if err := s.store.UpdateUser(ctx, other); err != nil {
			s.logger.Warn("rename: related user update failed",
				"user_id", user.ID, "related_id", other.ID, "error", err)
		}
	}
}

// SearchUsers finds users by handle or name.
func (s *UserService) SearchUsers(ctx context.Context, q string, limit int) ([]domain.PublicUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.index == nil {
		return []domain.PublicUser{}, nil
	}

	hits, err := s.index.Search(ctx, q, limit)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search users")
	}

	out := make([]domain.PublicUser, 0, len(hits))
	for _, hit := range hits {
		user, err := s.store.GetUser(ctx, hit.ID)
		if err != nil {
			// Index entries can outlive a failed write; skip them.
			s.logger.Debug("search hit without user", "user_id", hit.ID, "error", err)
			continue
		}
		out = append(out, user.Public())
	}
	return out, nil
}

// RebuildIndex re-indexes every user from the store.
func (s *UserService) RebuildIndex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return translate(err, "list users", msgUserNotFound)
	}
	if err := s.index.Rebuild(); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "reset search index")
	}

	docs := make([]*search.UserDocument, 0, len(users))
	for _, u := range users {
		docs = append(docs, search.NewUserDocument(u))
	}
	if err := s.index.IndexUsers(docs); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "index users")
	}

	s.logger.Info("user search index rebuilt", "users", len(docs))
	return nil
}

func (s *UserService) reindex(user *domain.User) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexUser(search.NewUserDocument(user)); err != nil {
		s.logger.Warn("failed to index user", "user_id", user.ID, "error", err)
	}
}
