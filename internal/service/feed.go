package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// maxOwnerLookups bounds concurrent author lookups while decorating a feed.
const maxOwnerLookups = 8

// FeedService assembles the social feed.
type FeedService struct {
	store  store.Store
	logger *slog.Logger
}

// NewFeedService creates a new feed service.
func NewFeedService(store store.Store, logger *slog.Logger) *FeedService {
	return &FeedService{store: store, logger: logger}
}

// FeedRequest selects whose posts a feed shows. FollowAll is guest mode:
// every registered user counts as followed and ViewerID is ignored.
type FeedRequest struct {
	ViewerID  string
	FollowAll bool
}

// Feed returns the newest posts by the viewer and everyone the viewer follows,
// most recently updated first, each decorated with its author's handle and
// avatar.
func (s *FeedService) Feed(ctx context.Context, req FeedRequest) ([]*domain.FeedPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ownerIDs, err := s.authorIDs(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(ownerIDs) == 0 {
		return []*domain.FeedPost{}, nil
	}

	books, err := s.store.ListRecentBooksByOwners(ctx, ownerIDs, domain.FeedLimit)
	if err != nil {
		return nil, translate(err, "list feed books", msgBookNotFound)
	}

	authors := s.lookupAuthors(ctx, books)

	posts := make([]*domain.FeedPost, 0, len(books))
	for _, b := range books {
		b.Normalize()
		posts = append(posts, &domain.FeedPost{Book: *b, User: authors[b.UserID]})
	}
	return posts, nil
}

// authorIDs resolves the viewer's following list plus the viewer to user IDs.
func (s *FeedService) authorIDs(ctx context.Context, req FeedRequest) ([]string, error) {
	if req.FollowAll {
		users, err := s.store.ListUsers(ctx)
		if err != nil {
			return nil, translate(err, "list users", msgUserNotFound)
		}
		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		return ids, nil
	}

	viewer, err := s.store.GetUser(ctx, req.ViewerID)
	if err != nil {
		return nil, translate(err, "get viewer", msgUserNotFound)
	}

	ids := []string{viewer.ID}
	for _, h := range viewer.Following {
		if h == viewer.Username {
			continue
		}
		u, err := s.store.GetUserByUsername(ctx, h)
		if err != nil {
			s.logger.Debug("feed: dropping unresolvable handle",
				"viewer_id", viewer.ID, "handle", h, "error", err)
			continue
		}
		if !slices.Contains(ids, u.ID) {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// lookupAuthors resolves each distinct owner once. Owners whose lookup fails
// are missing from the result.
func (s *FeedService) lookupAuthors(ctx context.Context, books []*domain.Book) map[string]*domain.PostAuthor {
	var owners []string
	for _, b := range books {
		if !slices.Contains(owners, b.UserID) {
			owners = append(owners, b.UserID)
		}
	}

	var (
		mu      sync.Mutex
		authors = make(map[string]*domain.PostAuthor, len(owners))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxOwnerLookups)
	for _, ownerID := range owners {
		g.Go(func() error {
			u, err := s.store.GetUser(gctx, ownerID)
			if err != nil {
				s.logger.Debug("feed: author lookup failed", "owner_id", ownerID, "error", err)
				return nil
			}
			mu.Lock()
			authors[ownerID] = &domain.PostAuthor{
				Username:       u.Username,
				ProfilePicture: u.ProfilePicture,
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return authors
}
