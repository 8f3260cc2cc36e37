package service

import (
	"context"
	"log/slog"

	"github.com/shelfieapp/shelfie-server/internal/domain"
	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
	"github.com/shelfieapp/shelfie-server/internal/metrics"
	"github.com/shelfieapp/shelfie-server/internal/store"
)

// SocialGraphService maintains the follow graph. An edge lives in two
// documents: the actor's following list and the target's followers list.
type SocialGraphService struct {
	store   store.Store
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewSocialGraphService creates a new social graph service.
func NewSocialGraphService(store store.Store, recorder metrics.Recorder, logger *slog.Logger) *SocialGraphService {
	if recorder == nil {
		recorder = metrics.Nop
	}
	return &SocialGraphService{
		store:   store,
		metrics: recorder,
		logger:  logger,
	}
}

// FollowResult is the outcome of a follow.
type FollowResult struct {
	User     *domain.User `json:"user"`
	IsFriend bool         `json:"isFriend"`
}

// Follow makes the actor follow the user with targetHandle.
//
// The actor document is written before the target. If the target write fails
// the edge is half-applied; calling Follow again detects that and writes only
// the target side.
func (s *SocialGraphService) Follow(ctx context.Context, actorID, targetHandle string) (*FollowResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	actor, target, err := s.loadPair(ctx, actorID, targetHandle)
	if err != nil {
		return nil, err
	}

	if actor.Username == target.Username {
		return nil, domainerrors.InvalidOperation("Cannot follow yourself")
	}

	if actor.IsFollowing(target.Username) {
		if target.HasFollower(actor.Username) {
			return nil, domainerrors.AlreadyExists("Already following this user")
		}

		s.logger.Warn("repairing half-applied follow",
			"actor_id", actor.ID, "target_id", target.ID)
		target.AddFollower(actor.Username)
		target.Recount()
		target.Touch()
		if err := s.store.UpdateUser(ctx, target); err != nil {
			return nil, translate(err, "update followed user", msgUserNotFound)
		}
		return &FollowResult{User: actor, IsFriend: actor.IsMutual(target.Username)}, nil
	}

	actor.AddFollowing(target.Username)
	target.AddFollower(actor.Username)
	actor.Recount()
	target.Recount()
	actor.Touch()
	target.Touch()

	if err := s.store.UpdateUser(ctx, actor); err != nil {
		return nil, translate(err, "update follower", msgUserNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateUser(ctx, target); err != nil {
		s.logger.Error("follow half-applied: target write failed",
			"actor_id", actor.ID, "target_id", target.ID, "error", err)
		return nil, translate(err, "update followed user", msgUserNotFound)
	}

	s.metrics.Follow()
	isFriend := actor.IsMutual(target.Username)
	s.logger.Info("user followed",
		"actor_id", actor.ID, "target_id", target.ID, "mutual", isFriend)

	return &FollowResult{User: actor, IsFriend: isFriend}, nil
}

// Unfollow removes the edge from the actor to targetHandle. Unfollowing a user
// the actor does not follow writes nothing and returns the actor unchanged.
func (s *SocialGraphService) Unfollow(ctx context.Context, actorID, targetHandle string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	actor, target, err := s.loadPair(ctx, actorID, targetHandle)
	if err != nil {
		return nil, err
	}

	actorChanged := actor.RemoveFollowing(target.Username)
	targetChanged := target.RemoveFollower(actor.Username)
	if !actorChanged && !targetChanged {
		return actor, nil
	}

	if actorChanged {
		actor.Recount()
		actor.Touch()
		if err := s.store.UpdateUser(ctx, actor); err != nil {
			return nil, translate(err, "update follower", msgUserNotFound)
		}
	}
	if targetChanged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target.Recount()
		target.Touch()
		if err := s.store.UpdateUser(ctx, target); err != nil {
			s.logger.Error("unfollow half-applied: target write failed",
				"actor_id", actor.ID, "target_id", target.ID, "error", err)
			return nil, translate(err, "update followed user", msgUserNotFound)
		}
	}

	s.metrics.Unfollow()
	s.logger.Info("user unfollowed", "actor_id", actor.ID, "target_id", target.ID)
	return actor, nil
}

func (s *SocialGraphService) loadPair(ctx context.Context, actorID, targetHandle string) (*domain.User, *domain.User, error) {
	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return nil, nil, translate(err, "get user", msgUserNotFound)
	}
	target, err := s.store.GetUserByUsername(ctx, targetHandle)
	if err != nil {
		return nil, nil, translate(err, "get user by username", msgUserNotFound)
	}
	return actor, target, nil
}
