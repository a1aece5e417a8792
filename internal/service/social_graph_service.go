package service

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/jserwatka/network/internal/audit"
	"github.com/jserwatka/network/internal/consumer"
	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/repository"
	"github.com/jserwatka/network/internal/store"
	"github.com/jserwatka/network/pkg/log"
	"github.com/jserwatka/network/pkg/pubsub"
)

// socialGraphService implements SocialGraphService.
type socialGraphService struct {
	graph  repository.FollowRepository
	users  repository.UserRepository
	store  store.CounterStore
	events eventSink
	fill   singleflight.Group
}

// NewSocialGraphService creates a new SocialGraphService instance.
func NewSocialGraphService(graph repository.FollowRepository, users repository.UserRepository, counters store.CounterStore, pub pubsub.Publisher) SocialGraphService {
	if counters == nil {
		counters = store.NopCounterStore{}
	}
	return &socialGraphService{
		graph:  graph,
		users:  users,
		store:  counters,
		events: newEventSink(pub),
	}
}

func (s *socialGraphService) checkPair(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return ErrSelfFollow
	}
	if _, err := s.users.GetByID(ctx, followedID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// Follow creates the edge followerID -> followedID. Following twice is a no-op.
func (s *socialGraphService) Follow(ctx context.Context, followerID, followedID uint) error {
	if err := s.checkPair(ctx, followerID, followedID); err != nil {
		return err
	}
	return s.follow(ctx, followerID, followedID)
}

func (s *socialGraphService) follow(ctx context.Context, followerID, followedID uint) error {
	l := log.Ctx(ctx)

	if err := s.graph.Follow(ctx, followerID, followedID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFollowing) {
			return nil
		}
		l.Error().Err(err).
			Uint("follower_id", followerID).
			Uint("followed_id", followedID).
			Msg("failed to follow user")
		return err
	}

	s.invalidate(ctx, followerID, followedID)
	audit.LogTarget(ctx, audit.ActionFollow, followerID, followedID, "user followed")
	s.events.emit(ctx, pubsub.EntityFollow, followedID, pubsub.EventFollowed,
		pubsub.FollowPayload{FollowerID: followerID, FollowedID: followedID})
	return nil
}

// Unfollow removes the edge. Unfollowing a user not followed is a no-op.
func (s *socialGraphService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if err := s.checkPair(ctx, followerID, followedID); err != nil {
		return err
	}
	return s.unfollow(ctx, followerID, followedID)
}

func (s *socialGraphService) unfollow(ctx context.Context, followerID, followedID uint) error {
	l := log.Ctx(ctx)

	if err := s.graph.Unfollow(ctx, followerID, followedID); err != nil {
		if errors.Is(err, repository.ErrFollowNotFound) {
			return nil
		}
		l.Error().Err(err).
			Uint("follower_id", followerID).
			Uint("followed_id", followedID).
			Msg("failed to unfollow user")
		return err
	}

	s.invalidate(ctx, followerID, followedID)
	audit.LogTarget(ctx, audit.ActionUnfollow, followerID, followedID, "user unfollowed")
	s.events.emit(ctx, pubsub.EntityFollow, followedID, pubsub.EventUnfollowed,
		pubsub.FollowPayload{FollowerID: followerID, FollowedID: followedID})
	return nil
}

// ToggleFollow follows when not following and unfollows otherwise.
func (s *socialGraphService) ToggleFollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	if err := s.checkPair(ctx, followerID, followedID); err != nil {
		return false, err
	}

	following, err := s.graph.IsFollowing(ctx, followerID, followedID)
	if err != nil {
		return false, err
	}
	if following {
		return false, s.unfollow(ctx, followerID, followedID)
	}
	return true, s.follow(ctx, followerID, followedID)
}

// IsFollowing reports whether followerID follows followedID.
func (s *socialGraphService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == 0 || followedID == 0 {
		return false, nil
	}
	return s.graph.IsFollowing(ctx, followerID, followedID)
}

// Followers returns the users following userID, ordered by username.
func (s *socialGraphService) Followers(ctx context.Context, userID uint) ([]domain.User, error) {
	ids, err := s.graph.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, ids)
}

// Following returns the users userID follows, ordered by username.
func (s *socialGraphService) Following(ctx context.Context, userID uint) ([]domain.User, error) {
	ids, err := s.graph.FolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, ids)
}

func (s *socialGraphService) resolve(ctx context.Context, ids []uint) ([]domain.User, error) {
	out := []domain.User{}
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.Email = ""
		out = append(out, *u)
	}
	return out, nil
}

// Counts returns follower and following counts. It checks Redis first; on a
// miss one caller per user loads from the graph and fills the cache.
func (s *socialGraphService) Counts(ctx context.Context, userID uint) (domain.FollowCounts, error) {
	l := log.Ctx(ctx)

	if err := s.store.RecordAccess(ctx, userID); err != nil {
		l.Warn().Err(err).Uint(log.FieldUserID, userID).Msg("failed to record hot key access")
	}

	counts, found, err := s.store.GetCounts(ctx, userID)
	if err != nil {
		l.Warn().Err(err).Uint(log.FieldUserID, userID).Msg("redis get counts failed, falling back to db")
	}
	if found {
		return *counts, nil
	}

	v, err, _ := s.fill.Do(strconv.FormatUint(uint64(userID), 10), func() (interface{}, error) {
		// Shared by every waiter on this key, so it must outlive the first caller.
		fillCtx := context.WithoutCancel(ctx)
		followers, err := s.graph.GetFollowersCount(fillCtx, userID)
		if err != nil {
			return nil, err
		}
		following, err := s.graph.GetFollowingCount(fillCtx, userID)
		if err != nil {
			return nil, err
		}
		c := domain.FollowCounts{Followers: followers, Following: following}
		if err := s.store.SetCounts(fillCtx, userID, c); err != nil {
			l.Warn().Err(err).Uint(log.FieldUserID, userID).Msg("failed to set counts in redis")
		}
		return c, nil
	})
	if err != nil {
		l.Error().Err(err).Uint(log.FieldUserID, userID).Msg("failed to count follows")
		return domain.FollowCounts{}, err
	}
	return v.(domain.FollowCounts), nil
}

func (s *socialGraphService) invalidate(ctx context.Context, ids ...uint) {
	if err := s.store.Invalidate(ctx, ids...); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to invalidate cached counts")
	}
}

// HandleCDCEvent drops cached counts of both ends of a changed follow row, so
// writes made outside this process are picked up too.
func (s *socialGraphService) HandleCDCEvent(ctx context.Context, event *consumer.DebeziumMessage) error {
	l := log.Ctx(ctx)
	op := event.Payload.Op

	switch op {
	case consumer.OpSnapshot:
		return nil

	case consumer.OpCreate, consumer.OpUpdate, consumer.OpDelete:
		rec := event.Record()
		if rec == nil {
			l.Warn().Str("op", op).Msg("CDC event carries no row")
			return nil
		}
		if err := s.store.Invalidate(ctx, rec.FollowerID, rec.FollowedID); err != nil {
			l.Error().Err(err).
				Uint("follower_id", rec.FollowerID).
				Uint("followed_id", rec.FollowedID).
				Msg("failed to invalidate counts from CDC event")
			return err
		}

	default:
		l.Warn().Str("op", op).Msg("unknown CDC operation, skipping")
	}

	return nil
}

var _ SocialGraphService = (*socialGraphService)(nil)
var _ consumer.CDCEventHandler = (*socialGraphService)(nil)
