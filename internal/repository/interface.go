package repository

import (
	"context"
	"errors"

	"github.com/jserwatka/network/internal/domain"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameExists      = errors.New("username already exists")
	ErrEmailExists         = errors.New("email already exists")
	ErrFollowNotFound      = errors.New("follow relationship not found")
	ErrAlreadyFollowing    = errors.New("already following")
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrReactionNotFound    = errors.New("reaction not found")
	ErrTargetNotFound      = errors.New("target not found")
	ErrConstraintViolation = errors.New("constraint violation")
)

// UserRepository defines persistence operations for users and their profiles.
type UserRepository interface {
	// Create inserts the user and its profile in one transaction.
	Create(ctx context.Context, user *domain.User, profile *domain.Profile) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByIDs returns the users that exist, ordered by username.
	GetByIDs(ctx context.Context, ids []uint) ([]*domain.User, error)
	GetProfile(ctx context.Context, userID uint) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
	// Delete removes the user with everything they own.
	Delete(ctx context.Context, id uint) error
}

// FollowRepository defines persistence operations for follow relationships.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	FolloweeIDs(ctx context.Context, userID uint) ([]uint, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
	// RemoveUser deletes every edge touching userID.
	RemoveUser(ctx context.Context, userID uint) error
}

// PostRepository defines persistence operations for posts.
// Lists are reverse-chronological with id descending as the tie-break.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uint) (*domain.Post, error)
	UpdateContent(ctx context.Context, id uint, content string) (*domain.Post, error)
	// Delete removes the post, its comments and all reactions on either.
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*domain.Post, error)
	Count(ctx context.Context) (int64, error)
	ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]*domain.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	// AllByAuthor returns every post by authorID.
	AllByAuthor(ctx context.Context, authorID uint) ([]*domain.Post, error)
}

// CommentRepository defines persistence operations for comments.
// Lists are chronological with id ascending as the tie-break.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uint) (*domain.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) (*domain.Comment, error)
	// Delete removes the comment and its reactions.
	Delete(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint) ([]*domain.Comment, error)
	ListByPosts(ctx context.Context, postIDs []uint) (map[uint][]*domain.Comment, error)
	CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
}

// ReactionRepository is the reaction ledger.
type ReactionRepository interface {
	TargetExists(ctx context.Context, target domain.Target) (bool, error)
	Get(ctx context.Context, userID uint, target domain.Target) (*domain.Reaction, error)
	// Upsert creates, re-kinds or leaves alone the single reaction of userID on target.
	Upsert(ctx context.Context, userID uint, target domain.Target, kind domain.ReactionKind) (*domain.Reaction, domain.UpsertOutcome, error)
	Delete(ctx context.Context, userID uint, target domain.Target) (bool, error)
	Tally(ctx context.Context, target domain.Target) (domain.Tally, error)
	Tallies(ctx context.Context, kind domain.TargetKind, ids []uint) (map[uint]domain.Tally, error)
	UserReactions(ctx context.Context, userID uint, kind domain.TargetKind, ids []uint) (map[uint]domain.ReactionKind, error)
}
