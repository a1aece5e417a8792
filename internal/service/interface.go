package service

import (
	"context"
	"errors"
	"time"

	"github.com/jserwatka/network/internal/consumer"
	"github.com/jserwatka/network/internal/domain"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrParentNotFound      = errors.New("parent post not found")
	ErrTargetNotFound      = errors.New("post or comment does not exist")
	ErrNotOwner            = errors.New("only the author can change this")
	ErrEmptyBody           = errors.New("content must not be empty")
	ErrSelfFollow          = errors.New("cannot follow yourself")
	ErrDuplicateHandle     = errors.New("username already taken")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid username and/or password")
	ErrPasswordMismatch    = errors.New("passwords must match")
	ErrInvalidDate         = errors.New("date of birth must be YYYY-MM-DD")
	ErrConstraintViolation = errors.New("constraint violation")

	ErrUnknownReactionKind = domain.ErrUnknownReactionKind
	ErrUnknownTargetKind   = domain.ErrUnknownTargetKind
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(userID uint, username string) (string, time.Time, error)
}

// UserService handles accounts and profiles.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	GetUser(ctx context.Context, userID uint) (*domain.User, error)
	GetProfile(ctx context.Context, userID uint) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID uint, req *domain.UpdateProfileRequest) (*domain.Profile, error)
	DeleteAccount(ctx context.Context, userID uint) error
}

// SocialGraphService manages the follow graph and its cached counters.
type SocialGraphService interface {
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	// ToggleFollow flips the edge and reports whether followerID now follows followedID.
	ToggleFollow(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]domain.User, error)
	Following(ctx context.Context, userID uint) ([]domain.User, error)
	Counts(ctx context.Context, userID uint) (domain.FollowCounts, error)
	HandleCDCEvent(ctx context.Context, event *consumer.DebeziumMessage) error
}

// ContentService creates, edits and deletes posts and comments.
type ContentService interface {
	CreatePost(ctx context.Context, authorID uint, content string) (*domain.Post, error)
	EditPost(ctx context.Context, postID, editorID uint, content string) (*domain.Post, error)
	DeletePost(ctx context.Context, postID, requesterID uint) error
	CreateComment(ctx context.Context, authorID, postID uint, content string) (*domain.Comment, error)
	EditComment(ctx context.Context, commentID, editorID uint, content string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, commentID, requesterID uint) error
	Comments(ctx context.Context, postID uint) ([]*domain.Comment, error)
}

// ReactionService applies the per-(user, target) reaction state machine.
type ReactionService interface {
	// React sets the user's reaction on target. An empty label means the default kind.
	React(ctx context.Context, userID uint, target domain.Target, label string) (*domain.Reaction, domain.UpsertOutcome, error)
	HasReacted(ctx context.Context, userID uint, target domain.Target) (bool, domain.ReactionKind, error)
	Remove(ctx context.Context, userID uint, target domain.Target) (bool, error)
	Tally(ctx context.Context, target domain.Target) (domain.Tally, error)
}

// FeedService composes paginated, annotated feeds. viewerID 0 is anonymous.
type FeedService interface {
	Global(ctx context.Context, viewerID uint, page int) (*domain.FeedPage, error)
	Author(ctx context.Context, viewerID, authorID uint, page int) (*domain.AuthorFeed, error)
	Following(ctx context.Context, viewerID uint, page int) (*domain.FeedPage, error)
}
