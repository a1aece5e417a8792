package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jserwatka/network/internal/audit"
	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/repository"
	"github.com/jserwatka/network/pkg/log"
	"github.com/jserwatka/network/pkg/pubsub"
)

// contentService implements ContentService.
type contentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	events   eventSink
}

// NewContentService creates a new ContentService.
func NewContentService(posts repository.PostRepository, comments repository.CommentRepository, pub pubsub.Publisher) ContentService {
	return &contentService{
		posts:    posts,
		comments: comments,
		events:   newEventSink(pub),
	}
}

func checkBody(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyBody
	}
	return nil
}

// CreatePost publishes a new post by authorID.
func (s *contentService) CreatePost(ctx context.Context, authorID uint, content string) (*domain.Post, error) {
	if err := checkBody(content); err != nil {
		return nil, err
	}

	post := &domain.Post{AuthorID: authorID, Content: content}
	if err := s.posts.Create(ctx, post); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to create post")
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionPostCreate, authorID, post.ID, "post created")
	s.events.emit(ctx, pubsub.EntityPost, post.ID, pubsub.EventPostCreated,
		pubsub.ContentPayload{ID: post.ID, AuthorID: authorID, Content: post.Content})
	return post, nil
}

// EditPost replaces the body of a post owned by editorID.
func (s *contentService) EditPost(ctx context.Context, postID, editorID uint, content string) (*domain.Post, error) {
	post, err := s.ownedPost(ctx, postID, editorID)
	if err != nil {
		return nil, err
	}
	if err := checkBody(content); err != nil {
		return nil, err
	}

	post, err = s.posts.UpdateContent(ctx, post.ID, content)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionPostEdit, editorID, postID, "post edited")
	s.events.emit(ctx, pubsub.EntityPost, postID, pubsub.EventPostUpdated,
		pubsub.ContentPayload{ID: postID, AuthorID: editorID, Content: post.Content})
	return post, nil
}

// DeletePost removes a post owned by requesterID with its comments and reactions.
func (s *contentService) DeletePost(ctx context.Context, postID, requesterID uint) error {
	if _, err := s.ownedPost(ctx, postID, requesterID); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	audit.LogTarget(ctx, audit.ActionPostDelete, requesterID, postID, "post deleted")
	s.events.emit(ctx, pubsub.EntityPost, postID, pubsub.EventPostDeleted,
		pubsub.ContentPayload{ID: postID, AuthorID: requesterID})
	return nil
}

func (s *contentService) ownedPost(ctx context.Context, postID, userID uint) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, ErrNotOwner
	}
	return post, nil
}

// CreateComment adds a comment by authorID under postID.
func (s *contentService) CreateComment(ctx context.Context, authorID, postID uint, content string) (*domain.Comment, error) {
	if err := checkBody(content); err != nil {
		return nil, err
	}

	comment := &domain.Comment{AuthorID: authorID, PostID: postID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrParentNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Uint(log.FieldPostID, postID).Msg("failed to create comment")
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionCommentCreate, authorID, comment.ID, "comment created")
	s.events.emit(ctx, pubsub.EntityComment, comment.ID, pubsub.EventCommentCreated,
		pubsub.ContentPayload{ID: comment.ID, AuthorID: authorID, PostID: postID, Content: comment.Content})
	return comment, nil
}

// EditComment replaces the body of a comment owned by editorID.
func (s *contentService) EditComment(ctx context.Context, commentID, editorID uint, content string) (*domain.Comment, error) {
	comment, err := s.ownedComment(ctx, commentID, editorID)
	if err != nil {
		return nil, err
	}
	if err := checkBody(content); err != nil {
		return nil, err
	}

	comment, err = s.comments.UpdateContent(ctx, comment.ID, content)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionCommentEdit, editorID, commentID, "comment edited")
	s.events.emit(ctx, pubsub.EntityComment, commentID, pubsub.EventCommentUpdated,
		pubsub.ContentPayload{ID: commentID, AuthorID: editorID, PostID: comment.PostID, Content: comment.Content})
	return comment, nil
}

// DeleteComment removes a comment owned by requesterID with its reactions.
func (s *contentService) DeleteComment(ctx context.Context, commentID, requesterID uint) error {
	comment, err := s.ownedComment(ctx, commentID, requesterID)
	if err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	audit.LogTarget(ctx, audit.ActionCommentDelete, requesterID, commentID, "comment deleted")
	s.events.emit(ctx, pubsub.EntityComment, commentID, pubsub.EventCommentDeleted,
		pubsub.ContentPayload{ID: commentID, AuthorID: requesterID, PostID: comment.PostID})
	return nil
}

func (s *contentService) ownedComment(ctx context.Context, commentID, userID uint) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, ErrNotOwner
	}
	return comment, nil
}

// Comments returns the comments of postID, oldest first.
func (s *contentService) Comments(ctx context.Context, postID uint) ([]*domain.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

var _ ContentService = (*contentService)(nil)
