package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jserwatka/network/internal/domain"
)

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-backed comment repository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a comment if its parent post exists.
func (r *GormCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	model := &domain.CommentModel{
		UserID:  comment.AuthorID,
		PostID:  comment.PostID,
		Content: comment.Content,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.PostModel{}).Where("id = ?", comment.PostID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrPostNotFound
		}
		return tx.Create(model).Error
	})
	if err != nil {
		return err
	}

	created, err := r.GetByID(ctx, model.ID)
	if err != nil {
		return err
	}
	*comment = *created
	return nil
}

// GetByID retrieves a comment with its author.
func (r *GormCommentRepository) GetByID(ctx context.Context, id uint) (*domain.Comment, error) {
	var model domain.CommentModel
	if err := r.db.WithContext(ctx).Preload("Author").First(&model, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateContent replaces the body of a comment.
func (r *GormCommentRepository) UpdateContent(ctx context.Context, id uint, content string) (*domain.Comment, error) {
	result := r.db.WithContext(ctx).Model(&domain.CommentModel{}).
		Where("id = ?", id).
		Update("content", content)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrCommentNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the comment and its reactions.
func (r *GormCommentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.CommentModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrCommentNotFound
		}
		return deleteCommentsCascade(tx, []uint{id})
	})
}

// ListByPost returns the comments of a post, oldest first.
func (r *GormCommentRepository) ListByPost(ctx context.Context, postID uint) ([]*domain.Comment, error) {
	byPost, err := r.ListByPosts(ctx, []uint{postID})
	if err != nil {
		return nil, err
	}
	if c := byPost[postID]; c != nil {
		return c, nil
	}
	return []*domain.Comment{}, nil
}

// ListByPosts returns the comments of each post, oldest first.
func (r *GormCommentRepository) ListByPosts(ctx context.Context, postIDs []uint) (map[uint][]*domain.Comment, error) {
	result := make(map[uint][]*domain.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var models []domain.CommentModel
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id IN ?", postIDs).
		Scopes(oldestFirst).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	for i := range models {
		c := models[i].ToDomain()
		result[c.PostID] = append(result[c.PostID], c)
	}
	return result, nil
}

// CountByPosts returns the number of comments per post; posts without comments map to 0.
func (r *GormCommentRepository) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(postIDs))
	for _, id := range postIDs {
		result[id] = 0
	}
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		PostID uint
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.CommentModel{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.PostID] = row.Count
	}
	return result, nil
}

var _ CommentRepository = (*GormCommentRepository)(nil)
