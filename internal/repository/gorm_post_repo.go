package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jserwatka/network/internal/domain"
)

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-backed post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts a post and fills in its id, timestamps and author handle.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	model := &domain.PostModel{
		UserID:  post.AuthorID,
		Content: post.Content,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	created, err := r.GetByID(ctx, model.ID)
	if err != nil {
		return err
	}
	*post = *created
	return nil
}

// GetByID retrieves a post with its author.
func (r *GormPostRepository) GetByID(ctx context.Context, id uint) (*domain.Post, error) {
	var model domain.PostModel
	if err := r.db.WithContext(ctx).Preload("Author").First(&model, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateContent replaces the body of a post. created_at is never touched.
func (r *GormPostRepository) UpdateContent(ctx context.Context, id uint, content string) (*domain.Post, error) {
	result := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("id = ?", id).
		Update("content", content)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the post with its comments and reactions.
func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.PostModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrPostNotFound
		}
		return deletePostsCascade(tx, []uint{id})
	})
}

// List returns one window of all posts.
func (r *GormPostRepository) List(ctx context.Context, offset, limit int) ([]*domain.Post, error) {
	return r.find(r.db.WithContext(ctx).Scopes(newestFirst, paginate(offset, limit)))
}

// Count returns the number of posts.
func (r *GormPostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.PostModel{}).Count(&n).Error
	return n, err
}

// ListByAuthor returns one window of an author's posts.
func (r *GormPostRepository) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]*domain.Post, error) {
	return r.find(r.db.WithContext(ctx).
		Where("user_id = ?", authorID).
		Scopes(newestFirst, paginate(offset, limit)))
}

// CountByAuthor returns the number of posts by an author.
func (r *GormPostRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.PostModel{}).Where("user_id = ?", authorID).Count(&n).Error
	return n, err
}

// AllByAuthor returns every post by an author.
func (r *GormPostRepository) AllByAuthor(ctx context.Context, authorID uint) ([]*domain.Post, error) {
	return r.ListByAuthor(ctx, authorID, 0, 0)
}

func (r *GormPostRepository) find(q *gorm.DB) ([]*domain.Post, error) {
	var models []domain.PostModel
	if err := q.Preload("Author").Find(&models).Error; err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].ToDomain())
	}
	return posts, nil
}

var _ PostRepository = (*GormPostRepository)(nil)
