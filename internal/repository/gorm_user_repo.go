package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jserwatka/network/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts the user and an empty or prefilled profile atomically.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	model := &domain.UserModel{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueUser(tx, model); err != nil {
			return err
		}
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		pm := &domain.ProfileModel{UserID: model.ID}
		if profile != nil {
			pm.Name = profile.Name
			pm.About = profile.About
			pm.Country = profile.Country
			pm.DateOfBirth = profile.DateOfBirth
		}
		return tx.Create(pm).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent registration; report which field collided.
			if cerr := uniqueUser(r.db.WithContext(ctx), model); cerr != nil {
				return cerr
			}
			return ErrUsernameExists
		}
		return err
	}

	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	if profile != nil {
		profile.UserID = model.ID
	}
	return nil
}

func uniqueUser(db *gorm.DB, m *domain.UserModel) error {
	var n int64
	if err := db.Model(&domain.UserModel{}).Where("username = ?", m.Username).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrUsernameExists
	}
	if err := db.Model(&domain.UserModel{}).Where("email = ?", m.Email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrEmailExists
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByUsername retrieves a user by handle.
func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, "username = ?", username).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByIDs retrieves the existing users among ids.
func (r *GormUserRepository) GetByIDs(ctx context.Context, ids []uint) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	var models []domain.UserModel
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("username ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(models))
	for i := range models {
		users = append(users, models[i].ToDomain())
	}
	return users, nil
}

// GetProfile retrieves the profile of a user.
func (r *GormUserRepository) GetProfile(ctx context.Context, userID uint) (*domain.Profile, error) {
	var model domain.ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateProfile overwrites the editable profile fields.
func (r *GormUserRepository) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	result := r.db.WithContext(ctx).Model(&domain.ProfileModel{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]interface{}{
			"name":          profile.Name,
			"about":         profile.About,
			"country":       profile.Country,
			"date_of_birth": profile.DateOfBirth,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user, their profile, content, reactions and follow edges.
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.UserModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}

		var postIDs []uint
		if err := tx.Model(&domain.PostModel{}).Where("user_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := deletePostsCascade(tx, postIDs); err != nil {
			return err
		}

		var commentIDs []uint
		if err := tx.Model(&domain.CommentModel{}).Where("user_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if err := deleteCommentsCascade(tx, commentIDs); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&domain.ReactionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&domain.FollowModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.ProfileModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.UserModel{}, "id = ?", id).Error
	})
}

var _ UserRepository = (*GormUserRepository)(nil)
