package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jserwatka/network/internal/domain"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// Requires gorm.Config.TranslateError.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// newestFirst orders posts reverse-chronologically with a stable tie-break.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// oldestFirst orders comments chronologically with a stable tie-break.
func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

func paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if offset > 0 {
			db = db.Offset(offset)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

// deletePostsCascade removes posts, their comments and every reaction on either.
func deletePostsCascade(tx *gorm.DB, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}

	var commentIDs []uint
	if err := tx.Model(&domain.CommentModel{}).Where("post_id IN ?", postIDs).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if err := deleteCommentsCascade(tx, commentIDs); err != nil {
		return err
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&domain.ReactionModel{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", postIDs).Delete(&domain.PostModel{}).Error
}

// deleteCommentsCascade removes comments and their reactions.
func deleteCommentsCascade(tx *gorm.DB, commentIDs []uint) error {
	if len(commentIDs) == 0 {
		return nil
	}
	if err := tx.Where("comment_id IN ?", commentIDs).Delete(&domain.ReactionModel{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", commentIDs).Delete(&domain.CommentModel{}).Error
}
