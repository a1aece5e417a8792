package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, ":memory:", 1)
}

// newFileTestDB opens a sqlite file with a connection pool, so
// transactions on different connections really overlap.
func newFileTestDB(t *testing.T, maxOpen int) *gorm.DB {
	t.Helper()
	return openTestDB(t, filepath.Join(t.TempDir(), "network.db"), maxOpen)
}

func openTestDB(t *testing.T, path string, maxOpen int) *gorm.DB {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     path,
		MaxOpenConns: maxOpen,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, domain.Models()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func mustUser(t *testing.T, repo *GormUserRepository, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), u, nil))
	return u
}

func mustPost(t *testing.T, repo *GormPostRepository, author uint, content string) *domain.Post {
	t.Helper()
	p := &domain.Post{AuthorID: author, Content: content}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func countReactions(t *testing.T, db *gorm.DB, target domain.Target) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.ReactionModel{}).Where(targetColumn(target.Kind)+" = ?", target.ID).Count(&n).Error)
	return n
}

func setPostTime(t *testing.T, db *gorm.DB, id uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&domain.PostModel{}).Where("id = ?", id).UpdateColumn("created_at", at).Error)
}
