package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/repository"
	"github.com/jserwatka/network/internal/store"
	"github.com/jserwatka/network/pkg/database"
	"github.com/jserwatka/network/pkg/pubsub"
)

type env struct {
	db        *gorm.DB
	users     *repository.GormUserRepository
	follows   *repository.GormFollowRepository
	posts     *repository.GormPostRepository
	comments  *repository.GormCommentRepository
	reactions *repository.GormReactionRepository
	counters  *memCounters
	events    *recordingPublisher

	social   SocialGraphService
	content  ContentService
	reaction ReactionService
	feed     FeedService
	account  UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     ":memory:",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, domain.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	e := &env{
		db:        db,
		users:     repository.NewGormUserRepository(db),
		follows:   repository.NewGormFollowRepository(db),
		posts:     repository.NewGormPostRepository(db),
		comments:  repository.NewGormCommentRepository(db),
		reactions: repository.NewGormReactionRepository(db),
		counters:  newMemCounters(),
		events:    &recordingPublisher{},
	}
	e.social = NewSocialGraphService(e.follows, e.users, e.counters, e.events)
	e.content = NewContentService(e.posts, e.comments, e.events)
	e.reaction = NewReactionService(e.reactions, e.events)
	e.feed = NewFeedService(FeedDeps{
		Posts:     e.posts,
		Comments:  e.comments,
		Reactions: e.reactions,
		Users:     e.users,
		Graph:     e.follows,
		Social:    e.social,
	})
	e.account = NewUserService(e.users, e.follows, e.counters, fakeTokens{})
	return e
}

func (e *env) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, e.users.Create(context.Background(), u, nil))
	return u
}

func (e *env) post(t *testing.T, author uint, content string, at time.Time) *domain.Post {
	t.Helper()
	p, err := e.content.CreatePost(context.Background(), author, content)
	require.NoError(t, err)
	if !at.IsZero() {
		require.NoError(t, e.db.Model(&domain.PostModel{}).Where("id = ?", p.ID).UpdateColumn("created_at", at).Error)
		p.CreatedAt = at
	}
	return p
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID uint, username string) (string, time.Time, error) {
	return "token-" + username, time.Unix(1700000000, 0), nil
}

type memCounters struct {
	mu          sync.Mutex
	counts      map[uint]domain.FollowCounts
	hits        map[uint]int
	invalidated []uint
}

func newMemCounters() *memCounters {
	return &memCounters{counts: map[uint]domain.FollowCounts{}, hits: map[uint]int{}}
}

func (m *memCounters) GetCounts(_ context.Context, id uint) (*domain.FollowCounts, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counts[id]
	if !ok {
		return nil, false, nil
	}
	return &c, true, nil
}

func (m *memCounters) SetCounts(_ context.Context, id uint, c domain.FollowCounts) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[id] = c
	return nil
}

func (m *memCounters) Invalidate(_ context.Context, ids ...uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.counts, id)
		m.invalidated = append(m.invalidated, id)
	}
	return nil
}

func (m *memCounters) RecordAccess(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[id]++
	return nil
}

func (m *memCounters) GetTopHotKeys(context.Context, int64) ([]uint, error) { return nil, nil }
func (m *memCounters) ResetHotKeyScores(context.Context) error              { return nil }
func (m *memCounters) Close() error                                         { return nil }

var _ store.CounterStore = (*memCounters)(nil)

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	types    []string
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.types = append(p.types, event.Type)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}
