package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jserwatka/network/internal/consumer"
	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/repository"
)

func TestToggleFollow_IsItsOwnInverse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")

	following, err := e.social.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)
	ok, err := e.social.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	following, err = e.social.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)
	ok, err = e.social.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	var n int64
	require.NoError(t, e.db.Model(&domain.FollowModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFollow_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")

	assert.ErrorIs(t, e.social.Follow(ctx, a.ID, a.ID), ErrSelfFollow)
	_, err := e.social.ToggleFollow(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
	assert.ErrorIs(t, e.social.Follow(ctx, a.ID, 404), ErrUserNotFound)
}

func TestFollow_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")

	require.NoError(t, e.social.Follow(ctx, a.ID, b.ID))
	require.NoError(t, e.social.Follow(ctx, a.ID, b.ID))
	require.NoError(t, e.social.Unfollow(ctx, a.ID, b.ID))
	require.NoError(t, e.social.Unfollow(ctx, a.ID, b.ID))
}

func TestCounts_CacheAsideAndInvalidate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")

	counts, err := e.social.Counts(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FollowCounts{}, counts)
	cached, found, _ := e.counters.GetCounts(ctx, b.ID)
	require.True(t, found)
	assert.Equal(t, domain.FollowCounts{}, *cached)
	assert.Equal(t, 1, e.counters.hits[b.ID])

	require.NoError(t, e.social.Follow(ctx, a.ID, b.ID))
	_, found, _ = e.counters.GetCounts(ctx, b.ID)
	assert.False(t, found)

	counts, err = e.social.Counts(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FollowCounts{Followers: 1}, counts)
	counts, err = e.social.Counts(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FollowCounts{Following: 1}, counts)
}

func TestCounts_ConcurrentMisses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	require.NoError(t, e.social.Follow(ctx, a.ID, b.ID))

	var wg sync.WaitGroup
	results := make([]domain.FollowCounts, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := e.social.Counts(ctx, b.ID)
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	for _, c := range results {
		assert.Equal(t, domain.FollowCounts{Followers: 1}, c)
	}
}

// gatedGraph holds follower counts until release is closed.
type gatedGraph struct {
	repository.FollowRepository
	entered chan struct{}
	once    sync.Once
	release chan struct{}
}

func (g *gatedGraph) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.FollowRepository.GetFollowersCount(ctx, userID)
}

func TestCounts_FillSurvivesCancelledCaller(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	require.NoError(t, e.social.Follow(ctx, a.ID, b.ID))

	graph := &gatedGraph{
		FollowRepository: e.follows,
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	social := NewSocialGraphService(graph, e.users, e.counters, e.events)

	firstCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	results := make([]domain.FollowCounts, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = social.Counts(firstCtx, b.ID)
	}()
	<-graph.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = social.Counts(ctx, b.ID)
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	close(graph.release)
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, domain.FollowCounts{Followers: 1}, results[i])
	}
	cached, found, _ := e.counters.GetCounts(ctx, b.ID)
	require.True(t, found)
	assert.Equal(t, domain.FollowCounts{Followers: 1}, *cached)
}

func TestFollowersAndFollowing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	c := e.user(t, "carol")
	require.NoError(t, e.social.Follow(ctx, c.ID, a.ID))
	require.NoError(t, e.social.Follow(ctx, b.ID, a.ID))

	followers, err := e.social.Followers(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Username)
	assert.Empty(t, followers[0].Email)

	following, err := e.social.Following(ctx, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, following)
	assert.Empty(t, following)
}

func TestHandleCDCEvent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.counters.SetCounts(ctx, 1, domain.FollowCounts{Following: 3}))
	require.NoError(t, e.counters.SetCounts(ctx, 2, domain.FollowCounts{Followers: 3}))

	snapshot := &consumer.DebeziumMessage{Payload: consumer.DebeziumPayload{
		Op:    consumer.OpSnapshot,
		After: &consumer.DebeziumFollowRecord{FollowerID: 1, FollowedID: 2},
	}}
	require.NoError(t, e.social.HandleCDCEvent(ctx, snapshot))
	_, found, _ := e.counters.GetCounts(ctx, 1)
	assert.True(t, found)

	deleted := &consumer.DebeziumMessage{Payload: consumer.DebeziumPayload{
		Op:     consumer.OpDelete,
		Before: &consumer.DebeziumFollowRecord{FollowerID: 1, FollowedID: 2},
	}}
	require.NoError(t, e.social.HandleCDCEvent(ctx, deleted))
	_, found, _ = e.counters.GetCounts(ctx, 1)
	assert.False(t, found)
	_, found, _ = e.counters.GetCounts(ctx, 2)
	assert.False(t, found)

	empty := &consumer.DebeziumMessage{Payload: consumer.DebeziumPayload{Op: consumer.OpCreate}}
	assert.NoError(t, e.social.HandleCDCEvent(ctx, empty))
}
