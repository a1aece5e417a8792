package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jserwatka/network/internal/domain"
)

type reactionFixture struct {
	db       *gorm.DB
	repo     *GormReactionRepository
	alice    *domain.User
	bob      *domain.User
	post     *domain.Post
	comment  *domain.Comment
	postT    domain.Target
	commentT domain.Target
}

func newReactionFixture(t *testing.T) *reactionFixture {
	t.Helper()
	return newReactionFixtureOn(t, newTestDB(t))
}

func newReactionFixtureOn(t *testing.T, db *gorm.DB) *reactionFixture {
	t.Helper()
	users := NewGormUserRepository(db)
	posts := NewGormPostRepository(db)
	comments := NewGormCommentRepository(db)

	f := &reactionFixture{db: db, repo: NewGormReactionRepository(db)}
	f.alice = mustUser(t, users, "alice")
	f.bob = mustUser(t, users, "bob")
	f.post = mustPost(t, posts, f.alice.ID, "post")
	f.comment = &domain.Comment{AuthorID: f.bob.ID, PostID: f.post.ID, Content: "comment"}
	require.NoError(t, comments.Create(context.Background(), f.comment))
	f.postT = domain.PostTarget(f.post.ID)
	f.commentT = domain.CommentTarget(f.comment.ID)
	return f
}

func TestReactionRepository_UpsertStateMachine(t *testing.T) {
	f := newReactionFixture(t)
	ctx := context.Background()

	_, err := f.repo.Get(ctx, f.alice.ID, f.postT)
	assert.ErrorIs(t, err, ErrReactionNotFound)

	r, outcome, err := f.repo.Upsert(ctx, f.alice.ID, f.postT, domain.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, outcome)
	assert.Equal(t, domain.ReactionLike, r.Kind)
	assert.Equal(t, f.postT, r.Target)
	firstID := r.ID

	r, outcome, err = f.repo.Upsert(ctx, f.alice.ID, f.postT, domain.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeUnchanged, outcome)
	assert.Equal(t, firstID, r.ID)

	r, outcome, err = f.repo.Upsert(ctx, f.alice.ID, f.postT, domain.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeUpdated, outcome)
	assert.Equal(t, firstID, r.ID)
	assert.Equal(t, domain.ReactionDislike, r.Kind)

	got, err := f.repo.Get(ctx, f.alice.ID, f.postT)
	require.NoError(t, err)
	assert.Equal(t, domain.ReactionDislike, got.Kind)

	assert.Equal(t, int64(1), countReactions(t, f.db, f.postT))

	tally, err := f.repo.Tally(ctx, f.postT)
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{{Kind: domain.ReactionDislike, Count: 1}}, tally)
}

func TestReactionRepository_PostAndCommentAreIndependent(t *testing.T) {
	f := newReactionFixture(t)
	ctx := context.Background()

	_, _, err := f.repo.Upsert(ctx, f.alice.ID, f.postT, domain.ReactionHeart)
	require.NoError(t, err)
	_, outcome, err := f.repo.Upsert(ctx, f.alice.ID, f.commentT, domain.ReactionSmile)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, outcome)

	post, err := f.repo.Get(ctx, f.alice.ID, f.postT)
	require.NoError(t, err)
	assert.Equal(t, domain.ReactionHeart, post.Kind)
	comment, err := f.repo.Get(ctx, f.alice.ID, f.commentT)
	require.NoError(t, err)
	assert.Equal(t, domain.ReactionSmile, comment.Kind)
}

func TestReactionRepository_TargetNotFound(t *testing.T) {
	f := newReactionFixture(t)
	ctx := context.Background()

	_, _, err := f.repo.Upsert(ctx, f.alice.ID, domain.PostTarget(999), domain.ReactionLike)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	_, _, err = f.repo.Upsert(ctx, f.alice.ID, domain.CommentTarget(999), domain.ReactionLike)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	var n int64
	require.NoError(t, f.db.Model(&domain.ReactionModel{}).Count(&n).Error)
	assert.Zero(t, n)

	ok, err := f.repo.TargetExists(ctx, f.commentT)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.repo.TargetExists(ctx, domain.PostTarget(999))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReactionRepository_UniqueIndexBackstop(t *testing.T) {
	f := newReactionFixture(t)

	require.NoError(t, f.db.Create(domain.NewReactionModel(f.alice.ID, f.postT, domain.ReactionLike)).Error)
	err := f.db.Create(domain.NewReactionModel(f.alice.ID, f.postT, domain.ReactionHeart)).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, f.db.Create(domain.NewReactionModel(f.alice.ID, f.commentT, domain.ReactionLike)).Error)
	err = f.db.Create(domain.NewReactionModel(f.alice.ID, f.commentT, domain.ReactionLike)).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestReactionRepository_ExactlyOneTarget(t *testing.T) {
	f := newReactionFixture(t)

	none := &domain.ReactionModel{UserID: f.alice.ID, Kind: domain.ReactionLike}
	assert.Error(t, f.db.Create(none).Error)

	both := domain.NewReactionModel(f.alice.ID, f.postT, domain.ReactionLike)
	cid := f.comment.ID
	both.CommentID = &cid
	assert.Error(t, f.db.Create(both).Error)
}

func TestReactionRepository_ConcurrentFirstReactions(t *testing.T) {
	db := newFileTestDB(t, 50)
	f := newReactionFixtureOn(t, db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	const reactors = 20
	ids := make([]uint, reactors)
	for i := range ids {
		ids[i] = mustUser(t, users, fmt.Sprintf("reactor%d", i)).ID
	}

	for round := 0; round < 3; round++ {
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			failures []error
		)
		for _, id := range ids {
			// Two requests per user: same kind on odd rounds, different kinds on even ones.
			kinds := []domain.ReactionKind{domain.ReactionLike, domain.ReactionHeart}
			if round%2 == 1 {
				kinds[1] = domain.ReactionLike
			}
			for _, k := range kinds {
				wg.Add(1)
				go func(id uint, k domain.ReactionKind) {
					defer wg.Done()
					if _, _, err := f.repo.Upsert(ctx, id, f.postT, k); err != nil {
						mu.Lock()
						failures = append(failures, err)
						mu.Unlock()
					}
				}(id, k)
			}
		}
		wg.Wait()
		require.Empty(t, failures, "round %d", round)
	}

	assert.Equal(t, int64(reactors), countReactions(t, db, f.postT))

	tally, err := f.repo.Tally(ctx, f.postT)
	require.NoError(t, err)
	assert.Equal(t, int64(reactors), tally.Total())
}

func TestReactionRepository_Delete(t *testing.T) {
	f := newReactionFixture(t)
	ctx := context.Background()

	_, _, err := f.repo.Upsert(ctx, f.alice.ID, f.postT, domain.ReactionLike)
	require.NoError(t, err)

	removed, err := f.repo.Delete(ctx, f.alice.ID, f.postT)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.repo.Delete(ctx, f.alice.ID, f.postT)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestReactionRepository_TalliesAndUserReactions(t *testing.T) {
	f := newReactionFixture(t)
	ctx := context.Background()
	users := NewGormUserRepository(f.db)
	posts := NewGormPostRepository(f.db)

	carol := mustUser(t, users, "carol")
	other := mustPost(t, posts, f.bob.ID, "other")
	empty := mustPost(t, posts, f.bob.ID, "empty")

	for _, tc := range []struct {
		user uint
		post uint
		kind domain.ReactionKind
	}{
		{f.alice.ID, f.post.ID, domain.ReactionHeart},
		{f.bob.ID, f.post.ID, domain.ReactionLike},
		{carol.ID, f.post.ID, domain.ReactionHeart},
		{f.alice.ID, other.ID, domain.ReactionThanks},
		{f.bob.ID, other.ID, domain.ReactionSmile},
	} {
		_, _, err := f.repo.Upsert(ctx, tc.user, domain.PostTarget(tc.post), tc.kind)
		require.NoError(t, err)
	}

	tallies, err := f.repo.Tallies(ctx, domain.TargetPost, []uint{f.post.ID, other.ID, empty.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{
		{Kind: domain.ReactionHeart, Count: 2},
		{Kind: domain.ReactionLike, Count: 1},
	}, tallies[f.post.ID])
	assert.Equal(t, domain.Tally{
		{Kind: domain.ReactionSmile, Count: 1},
		{Kind: domain.ReactionThanks, Count: 1},
	}, tallies[other.ID])
	assert.Empty(t, tallies[empty.ID])

	mine, err := f.repo.UserReactions(ctx, f.alice.ID, domain.TargetPost, []uint{f.post.ID, other.ID, empty.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]domain.ReactionKind{f.post.ID: domain.ReactionHeart, other.ID: domain.ReactionThanks}, mine)

	anon, err := f.repo.UserReactions(ctx, 0, domain.TargetPost, []uint{f.post.ID})
	require.NoError(t, err)
	assert.Empty(t, anon)
}
