package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/pkg/pubsub"
)

func TestCreatePost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")

	p, err := e.content.CreatePost(ctx, a.ID, "hello world")
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "alice", p.Author)
	assert.Equal(t, []string{pubsub.EventPostCreated}, e.events.Types())

	_, err = e.content.CreatePost(ctx, a.ID, "  \n\t")
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestEditPost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	p := e.post(t, a.ID, "draft", time.Time{})

	_, err := e.content.EditPost(ctx, p.ID, b.ID, "hijack")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = e.content.EditPost(ctx, p.ID, a.ID, " ")
	assert.ErrorIs(t, err, ErrEmptyBody)

	_, err = e.content.EditPost(ctx, 999, a.ID, "x")
	assert.ErrorIs(t, err, ErrPostNotFound)

	edited, err := e.content.EditPost(ctx, p.ID, a.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", edited.Content)
	assert.Equal(t, p.CreatedAt.Unix(), edited.CreatedAt.Unix())
}

func TestDeletePost_Cascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	p := e.post(t, a.ID, "hello", time.Time{})

	c, err := e.content.CreateComment(ctx, b.ID, p.ID, "nice")
	require.NoError(t, err)
	_, _, err = e.reaction.React(ctx, b.ID, domain.PostTarget(p.ID), "like")
	require.NoError(t, err)
	_, _, err = e.reaction.React(ctx, a.ID, domain.CommentTarget(c.ID), "thanks")
	require.NoError(t, err)

	assert.ErrorIs(t, e.content.DeletePost(ctx, p.ID, b.ID), ErrNotOwner)
	require.NoError(t, e.content.DeletePost(ctx, p.ID, a.ID))

	var n int64
	require.NoError(t, e.db.Model(&domain.CommentModel{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, e.db.Model(&domain.ReactionModel{}).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, e.content.DeletePost(ctx, p.ID, a.ID), ErrPostNotFound)
}

func TestComments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	p := e.post(t, a.ID, "hello", time.Time{})

	_, err := e.content.CreateComment(ctx, b.ID, 999, "orphan")
	assert.ErrorIs(t, err, ErrParentNotFound)

	_, err = e.content.CreateComment(ctx, b.ID, p.ID, "")
	assert.ErrorIs(t, err, ErrEmptyBody)

	c1, err := e.content.CreateComment(ctx, b.ID, p.ID, "one")
	require.NoError(t, err)
	c2, err := e.content.CreateComment(ctx, a.ID, p.ID, "two")
	require.NoError(t, err)

	_, err = e.content.EditComment(ctx, c1.ID, a.ID, "nope")
	assert.ErrorIs(t, err, ErrNotOwner)
	edited, err := e.content.EditComment(ctx, c1.ID, b.ID, "one, edited")
	require.NoError(t, err)
	assert.Equal(t, "one, edited", edited.Content)

	list, err := e.content.Comments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c1.ID, list[0].ID)
	assert.Equal(t, c2.ID, list[1].ID)

	require.NoError(t, e.content.DeleteComment(ctx, c2.ID, a.ID))
	assert.ErrorIs(t, e.content.DeleteComment(ctx, c2.ID, a.ID), ErrCommentNotFound)

	_, err = e.content.Comments(ctx, 999)
	assert.ErrorIs(t, err, ErrPostNotFound)
}
