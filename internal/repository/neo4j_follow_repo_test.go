package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	queries []string
	params  []map[string]any
	results []*neo4j.EagerResult
	err     error
}

func (f *fakeRunner) Run(_ context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	f.queries = append(f.queries, query)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return &neo4j.EagerResult{}, nil
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res, nil
}

func result(key string, values ...any) *neo4j.EagerResult {
	res := &neo4j.EagerResult{Keys: []string{key}}
	for _, v := range values {
		res.Records = append(res.Records, &neo4j.Record{Keys: []string{key}, Values: []any{v}})
	}
	return res
}

func TestNeo4jFollowRepository_Follow(t *testing.T) {
	runner := &fakeRunner{results: []*neo4j.EagerResult{result("existed", false), result("existed", true)}}
	repo := NewNeo4jFollowRepository(runner)
	ctx := context.Background()

	require.NoError(t, repo.Follow(ctx, 1, 2))
	assert.Equal(t, map[string]any{"follower": int64(1), "followed": int64(2)}, runner.params[0])
	assert.Contains(t, runner.queries[0], "MERGE (a)-[r:FOLLOWS]->(b)")

	assert.ErrorIs(t, repo.Follow(ctx, 1, 2), ErrAlreadyFollowing)
}

func TestNeo4jFollowRepository_Unfollow(t *testing.T) {
	runner := &fakeRunner{results: []*neo4j.EagerResult{result("removed", int64(1)), result("removed", int64(0))}}
	repo := NewNeo4jFollowRepository(runner)
	ctx := context.Background()

	require.NoError(t, repo.Unfollow(ctx, 1, 2))
	assert.ErrorIs(t, repo.Unfollow(ctx, 1, 2), ErrFollowNotFound)
}

func TestNeo4jFollowRepository_Reads(t *testing.T) {
	runner := &fakeRunner{results: []*neo4j.EagerResult{
		result("following", true),
		result("id", int64(3), int64(5)),
		result("id"),
		result("n", int64(7)),
		result("n", int64(2)),
	}}
	repo := NewNeo4jFollowRepository(runner)
	ctx := context.Background()

	ok, err := repo.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := repo.FollowerIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 5}, ids)

	ids, err = repo.FolloweeIDs(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)

	n, err := repo.GetFollowersCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = repo.GetFollowingCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNeo4jFollowRepository_Errors(t *testing.T) {
	boom := errors.New("boom")
	repo := NewNeo4jFollowRepository(&fakeRunner{err: boom})
	ctx := context.Background()

	assert.ErrorIs(t, repo.Follow(ctx, 1, 2), boom)
	_, err := repo.IsFollowing(ctx, 1, 2)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, repo.RemoveUser(ctx, 1), boom)

	repo = NewNeo4jFollowRepository(&fakeRunner{results: []*neo4j.EagerResult{result("existed", "yes")}})
	assert.Error(t, repo.Follow(ctx, 1, 2))

	repo = NewNeo4jFollowRepository(&fakeRunner{})
	_, err = repo.GetFollowersCount(ctx, 1)
	assert.Error(t, err)
}
