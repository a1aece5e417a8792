package repository

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// CypherRunner executes a Cypher query and buffers the result.
type CypherRunner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Neo4jExecutor runs queries through the official driver.
type Neo4jExecutor struct {
	Driver neo4j.DriverWithContext
	DBName string
}

// NewNeo4jExecutor creates a driver for uri using basic auth.
func NewNeo4jExecutor(uri, username, password, dbName string) (*Neo4jExecutor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}
	return &Neo4jExecutor{Driver: driver, DBName: dbName}, nil
}

// Verify checks connectivity.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	return e.Driver.VerifyConnectivity(ctx)
}

// Run executes query in a managed transaction.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, e.Driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.DBName),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

// Close releases the driver.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

const (
	cypherUniqueUser = `CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`

	cypherFollow = `
MERGE (a:User {id: $follower})
MERGE (b:User {id: $followed})
WITH a, b, EXISTS { (a)-[:FOLLOWS]->(b) } AS existed
MERGE (a)-[r:FOLLOWS]->(b)
  ON CREATE SET r.created_at = timestamp()
RETURN existed`

	cypherUnfollow = `
MATCH (:User {id: $follower})-[r:FOLLOWS]->(:User {id: $followed})
DELETE r
RETURN count(r) AS removed`

	cypherIsFollowing = `
RETURN EXISTS { (:User {id: $follower})-[:FOLLOWS]->(:User {id: $followed}) } AS following`

	cypherFollowerIDs = `
MATCH (f:User)-[r:FOLLOWS]->(:User {id: $id})
RETURN f.id AS id ORDER BY r.created_at, f.id`

	cypherFolloweeIDs = `
MATCH (:User {id: $id})-[r:FOLLOWS]->(f:User)
RETURN f.id AS id ORDER BY r.created_at, f.id`

	cypherFollowersCount = `
MATCH (:User)-[r:FOLLOWS]->(:User {id: $id})
RETURN count(r) AS n`

	cypherFollowingCount = `
MATCH (:User {id: $id})-[r:FOLLOWS]->(:User)
RETURN count(r) AS n`

	cypherRemoveUser = `
MATCH (u:User {id: $id})
DETACH DELETE u`
)

// Neo4jFollowRepository stores follow edges as (:User)-[:FOLLOWS]->(:User).
type Neo4jFollowRepository struct {
	runner CypherRunner
}

// NewNeo4jFollowRepository creates a graph-backed follow repository.
func NewNeo4jFollowRepository(runner CypherRunner) *Neo4jFollowRepository {
	return &Neo4jFollowRepository{runner: runner}
}

// EnsureSchema creates the user id uniqueness constraint.
func (r *Neo4jFollowRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.runner.Run(ctx, cypherUniqueUser, nil)
	return err
}

func pair(followerID, followedID uint) map[string]any {
	return map[string]any{"follower": int64(followerID), "followed": int64(followedID)}
}

func single(id uint) map[string]any {
	return map[string]any{"id": int64(id)}
}

// Follow creates the edge, failing with ErrAlreadyFollowing if it exists.
func (r *Neo4jFollowRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	res, err := r.runner.Run(ctx, cypherFollow, pair(followerID, followedID))
	if err != nil {
		return err
	}
	existed, err := firstBool(res, "existed")
	if err != nil {
		return err
	}
	if existed {
		return ErrAlreadyFollowing
	}
	return nil
}

// Unfollow removes the edge.
func (r *Neo4jFollowRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	res, err := r.runner.Run(ctx, cypherUnfollow, pair(followerID, followedID))
	if err != nil {
		return err
	}
	removed, err := firstInt(res, "removed")
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrFollowNotFound
	}
	return nil
}

// IsFollowing checks if followerID follows followedID.
func (r *Neo4jFollowRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	res, err := r.runner.Run(ctx, cypherIsFollowing, pair(followerID, followedID))
	if err != nil {
		return false, err
	}
	return firstBool(res, "following")
}

// FollowerIDs returns the ids of users following userID.
func (r *Neo4jFollowRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	res, err := r.runner.Run(ctx, cypherFollowerIDs, single(userID))
	if err != nil {
		return nil, err
	}
	return collectIDs(res, "id")
}

// FolloweeIDs returns the ids of users userID follows.
func (r *Neo4jFollowRepository) FolloweeIDs(ctx context.Context, userID uint) ([]uint, error) {
	res, err := r.runner.Run(ctx, cypherFolloweeIDs, single(userID))
	if err != nil {
		return nil, err
	}
	return collectIDs(res, "id")
}

// GetFollowersCount returns the number of followers of userID.
func (r *Neo4jFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	res, err := r.runner.Run(ctx, cypherFollowersCount, single(userID))
	if err != nil {
		return 0, err
	}
	return firstInt(res, "n")
}

// GetFollowingCount returns the number of users userID follows.
func (r *Neo4jFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	res, err := r.runner.Run(ctx, cypherFollowingCount, single(userID))
	if err != nil {
		return 0, err
	}
	return firstInt(res, "n")
}

// RemoveUser deletes the user node and all of its edges.
func (r *Neo4jFollowRepository) RemoveUser(ctx context.Context, userID uint) error {
	_, err := r.runner.Run(ctx, cypherRemoveUser, single(userID))
	return err
}

func firstValue(res *neo4j.EagerResult, key string) (any, error) {
	if res == nil || len(res.Records) == 0 {
		return nil, fmt.Errorf("neo4j: empty result for %q", key)
	}
	v, ok := res.Records[0].Get(key)
	if !ok {
		return nil, fmt.Errorf("neo4j: missing key %q", key)
	}
	return v, nil
}

func firstBool(res *neo4j.EagerResult, key string) (bool, error) {
	v, err := firstValue(res, key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("neo4j: %q is %T, want bool", key, v)
	}
	return b, nil
}

func firstInt(res *neo4j.EagerResult, key string) (int64, error) {
	v, err := firstValue(res, key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("neo4j: %q is %T, want int64", key, v)
	}
	return n, nil
}

func collectIDs(res *neo4j.EagerResult, key string) ([]uint, error) {
	ids := make([]uint, 0, len(res.Records))
	for _, rec := range res.Records {
		v, ok := rec.Get(key)
		if !ok {
			return nil, fmt.Errorf("neo4j: missing key %q", key)
		}
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("neo4j: %q is %T, want int64", key, v)
		}
		ids = append(ids, uint(n))
	}
	return ids, nil
}

var _ FollowRepository = (*Neo4jFollowRepository)(nil)
