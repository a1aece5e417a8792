package pubsub

import (
	"fmt"
	"strconv"
)

// Channel naming: network:{entity}:{id}.
const channelFormat = "network:%s:%s"

// Entities that carry domain events.
const (
	EntityPost     = "post"
	EntityComment  = "comment"
	EntityReaction = "reaction"
	EntityFollow   = "follow"
)

// Entities lists every entity with its own Kafka topic.
var Entities = []string{EntityPost, EntityComment, EntityReaction, EntityFollow}

// Event types.
const (
	EventPostCreated     = "post.created"
	EventPostUpdated     = "post.updated"
	EventPostDeleted     = "post.deleted"
	EventCommentCreated  = "comment.created"
	EventCommentUpdated  = "comment.updated"
	EventCommentDeleted  = "comment.deleted"
	EventReactionSet     = "reaction.set"
	EventReactionRemoved = "reaction.removed"
	EventFollowed        = "follow.created"
	EventUnfollowed      = "follow.deleted"
)

// Channel returns the channel for an entity id.
func Channel(entity string, id uint) string {
	return fmt.Sprintf(channelFormat, entity, strconv.FormatUint(uint64(id), 10))
}

// ContentPayload describes a post or comment change.
type ContentPayload struct {
	ID       uint   `json:"id"`
	AuthorID uint   `json:"author_id"`
	PostID   uint   `json:"post_id,omitempty"`
	Content  string `json:"content,omitempty"`
}

// ReactionPayload describes a reaction change on a post or comment.
type ReactionPayload struct {
	UserID     uint   `json:"user_id"`
	TargetKind string `json:"target_kind"`
	TargetID   uint   `json:"target_id"`
	Kind       string `json:"kind,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
}

// FollowPayload describes a follow edge change.
type FollowPayload struct {
	FollowerID uint `json:"follower_id"`
	FollowedID uint `json:"followed_id"`
}
