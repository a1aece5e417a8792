package domain

// FeedScope selects which posts a feed contains.
type FeedScope string

const (
	ScopeGlobal    FeedScope = "global"
	ScopeAuthor    FeedScope = "author"
	ScopeFollowing FeedScope = "following"
)

// CommentEntry is a comment annotated for display under its post.
type CommentEntry struct {
	Comment
	Tally          Tally         `json:"tally"`
	ViewerReaction *ReactionKind `json:"viewer_reaction,omitempty"`
}

// FeedEntry is a post annotated with its comments and reactions.
type FeedEntry struct {
	Post
	CommentCount   int64          `json:"comment_count"`
	Tally          Tally          `json:"tally"`
	ViewerReaction *ReactionKind  `json:"viewer_reaction,omitempty"`
	Comments       []CommentEntry `json:"comments"`
}

// FeedPage is one page of a feed with paginator metadata.
type FeedPage struct {
	Scope       FeedScope   `json:"scope"`
	Items       []FeedEntry `json:"items"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalItems  int64       `json:"total_items"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

// AuthorFeed is a profile page: the author, the graph around them and a page of their posts.
type AuthorFeed struct {
	Author      User         `json:"author"`
	Profile     Profile      `json:"profile"`
	Followers   []User       `json:"followers"`
	Following   []User       `json:"following"`
	Counts      FollowCounts `json:"counts"`
	IsFollowing bool         `json:"is_following"`
	Feed        *FeedPage    `json:"feed"`
}
