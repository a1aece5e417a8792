package domain

import "time"

// Post is a status update authored by one user.
type Post struct {
	ID        uint      `json:"id"`
	AuthorID  uint      `json:"author_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a reply to a post.
type Comment struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	AuthorID  uint      `json:"author_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateContentRequest is the body of POST /post-comment/{kind}.
// PostID is required for comments only.
type CreateContentRequest struct {
	Content string `json:"content" form:"content"`
	PostID  uint   `json:"postId" form:"postId"`
}

// EditContentRequest is the body of PUT /post-comment/{kind}.
type EditContentRequest struct {
	ID      uint   `json:"id" binding:"required"`
	Content string `json:"content"`
}

// DeleteContentRequest is the body of DELETE /post-comment/{kind}.
type DeleteContentRequest struct {
	ID uint `json:"id" binding:"required"`
}
