package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jserwatka/network/pkg/middleware"
	"github.com/jserwatka/network/pkg/response"
)

const statusSuccess = "success"

// GlobalFeed handles GET /.
func (h *Handler) GlobalFeed(c *gin.Context) {
	page, err := h.feed.Global(c.Request.Context(), middleware.GetUserID(c), parsePage(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, feedResponse{Status: statusSuccess, FeedPage: page})
}

// AuthorFeed handles GET /user-profile/:user_id.
func (h *Handler) AuthorFeed(c *gin.Context) {
	authorID, ok := parseID(c, "user_id")
	if !ok {
		response.NotFound(c, "user not found")
		return
	}

	feed, err := h.feed.Author(c.Request.Context(), middleware.GetUserID(c), authorID, parsePage(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, authorFeedResponse{Status: statusSuccess, AuthorFeed: feed})
}

// FollowingFeed handles GET /following.
func (h *Handler) FollowingFeed(c *gin.Context) {
	page, err := h.feed.Following(c.Request.Context(), middleware.GetUserID(c), parsePage(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, feedResponse{Status: statusSuccess, FeedPage: page})
}
