package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/pkg/middleware"
	"github.com/jserwatka/network/pkg/response"
)

func contentKind(c *gin.Context) (domain.TargetKind, bool) {
	kind, err := domain.ParseTargetKind(c.Param("kind"))
	if err != nil {
		response.BadRequest(c, msgUnknownContentAction)
		return "", false
	}
	return kind, true
}

// CreateContent handles POST /post-comment/:kind with a form or JSON body.
// Form submissions that carry a Referer are redirected back to it.
func (h *Handler) CreateContent(c *gin.Context) {
	kind, ok := contentKind(c)
	if !ok {
		return
	}

	var req domain.CreateContentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var created interface{}
	switch kind {
	case domain.TargetPost:
		post, err := h.content.CreatePost(ctx, userID, req.Content)
		if err != nil {
			writeError(c, err)
			return
		}
		created = post
	case domain.TargetComment:
		if req.PostID == 0 {
			response.BadRequest(c, "postId is required")
			return
		}
		comment, err := h.content.CreateComment(ctx, userID, req.PostID, req.Content)
		if err != nil {
			writeError(c, err)
			return
		}
		created = comment
	}

	if referer := c.GetHeader("Referer"); referer != "" && !wantsJSON(c) {
		redirect(c, referer)
		return
	}
	response.Created(c, created)
}

// EditContent handles PUT /post-comment/:kind.
func (h *Handler) EditContent(c *gin.Context) {
	kind, ok := contentKind(c)
	if !ok {
		return
	}

	var req domain.EditContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var (
		edited interface{}
		err    error
	)
	if kind == domain.TargetPost {
		edited, err = h.content.EditPost(ctx, req.ID, userID, req.Content)
	} else {
		edited, err = h.content.EditComment(ctx, req.ID, userID, req.Content)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, edited)
}

// DeleteContent handles DELETE /post-comment/:kind.
func (h *Handler) DeleteContent(c *gin.Context) {
	kind, ok := contentKind(c)
	if !ok {
		return
	}

	var req domain.DeleteContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var err error
	if kind == domain.TargetPost {
		err = h.content.DeletePost(ctx, req.ID, userID)
	} else {
		err = h.content.DeleteComment(ctx, req.ID, userID)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// ListComments handles GET /post/:post_id/comments, oldest first.
func (h *Handler) ListComments(c *gin.Context) {
	postID, ok := parseID(c, "post_id")
	if !ok {
		response.NotFound(c, "post not found")
		return
	}

	comments, err := h.content.Comments(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	response.Success(c, gin.H{"post_id": postID, "comments": comments})
}
