package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/pkg/middleware"
	"github.com/jserwatka/network/pkg/response"
)

type reactionRequest struct {
	EmojiType string `json:"emojiType"`
}

// reactionState keeps the string booleans existing clients parse.
type reactionState struct {
	Like      string `json:"like"`
	EmojiType string `json:"emojiType,omitempty"`
}

type reactionResult struct {
	EmojiType string `json:"emojiType"`
	Outcome   string `json:"outcome"`
}

type tallyResponse struct {
	Target domain.Target    `json:"target"`
	Tally  domain.Tally     `json:"tally"`
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// likeTarget resolves :kind and :id. The kind is checked first so an unknown
// action reports 400 even when the id is bogus.
func likeTarget(c *gin.Context) (domain.Target, bool) {
	kind, err := domain.ParseTargetKind(c.Param("kind"))
	if err != nil {
		response.BadRequest(c, msgUnknownLikeAction)
		return domain.Target{}, false
	}
	id, ok := parseID(c, "id")
	if !ok {
		response.NotFound(c, msgTargetNotFound)
		return domain.Target{}, false
	}
	return domain.Target{Kind: kind, ID: id}, true
}

// GetReaction handles GET /like/:kind/:id.
func (h *Handler) GetReaction(c *gin.Context) {
	target, ok := likeTarget(c)
	if !ok {
		return
	}

	reacted, kind, err := h.reactions.HasReacted(c.Request.Context(), middleware.GetUserID(c), target)
	if err != nil {
		writeError(c, err)
		return
	}

	state := reactionState{Like: "False"}
	if reacted {
		state = reactionState{Like: "True", EmojiType: kind.String()}
	}
	response.Success(c, state)
}

// SetReaction handles POST and PUT /like/:kind/:id. Both create or re-kind.
func (h *Handler) SetReaction(c *gin.Context) {
	target, ok := likeTarget(c)
	if !ok {
		return
	}

	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return
	}

	reaction, outcome, err := h.reactions.React(c.Request.Context(), middleware.GetUserID(c), target, req.EmojiType)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, reactionResult{EmojiType: reaction.Kind.String(), Outcome: outcome.String()})
}

// RemoveReaction handles DELETE /like/:kind/:id.
func (h *Handler) RemoveReaction(c *gin.Context) {
	target, ok := likeTarget(c)
	if !ok {
		return
	}

	if _, err := h.reactions.Remove(c.Request.Context(), middleware.GetUserID(c), target); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// Tally handles GET /like/:kind/:id/tally.
func (h *Handler) Tally(c *gin.Context) {
	target, ok := likeTarget(c)
	if !ok {
		return
	}

	tally, err := h.reactions.Tally(c.Request.Context(), target)
	if err != nil {
		writeError(c, err)
		return
	}
	if tally == nil {
		tally = domain.Tally{}
	}
	response.Success(c, tallyResponse{
		Target: target,
		Tally:  tally,
		Counts: tally.AsMap(),
		Total:  tally.Total(),
	})
}
