package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jserwatka/network/pkg/middleware"
	"github.com/jserwatka/network/pkg/response"
)

// ToggleFollow handles POST /follow-unfollow/:user_id. Browsers are sent back
// to the profile; JSON clients get the new state.
func (h *Handler) ToggleFollow(c *gin.Context) {
	targetID, ok := parseID(c, "user_id")
	if !ok {
		response.NotFound(c, "user not found")
		return
	}

	following, err := h.social.ToggleFollow(c.Request.Context(), middleware.GetUserID(c), targetID)
	if err != nil {
		writeError(c, err)
		return
	}

	if wantsJSON(c) {
		response.Success(c, gin.H{"following": following})
		return
	}
	redirect(c, fmt.Sprintf("/user-profile/%d", targetID))
}
