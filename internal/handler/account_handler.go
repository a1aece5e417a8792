package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jserwatka/network/internal/domain"
	pkglog "github.com/jserwatka/network/pkg/log"
	"github.com/jserwatka/network/pkg/middleware"
	"github.com/jserwatka/network/pkg/response"
)

// Register handles POST /register.
func (h *Handler) Register(c *gin.Context) {
	l := pkglog.Ctx(c.Request.Context())

	var req domain.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid register request")
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, resp)
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, resp)
}

// EditProfile handles PUT /edit-profile.
func (h *Handler) EditProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, profile)
}

// DeleteAccount handles DELETE /account.
func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.users.DeleteAccount(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}
