package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/service"
	pkglog "github.com/jserwatka/network/pkg/log"
	"github.com/jserwatka/network/pkg/middleware"
	"github.com/jserwatka/network/pkg/response"
)

// Messages kept verbatim for existing clients.
const (
	msgUnknownLikeAction    = "Unknown action - you can only like post or comment"
	msgUnknownContentAction = "Unknown action - you can only post or comment"
	msgTargetNotFound       = "Post or Comment does not exist"
)

// Handler serves the network HTTP API.
type Handler struct {
	users          service.UserService
	social         service.SocialGraphService
	content        service.ContentService
	reactions      service.ReactionService
	feed           service.FeedService
	authMiddleware *middleware.AuthMiddleware
}

// Services groups the handler's collaborators.
type Services struct {
	Users     service.UserService
	Social    service.SocialGraphService
	Content   service.ContentService
	Reactions service.ReactionService
	Feed      service.FeedService
}

// NewHandler creates a new HTTP handler.
func NewHandler(svcs Services, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		users:          svcs.Users,
		social:         svcs.Social,
		content:        svcs.Content,
		reactions:      svcs.Reactions,
		feed:           svcs.Feed,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes onto the Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c, "method not allowed")
	})
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "not found")
	})

	auth := h.authMiddleware.RequireAuth()
	optional := h.authMiddleware.OptionalAuth()

	r.GET("/health", h.Health)

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.PUT("/edit-profile", auth, h.EditProfile)
	r.DELETE("/account", auth, h.DeleteAccount)

	// Feeds
	r.GET("/", optional, h.GlobalFeed)
	r.GET("/user-profile/:user_id", optional, h.AuthorFeed)
	r.GET("/following", auth, h.FollowingFeed)

	// Posts and comments
	r.GET("/post/:post_id/comments", h.ListComments)
	content := r.Group("/post-comment/:kind", auth)
	{
		content.POST("", h.CreateContent)
		content.PUT("", h.EditContent)
		content.DELETE("", h.DeleteContent)
	}

	// Reactions
	r.GET("/like/:kind/:id/tally", optional, h.Tally)
	like := r.Group("/like/:kind/:id", auth)
	{
		like.GET("", h.GetReaction)
		like.POST("", h.SetReaction)
		like.PUT("", h.SetReaction)
		like.DELETE("", h.RemoveReaction)
	}

	r.POST("/follow-unfollow/:user_id", auth, h.ToggleFollow)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// parsePage reads ?page=, falling back to 1 on anything unusable.
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// writeError maps service errors onto status codes and error bodies.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTargetNotFound):
		response.NotFound(c, msgTargetNotFound)
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrParentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrEmptyBody),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrUnknownReactionKind):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnknownTargetKind):
		response.BadRequest(c, msgUnknownLikeAction)
	case errors.Is(err, service.ErrDuplicateHandle),
		errors.Is(err, service.ErrDuplicateEmail):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	default:
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("request failed")
		response.InternalError(c, "internal server error")
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}

// feedResponse flattens the page next to a status marker.
type feedResponse struct {
	Status string `json:"status"`
	*domain.FeedPage
}

type authorFeedResponse struct {
	Status string `json:"status"`
	*domain.AuthorFeed
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
