package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-social/backend/internal/services"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	actorResolver
	posts *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(profiles *services.ProfileService, posts *services.PostService) *LikeHandler {
	return &LikeHandler{
		actorResolver: actorResolver{profiles: profiles},
		posts:         posts,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
}

// ToggleLike likes the post, or unlikes it when the caller already likes it.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.posts.ToggleLike(c.Request().Context(), profile, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": result})
}
