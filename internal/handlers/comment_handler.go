package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	actorResolver
	posts *services.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(profiles *services.ProfileService, posts *services.PostService) *CommentHandler {
	return &CommentHandler{
		actorResolver: actorResolver{profiles: profiles},
		posts:         posts,
	}
}

// RegisterCommentRoutes registers comment-related routes. createLimit throttles
// new comments.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, createLimit echo.MiddlewareFunc) {
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
	g.POST("/posts/:id/comments", h.CreateComment, createLimit)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.posts.AddComment(c.Request().Context(), profile, postID, req.Body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// GetCommentsByPostID lists a post's comments, oldest first.
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	comments, err := h.posts.ListComments(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": comments})
}

// DeleteComment deletes a comment. Only its author may do so.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.posts.DeleteComment(c.Request().Context(), profile, commentID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
