package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	actorResolver
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(profiles *services.ProfileService, posts *services.PostService) *PostHandler {
	return &PostHandler{
		actorResolver: actorResolver{profiles: profiles},
		posts:         posts,
	}
}

// RegisterPostRoutes registers post-related routes. createLimit throttles
// post creation.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, createLimit echo.MiddlewareFunc) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost, createLimit)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// GetPosts returns the newest posts first, with counts and the caller's like
// state.
func (h *PostHandler) GetPosts(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}

	skip, limit := pagination(c, 20, 100)
	posts, err := h.posts.ListPosts(c.Request().Context(), profile, skip, limit)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    posts,
		"meta":    echo.Map{"skip": skip, "limit": limit},
	})
}

// CreatePost creates a post from a JSON body or a multipart form with an
// optional "image" file.
func (h *PostHandler) CreatePost(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	image, done, err := imageFromForm(c, "image")
	if err != nil {
		return err
	}
	defer done()

	post, err := h.posts.CreatePost(c.Request().Context(), profile, req.Content, image)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

func (h *PostHandler) GetPost(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.posts.GetPost(c.Request().Context(), profile, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": post})
}

// UpdatePost answers 200 with a warning when the caller is not the author.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	image, done, err := imageFromForm(c, "image")
	if err != nil {
		return err
	}
	defer done()

	result, err := h.posts.UpdatePost(c.Request().Context(), profile, postID, req.Content, image)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": result.Warning == "", "data": result})
}

// DeletePost answers 200 with a warning when the caller is not the author.
func (h *PostHandler) DeletePost(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.posts.DeletePost(c.Request().Context(), profile, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": result.Warning == "", "data": result})
}
