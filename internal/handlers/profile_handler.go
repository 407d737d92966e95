package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
)

// ProfileHandler handles HTTP requests related to profiles
type ProfileHandler struct {
	actorResolver
	accounts *services.AccountService
	posts    *services.PostService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles *services.ProfileService, accounts *services.AccountService, posts *services.PostService) *ProfileHandler {
	return &ProfileHandler{
		actorResolver: actorResolver{profiles: profiles},
		accounts:      accounts,
		posts:         posts,
	}
}

// RegisterProfileRoutes registers profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)       // own profile
	g.PUT("/profile", h.UpdateProfile)    // own profile
	g.DELETE("/profile", h.DeleteAccount) // own account, cascading
	g.GET("/profile/stats", h.GetStats)
	g.GET("/profiles", h.ListProfiles)
	g.GET("/profiles/search", h.SearchProfiles)
	g.GET("/profiles/:slug", h.GetProfileBySlug)
	g.GET("/profiles/:slug/friends", h.GetFriends)
	g.GET("/profiles/:slug/posts", h.GetProfilePosts)
}

// GetProfile retrieves the authenticated user's profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

// UpdateProfile updates names and bio, and the avatar when the multipart form
// carries one.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	avatar, done, err := imageFromForm(c, "avatar")
	if err != nil {
		return err
	}
	defer done()

	updated, err := h.profiles.UpdateProfile(c.Request().Context(), profile, req, avatar)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": updated})
}

// DeleteAccount removes the authenticated user and everything it owns.
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if err := h.accounts.DeleteAccount(c.Request().Context(), userID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProfileHandler) GetStats(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	stats, err := h.profiles.Stats(c.Request().Context(), profile)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": stats})
}

// ListProfiles returns every profile except the caller's.
func (h *ProfileHandler) ListProfiles(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	profiles, err := h.profiles.AllProfiles(c.Request().Context(), profile)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profiles})
}

func (h *ProfileHandler) SearchProfiles(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	profiles, err := h.profiles.Search(c.Request().Context(), profile, strings.TrimSpace(c.QueryParam("q")))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profiles})
}

func (h *ProfileHandler) GetProfileBySlug(c echo.Context) error {
	profile, err := h.profiles.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

func (h *ProfileHandler) GetFriends(c echo.Context) error {
	ctx := c.Request().Context()
	profile, err := h.profiles.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return httpError(err)
	}
	friends, err := h.profiles.Friends(ctx, profile)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": friends})
}

func (h *ProfileHandler) GetProfilePosts(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	profile, err := h.profiles.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return httpError(err)
	}
	posts, err := h.posts.ListPostsByAuthor(ctx, actor, profile.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": posts})
}
