package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
)

// ActivityHandler serves the caller's activity log
type ActivityHandler struct {
	actorResolver
	activity repositories.ActivityRepository
}

func NewActivityHandler(profiles *services.ProfileService, activity repositories.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{
		actorResolver: actorResolver{profiles: profiles},
		activity:      activity,
	}
}

func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group) {
	g.GET("/activity", h.GetActivity)
}

// GetActivity lists the caller's recent activity, newest first.
func (h *ActivityHandler) GetActivity(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}

	skip, limit := pagination(c, 20, 100)
	entries, err := h.activity.ListByProfile(c.Request().Context(), profile.ID, int64(skip), int64(limit))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    entries,
		"meta":    echo.Map{"skip": skip, "limit": limit},
	})
}
