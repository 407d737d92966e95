package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
)

// RelationshipHandler handles invites and friendships
type RelationshipHandler struct {
	actorResolver
	relationships *services.RelationshipService
}

func NewRelationshipHandler(profiles *services.ProfileService, relationships *services.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{
		actorResolver: actorResolver{profiles: profiles},
		relationships: relationships,
	}
}

// RegisterRelationshipRoutes registers invite and friend routes. inviteLimit
// throttles sending invites.
func (h *RelationshipHandler) RegisterRelationshipRoutes(g *echo.Group, inviteLimit echo.MiddlewareFunc) {
	g.GET("/invites", h.GetInvites)
	g.GET("/invites/count", h.GetInvitesCount)
	g.GET("/invites/available", h.GetProfilesToInvite)
	g.POST("/invites", h.SendInvite, inviteLimit)
	g.POST("/invites/:profile_id/accept", h.AcceptInvite)
	g.POST("/invites/:profile_id/reject", h.RejectInvite)
	g.DELETE("/friends/:profile_id", h.RemoveFriend)
}

// GetInvites lists pending invites received by the caller.
func (h *RelationshipHandler) GetInvites(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	invites, err := h.relationships.InvitesReceived(c.Request().Context(), profile)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": invites})
}

func (h *RelationshipHandler) GetInvitesCount(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	count, err := h.relationships.InvitesReceivedCount(c.Request().Context(), profile)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// GetProfilesToInvite lists profiles the caller is not yet friends with.
func (h *RelationshipHandler) GetProfilesToInvite(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	profiles, err := h.relationships.ProfilesToInvite(c.Request().Context(), profile)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profiles})
}

func (h *RelationshipHandler) SendInvite(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}

	var req models.SendInviteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rel, err := h.relationships.SendInvite(c.Request().Context(), profile, req.ProfileID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": rel})
}

// AcceptInvite accepts the invite sent by :profile_id to the caller.
func (h *RelationshipHandler) AcceptInvite(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	senderID, err := parseID(c, "profile_id")
	if err != nil {
		return err
	}

	rel, err := h.relationships.AcceptInvite(c.Request().Context(), profile, senderID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": rel})
}

func (h *RelationshipHandler) RejectInvite(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	otherID, err := parseID(c, "profile_id")
	if err != nil {
		return err
	}

	if err := h.relationships.RejectInvite(c.Request().Context(), profile, otherID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RelationshipHandler) RemoveFriend(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	otherID, err := parseID(c, "profile_id")
	if err != nil {
		return err
	}

	if err := h.relationships.RemoveFriend(c.Request().Context(), profile, otherID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
