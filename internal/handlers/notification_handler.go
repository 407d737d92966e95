package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	actorResolver
	notificationRepository repositories.NotificationRepository
	profileRepository      repositories.ProfileRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(profiles *services.ProfileService, notifRepo repositories.NotificationRepository, profileRepo repositories.ProfileRepository) *NotificationHandler {
	return &NotificationHandler{
		actorResolver:          actorResolver{profiles: profiles},
		notificationRepository: notifRepo,
		profileRepository:      profileRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// ActorSummary is the part of the acting profile shown next to a notification.
type ActorSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Slug     string `json:"slug"`
	Avatar   string `json:"avatar"`
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor *ActorSummary `json:"actor"`
}

func (h *NotificationHandler) enrichNotifications(ctx context.Context, notifications []models.Notification) []EnrichedNotification {
	enriched := make([]EnrichedNotification, len(notifications))
	actorCache := make(map[uint]*ActorSummary)

	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		actor, ok := actorCache[n.ActorID]
		if !ok {
			// Actors deleted since stay nil.
			if profile, err := h.profileRepository.GetByID(ctx, n.ActorID); err == nil {
				actor = &ActorSummary{
					ID:       profile.ID,
					Username: profile.User.Username,
					Slug:     profile.Slug,
					Avatar:   profile.Avatar,
				}
			}
			actorCache[n.ActorID] = actor
		}
		enriched[i].Actor = actor
	}
	return enriched
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	ctx := c.Request().Context()
	notifications, total, err := h.notificationRepository.GetByRecipientID(ctx, profile.ID, page, limit)
	if err != nil {
		return httpError(err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": h.enrichNotifications(ctx, notifications),
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	today, yesterday, thisWeek, older, err := h.notificationRepository.GetGrouped(ctx, profile.ID)
	if err != nil {
		return httpError(err)
	}

	unreadCount, err := h.notificationRepository.GetUnreadCount(ctx, profile.ID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": echo.Map{
				"today":     h.enrichNotifications(ctx, today),
				"yesterday": h.enrichNotifications(ctx, yesterday),
				"thisWeek":  h.enrichNotifications(ctx, thisWeek),
				"older":     h.enrichNotifications(ctx, older),
			},
			"unreadCount": unreadCount,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), profile.ID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}
	notifID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	updated, err := h.notificationRepository.MarkAsRead(c.Request().Context(), notifID, profile.ID)
	if err != nil {
		return httpError(err)
	}
	if !updated {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	profile, err := h.actor(c)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), profile.ID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}
