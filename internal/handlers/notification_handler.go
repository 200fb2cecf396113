package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	now                    func() time.Time
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
		now:                    time.Now,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PATCH("/notifications/read-all", h.MarkAllAsRead)
	g.PATCH("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// enrichNotifications attaches the compact actor to each notification
func (h *NotificationHandler) enrichNotifications(ctx context.Context, notifications []models.Notification) ([]models.EnrichedNotification, error) {
	actorIDs := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		if n.ActorID != nil {
			actorIDs = append(actorIDs, *n.ActorID)
		}
	}
	actors, err := h.userRepository.GetCompactUsers(ctx, actorIDs)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = models.EnrichedNotification{Notification: n}
		if n.ActorID == nil {
			continue
		}
		if actor, ok := actors[*n.ActorID]; ok {
			enriched[i].Actor = &actor
		}
	}
	return enriched, nil
}

// GetNotifications returns paginated notifications, newest first. ?unread=true
// restricts the page to unread ones.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	page, limit := pagination(c, 20)
	unreadOnly := c.QueryParam("unread") == "true"
	ctx := c.Request().Context()

	notifications, total, err := h.notificationRepository.GetByRecipientID(ctx, currentUserID, unreadOnly, page, limit)
	if err != nil {
		return internalError(err)
	}
	enriched, err := h.enrichNotifications(ctx, notifications)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"notifications": enriched}, page, limit, total)
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	grouped, err := h.notificationRepository.GetGrouped(ctx, currentUserID, h.now())
	if err != nil {
		return internalError(err)
	}
	unreadCount, err := h.notificationRepository.GetUnreadCount(ctx, currentUserID)
	if err != nil {
		return internalError(err)
	}

	buckets := echo.Map{}
	for name, group := range map[string][]models.Notification{
		"today":     grouped.Today,
		"yesterday": grouped.Yesterday,
		"thisWeek":  grouped.ThisWeek,
		"older":     grouped.Older,
	} {
		enriched, err := h.enrichNotifications(ctx, group)
		if err != nil {
			return internalError(err)
		}
		buckets[name] = enriched
	}
	return success(c, http.StatusOK, echo.Map{"notifications": buckets, "unreadCount": unreadCount})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), notifID, currentUserID); err != nil {
		return notFoundOr(err, "Notification not found")
	}
	return success(c, http.StatusOK, echo.Map{"id": notifID, "is_read": true})
}

// MarkAllAsRead marks every unread notification of the caller as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	updated, err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), currentUserID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"updated": updated})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.DeleteNotification(c.Request().Context(), notifID, currentUserID); err != nil {
		return notFoundOr(err, "Notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}
