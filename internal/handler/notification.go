package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-cleaning-service/internal/repository"
)

// NotificationHandler serves the per-user notification inbox.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Notifications.ListByUser(ctx, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": items})
}

// MarkRead flags one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, currentUserID(c), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_read": true})
}

// MarkAllRead flags every unread notification of the caller.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// UnreadCount returns the caller's unread notification count, for
// badge display.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Notifications.UnreadCount(ctx, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}
