// Package handler contains the HTTP handlers, grouped per actor.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-cleaning-service/internal/service"
)

// reqCtx derives a bounded context for repository calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// currentUserID returns the authenticated user's ID set by the JWT
// middleware.
func currentUserID(c echo.Context) uint64 {
	id, _ := c.Get("user_id").(uint64)
	return id
}

// currentRole returns the authenticated user's role.
func currentRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// pathID parses the :id route parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// writeServiceError maps service sentinels to their stable HTTP codes.
// Unknown errors are logged and reported as a generic 500 so internals
// never leak to clients.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrAlreadyClaimed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already_claimed", "message": "this booking has already been taken"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status transition"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrBusy):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "busy", "message": "please retry"})
	default:
		log.Printf("handler: %s %s failed: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
