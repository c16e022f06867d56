package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-cleaning-service/internal/repository"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
)

// CleanerHandler covers the cleaner task board and the claim endpoint.
type CleanerHandler struct {
	Bookings *repository.BookingRepo
	Claims   *service.ClaimResolver
}

func NewCleanerHandler(b *repository.BookingRepo, cr *service.ClaimResolver) *CleanerHandler {
	return &CleanerHandler{Bookings: b, Claims: cr}
}

// NewTasks lists claimable bookings, urgent first then oldest first.
func (h *CleanerHandler) NewTasks(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Bookings.ListWaiting(ctx)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": items})
}

// Accept claims the booking for the calling cleaner. Exactly one
// concurrent caller wins; everybody else gets 409 already_claimed, and
// lock-wait timeouts surface as 503 so clients know to retry.
func (h *CleanerHandler) Accept(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Claims.Accept(ctx, id, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Today lists the cleaner's open tasks scheduled for today.
func (h *CleanerHandler) Today(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Bookings.ListTodayByCleaner(ctx, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": items})
}

// Tasks lists all of the cleaner's open tasks.
func (h *CleanerHandler) Tasks(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Bookings.ListByCleaner(ctx, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": items})
}

// History lists the cleaner's completed tasks.
func (h *CleanerHandler) History(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Bookings.ListHistoryByCleaner(ctx, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": items})
}

// Stats returns the cleaner's workload and earnings dashboard.
func (h *CleanerHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Bookings.StatsByCleaner(ctx, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
