package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-cleaning-service/internal/repository"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
)

// AdminHandler covers the admin dashboard and the force-assignment
// override.
type AdminHandler struct {
	Bookings    *repository.BookingRepo
	Users       *repository.UserRepo
	Assignments *service.AssignmentController
}

func NewAdminHandler(b *repository.BookingRepo, u *repository.UserRepo, a *service.AssignmentController) *AdminHandler {
	return &AdminHandler{Bookings: b, Users: u, Assignments: a}
}

type assignReq struct {
	CleanerID uint64 `json:"cleaner_id"`
}

// Assign force-assigns a cleaner to the booking, overriding any claim.
func (h *AdminHandler) Assign(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req assignReq
	if err := c.Bind(&req); err != nil || req.CleanerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cleaner_id required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Assignments.ForceAssign(ctx, id, currentUserID(c), req.CleanerID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// ListBookings lists every booking with the shared filters.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Bookings.ListAll(ctx, f)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// Stats returns the platform dashboard numbers.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Bookings.Stats(ctx)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Cleaners lists every cleaner account with task counts.
func (h *AdminHandler) Cleaners(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Users.ListCleaners(ctx)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cleaners": items})
}

// AvailableCleaners lists active cleaners, least busy first, for the
// assignment picker.
func (h *AdminHandler) AvailableCleaners(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Users.ListAvailableCleaners(ctx)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cleaners": items})
}

type toggleReq struct {
	Active bool `json:"active"`
}

// ToggleCleaner activates or deactivates a cleaner account.
func (h *AdminHandler) ToggleCleaner(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req toggleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetCleanerActive(ctx, id, req.Active); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "active": req.Active})
}

// Receipts lists bookings with uploaded payment receipts for review.
func (h *AdminHandler) Receipts(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Bookings.ListReceipts(ctx)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}
