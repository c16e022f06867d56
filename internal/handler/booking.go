package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
	"github.com/iliyamo/hostel-cleaning-service/internal/repository"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
	"github.com/iliyamo/hostel-cleaning-service/internal/utils"
)

// BookingHandler covers the student-facing booking endpoints plus the
// shared status endpoint used by all three roles.
type BookingHandler struct {
	Bookings     *repository.BookingRepo
	Users        *repository.UserRepo
	Transitioner *service.StatusTransitioner
	Dispatcher   service.Dispatcher
}

func NewBookingHandler(b *repository.BookingRepo, u *repository.UserRepo, t *service.StatusTransitioner, d service.Dispatcher) *BookingHandler {
	return &BookingHandler{Bookings: b, Users: u, Transitioner: t, Dispatcher: d}
}

type createBookingReq struct {
	BookingType   string `json:"booking_type"`
	PreferredDate string `json:"preferred_date"` // YYYY-MM-DD
	PreferredTime string `json:"preferred_time"` // HH:MM on the 30-minute grid
	Urgency       string `json:"urgency_level,omitempty"`
	Instructions  string `json:"special_instructions,omitempty"`
	Block         string `json:"block,omitempty"`       // defaults to the student's profile
	RoomNumber    string `json:"room_number,omitempty"` // defaults to the student's profile
}

type statusReq struct {
	Status string `json:"status"`
}

// Create validates the request, inserts the booking in
// WAITING_FOR_CLEANER and fans claim tickets out to every active
// cleaner in the same transaction.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	bookingType := model.BookingType(strings.ToUpper(strings.TrimSpace(req.BookingType)))
	if bookingType != model.TypeStandard && bookingType != model.TypeDeep {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_type must be STANDARD or DEEP"})
	}
	urgency := model.Urgency(strings.ToUpper(strings.TrimSpace(req.Urgency)))
	if urgency == "" {
		urgency = model.UrgencyNormal
	}
	if urgency != model.UrgencyNormal && urgency != model.UrgencyUrgent {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "urgency_level must be NORMAL or URGENT"})
	}
	date, err := time.Parse("2006-01-02", req.PreferredDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "preferred_date must be YYYY-MM-DD"})
	}
	if err := utils.ValidateSlot(date, req.PreferredTime, time.Now()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	studentID := currentUserID(c)
	block := strings.ToUpper(strings.TrimSpace(req.Block))
	room := strings.ToUpper(strings.TrimSpace(req.RoomNumber))
	if block == "" || room == "" {
		profile, err := h.Users.GetStudentProfile(ctx, studentID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "block and room_number required"})
		}
		if block == "" {
			block = profile.Block
		}
		if room == "" {
			room = profile.RoomNumber
		}
	}
	if !utils.ValidBlock(block) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": utils.ErrBadBlock.Error()})
	}
	if !utils.ValidRoom(room) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": utils.ErrBadRoom.Error()})
	}

	cleanerIDs, err := h.Users.ListActiveCleanerIDs(ctx)
	if err != nil {
		return writeServiceError(c, err)
	}

	b := model.Booking{
		StudentID:     studentID,
		BookingType:   bookingType,
		PreferredDate: date,
		PreferredTime: req.PreferredTime,
		Urgency:       urgency,
		Instructions:  strings.TrimSpace(req.Instructions),
		Block:         block,
		RoomNumber:    room,
	}
	ticketTitle := "New Cleaning Request"
	if urgency == model.UrgencyUrgent {
		ticketTitle = "New Urgent Cleaning Request"
	}
	ticketMsg := fmt.Sprintf("%s requested for %s - %s on %s at %s. First to accept gets the task.",
		bookingType.Display(), block, room, req.PreferredDate, req.PreferredTime)
	confirmMsg := fmt.Sprintf("Your %s request for %s at %s has been submitted. You will be notified when a cleaner accepts.",
		bookingType.Display(), req.PreferredDate, req.PreferredTime)

	if err := h.Bookings.Create(ctx, &b, cleanerIDs, ticketTitle, ticketMsg, "Booking Submitted", confirmMsg); err != nil {
		return writeServiceError(c, err)
	}

	if student, err := h.Bookings.GetUser(ctx, studentID); err == nil {
		h.Dispatcher.Notify(ctx, queue.NotificationEvent{
			Kind:        queue.EventBookingCreated,
			UserID:      studentID,
			Email:       student.Email,
			Phone:       student.Phone,
			BookingID:   b.ID,
			BookingType: string(b.BookingType),
			Block:       b.Block,
			RoomNumber:  b.RoomNumber,
			Date:        req.PreferredDate,
			Time:        req.PreferredTime,
			Title:       "Booking Submitted",
			Message:     confirmMsg,
			OccurredAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusCreated, b)
}

// List returns the student's own bookings, optionally filtered by
// status, date and type query parameters.
func (h *BookingHandler) List(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Bookings.ListByStudent(ctx, currentUserID(c), f)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// Get returns one booking. Students only see their own; anything else
// reads as missing.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	switch currentRole(c) {
	case model.RoleStudent:
		if b.StudentID != currentUserID(c) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
	case model.RoleCleaner:
		// Cleaners see claimable bookings and their own assignments.
		if b.Status != model.StatusWaitingForCleaner && !b.AssignedTo(currentUserID(c)) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

// History returns the student's completed and cancelled bookings.
func (h *BookingHandler) History(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Bookings.ListHistoryByStudent(ctx, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// UpdateStatus drives one lifecycle edge on behalf of the caller. The
// same endpoint serves all roles; who may drive which edge is enforced
// by the transitioner.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	target := model.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !target.IsValid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	actor := service.Actor{ID: currentUserID(c), Role: currentRole(c)}
	b, err := h.Transitioner.Transition(ctx, id, actor, target)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// PayOffline marks the student's completed booking as paid in cash.
func (h *BookingHandler) PayOffline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.RecordOfflinePayment(ctx, id, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	h.dispatchPayment(c, &b)
	return c.JSON(http.StatusOK, b)
}

// UploadReceipt records an online payment. The stored receipt_ref is an
// opaque reference generated server-side; actual blob storage is
// external.
func (h *BookingHandler) UploadReceipt(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ref := uuid.NewString()
	b, err := h.Bookings.AttachReceipt(ctx, id, currentUserID(c), ref)
	if err != nil {
		return writeServiceError(c, err)
	}
	h.dispatchPayment(c, &b)
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) dispatchPayment(c echo.Context, b *model.Booking) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	student, err := h.Bookings.GetUser(ctx, b.StudentID)
	if err != nil {
		student = model.User{ID: b.StudentID}
	}
	h.Dispatcher.Notify(ctx, queue.NotificationEvent{
		Kind:       queue.EventPaymentReceived,
		UserID:     b.StudentID,
		Email:      student.Email,
		Phone:      student.Phone,
		BookingID:  b.ID,
		Title:      "Payment Received",
		Message:    fmt.Sprintf("Payment of %d for your %s has been recorded.", b.Price(), b.BookingType.Display()),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// parseFilter reads the shared status/date/type query parameters.
func parseFilter(c echo.Context) (repository.Filter, error) {
	var f repository.Filter
	if s := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); s != "" {
		status := model.Status(s)
		if !status.IsValid() {
			return f, fmt.Errorf("unknown status %q", s)
		}
		f.Status = status
	}
	if t := strings.ToUpper(strings.TrimSpace(c.QueryParam("type"))); t != "" {
		bt := model.BookingType(t)
		if bt != model.TypeStandard && bt != model.TypeDeep {
			return f, fmt.Errorf("unknown type %q", t)
		}
		f.Type = bt
	}
	if d := strings.TrimSpace(c.QueryParam("date")); d != "" {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return f, fmt.Errorf("date must be YYYY-MM-DD")
		}
		f.Date = d
	}
	return f, nil
}
