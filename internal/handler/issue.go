package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/repository"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
)

// IssueHandler covers maintenance issue reporting (cleaners) and triage
// (admins).
type IssueHandler struct {
	Issues   *repository.IssueRepo
	Bookings *repository.BookingRepo
}

func NewIssueHandler(i *repository.IssueRepo, b *repository.BookingRepo) *IssueHandler {
	return &IssueHandler{Issues: i, Bookings: b}
}

type createIssueReq struct {
	BookingID   uint64 `json:"booking_id"`
	IssueType   string `json:"issue_type"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// Create files an issue against a booking the cleaner is assigned to.
func (h *IssueHandler) Create(c echo.Context) error {
	var req createIssueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	issueType := model.IssueType(strings.ToUpper(strings.TrimSpace(req.IssueType)))
	switch issueType {
	case model.IssuePlumbing, model.IssueElectrical, model.IssueDamage, model.IssueOther:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "issue_type must be PLUMBING, ELECTRICAL, DAMAGE or OTHER"})
	}
	if strings.TrimSpace(req.Description) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cleanerID := currentUserID(c)
	b, err := h.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return writeServiceError(c, err)
	}
	if !b.AssignedTo(cleanerID) {
		return writeServiceError(c, service.ErrForbidden)
	}

	issue := model.Issue{
		BookingID:   b.ID,
		ReportedBy:  cleanerID,
		IssueType:   issueType,
		Description: strings.TrimSpace(req.Description),
		PhotoURL:    strings.TrimSpace(req.PhotoURL),
	}
	if err := h.Issues.Create(ctx, &issue); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, issue)
}

// List returns the caller's issues; admins see all of them.
func (h *IssueHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		items []model.Issue
		err   error
	)
	if currentRole(c) == model.RoleAdmin {
		items, err = h.Issues.ListAll(ctx)
	} else {
		items, err = h.Issues.ListByReporter(ctx, currentUserID(c))
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"issues": items})
}

type issueStatusReq struct {
	Status        string `json:"status"`
	AssignedStaff string `json:"assigned_staff,omitempty"`
}

// UpdateStatus moves an issue through OPEN / IN_PROGRESS / RESOLVED and
// optionally records the dispatched staff. Admin only.
func (h *IssueHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req issueStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.IssueStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	switch status {
	case model.IssueOpen, model.IssueInProgress, model.IssueResolved:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be OPEN, IN_PROGRESS or RESOLVED"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	issue, err := h.Issues.UpdateStatus(ctx, id, status, strings.TrimSpace(req.AssignedStaff))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, issue)
}
