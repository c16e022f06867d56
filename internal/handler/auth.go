package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-cleaning-service/internal/config"
	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/repository"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
	"github.com/iliyamo/hostel-cleaning-service/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerStudentReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	StudentID  string `json:"student_id"`
	Block      string `json:"block"`
	RoomNumber string `json:"room_number"`
	Phone      string `json:"phone,omitempty"`
}

type registerCleanerReq struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	StaffID        string `json:"staff_id"`
	Phone          string `json:"phone,omitempty"`
	AssignedBlocks string `json:"assigned_blocks,omitempty"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// RegisterStudent creates a student account with its profile and
// returns a token pair immediately.
func (h *AuthHandler) RegisterStudent(c echo.Context) error {
	var req registerStudentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password/name required"})
	}
	req.StudentID = strings.ToUpper(strings.TrimSpace(req.StudentID))
	req.Block = strings.ToUpper(strings.TrimSpace(req.Block))
	req.RoomNumber = strings.ToUpper(strings.TrimSpace(req.RoomNumber))
	if !utils.ValidStudentID(req.StudentID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": utils.ErrBadStudentID.Error()})
	}
	if !utils.ValidBlock(req.Block) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": utils.ErrBadBlock.Error()})
	}
	if !utils.ValidRoom(req.RoomNumber) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": utils.ErrBadRoom.Error()})
	}
	if req.Phone != "" && !utils.ValidPhone(req.Phone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": utils.ErrBadPhone.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.CreateStudent(ctx, req.Email, req.Password, req.Name, h.Cfg.BcryptCost, model.StudentProfile{
		StudentID:  req.StudentID,
		Block:      req.Block,
		RoomNumber: req.RoomNumber,
		Phone:      req.Phone,
	})
	if err != nil {
		switch err {
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		case repository.ErrStudentIDExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "student id already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return h.issuePair(c, http.StatusCreated, userPart{ID: uid, Email: req.Email, Name: req.Name, Role: model.RoleStudent})
}

// RegisterCleaner creates a cleaner account with its profile.
func (h *AuthHandler) RegisterCleaner(c echo.Context) error {
	var req registerCleanerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.StaffID = strings.ToUpper(strings.TrimSpace(req.StaffID))
	if req.Email == "" || req.Password == "" || req.Name == "" || req.StaffID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password/name/staff_id required"})
	}
	if req.Phone != "" && !utils.ValidPhone(req.Phone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": utils.ErrBadPhone.Error()})
	}
	if req.AssignedBlocks != "" {
		for _, blk := range strings.Split(req.AssignedBlocks, ",") {
			if !utils.ValidBlock(strings.ToUpper(strings.TrimSpace(blk))) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": utils.ErrBadBlock.Error()})
			}
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.CreateCleaner(ctx, req.Email, req.Password, req.Name, h.Cfg.BcryptCost, model.CleanerProfile{
		StaffID:        req.StaffID,
		Phone:          req.Phone,
		AssignedBlocks: req.AssignedBlocks,
	})
	if err != nil {
		switch err {
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		case repository.ErrStaffIDExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "staff id already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return h.issuePair(c, http.StatusCreated, userPart{ID: uid, Email: req.Email, Name: req.Name, Role: model.RoleCleaner})
}

// Login verifies credentials and returns a new token pair. Deactivated
// accounts are rejected.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == service.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account deactivated"})
	}
	return h.issuePair(c, http.StatusOK, userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
}

// Refresh validates the refresh token by hash, revokes it and issues a
// fresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account deactivated"})
	}
	return h.issuePair(c, http.StatusOK, userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
}

// Logout revokes all refresh tokens of the authenticated user.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, currentUserID(c)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user's account and role profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, currentUserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := echo.Map{"user": u}
	switch u.Role {
	case model.RoleStudent:
		if p, err := h.Users.GetStudentProfile(ctx, u.ID); err == nil {
			resp["profile"] = p
		}
	case model.RoleCleaner:
		if p, err := h.Users.GetCleanerProfile(ctx, u.ID); err == nil {
			resp["profile"] = p
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) issuePair(c echo.Context, status int, user userPart) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(status, authResp{
		User:    user,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}
