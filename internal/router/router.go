// Package router wires the HTTP routes to their handlers and
// middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-cleaning-service/internal/handler"
	"github.com/iliyamo/hostel-cleaning-service/internal/middleware"
	"github.com/iliyamo/hostel-cleaning-service/internal/model"
)

// Handlers groups everything RegisterRoutes needs.
type Handlers struct {
	Auth          *handler.AuthHandler
	Bookings      *handler.BookingHandler
	Cleaner       *handler.CleanerHandler
	Admin         *handler.AdminHandler
	Notifications *handler.NotificationHandler
	Issues        *handler.IssueHandler
	JWTSecret     string
	RateLimit     echo.MiddlewareFunc
}

// RegisterRoutes registers the whole API surface. Public endpoints are
// the health check and the auth group; everything else requires a valid
// access token and is gated per role.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated auth operations. Rate limited so credential
	// stuffing burns through the bucket, not the database.
	auth := e.Group("/v1/auth")
	if h.RateLimit != nil {
		auth.Use(h.RateLimit)
	}
	auth.POST("/register/student", h.Auth.RegisterStudent)
	auth.POST("/register/cleaner", h.Auth.RegisterCleaner)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	// Everything below needs a verified access token.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(h.JWTSecret))

	v1.POST("/auth/logout", h.Auth.Logout)
	v1.GET("/me", h.Auth.Me)

	v1.GET("/notifications", h.Notifications.List)
	v1.POST("/notifications/:id/read", h.Notifications.MarkRead)
	v1.POST("/notifications/read-all", h.Notifications.MarkAllRead)
	v1.GET("/notifications/unread-count", h.Notifications.UnreadCount)

	// The status endpoint serves all three roles; the transitioner
	// decides who may drive which edge.
	v1.POST("/bookings/:id/status", h.Bookings.UpdateStatus,
		middleware.RequireRole(model.RoleStudent, model.RoleCleaner, model.RoleAdmin))
	v1.GET("/bookings/:id", h.Bookings.Get,
		middleware.RequireRole(model.RoleStudent, model.RoleCleaner, model.RoleAdmin))

	student := v1.Group("", middleware.RequireRole(model.RoleStudent))
	student.POST("/bookings", h.Bookings.Create)
	student.GET("/bookings", h.Bookings.List)
	student.GET("/bookings/history", h.Bookings.History)
	student.POST("/bookings/:id/payment/offline", h.Bookings.PayOffline)
	student.POST("/bookings/:id/payment/receipt", h.Bookings.UploadReceipt)

	cleaner := v1.Group("", middleware.RequireRole(model.RoleCleaner))
	cleaner.GET("/tasks/new", h.Cleaner.NewTasks)
	cleaner.GET("/tasks/today", h.Cleaner.Today)
	cleaner.GET("/tasks", h.Cleaner.Tasks)
	cleaner.GET("/tasks/history", h.Cleaner.History)
	cleaner.GET("/tasks/stats", h.Cleaner.Stats)
	cleaner.POST("/issues", h.Issues.Create)
	if h.RateLimit != nil {
		cleaner.POST("/bookings/:id/accept", h.Cleaner.Accept, h.RateLimit)
	} else {
		cleaner.POST("/bookings/:id/accept", h.Cleaner.Accept)
	}

	v1.GET("/issues", h.Issues.List,
		middleware.RequireRole(model.RoleCleaner, model.RoleAdmin))

	admin := v1.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/bookings/:id/assign", h.Admin.Assign)
	admin.GET("/admin/bookings", h.Admin.ListBookings)
	admin.GET("/admin/stats", h.Admin.Stats)
	admin.GET("/admin/cleaners", h.Admin.Cleaners)
	admin.GET("/admin/cleaners/available", h.Admin.AvailableCleaners)
	admin.POST("/admin/cleaners/:id/toggle", h.Admin.ToggleCleaner)
	admin.GET("/admin/receipts", h.Admin.Receipts)
	admin.POST("/issues/:id/status", h.Issues.UpdateStatus)
}
