package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-cleaning-service/internal/config"
	"github.com/iliyamo/hostel-cleaning-service/internal/database"
	"github.com/iliyamo/hostel-cleaning-service/internal/handler"
	"github.com/iliyamo/hostel-cleaning-service/internal/middleware"
	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
	"github.com/iliyamo/hostel-cleaning-service/internal/repository"
	"github.com/iliyamo/hostel-cleaning-service/internal/router"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	var dispatcher service.Dispatcher = service.NopDispatcher{}
	if cfg.AMQPURL != "" {
		dispatcher = queue.NewPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartNotifyConsumer(cfg.AMQPURL); err != nil {
				log.Printf("notify-consumer stopped: %v", err)
			}
		}()
	} else {
		log.Printf("no broker configured, notification dispatch disabled")
	}

	bookings := repository.NewBookingRepo(db, cfg.LockWait)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	notifications := repository.NewNotificationRepo(db)
	issues := repository.NewIssueRepo(db)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
			log.Printf("admin bootstrap failed: %v", err)
		}
		cancel()
	}

	claims := service.NewClaimResolver(bookings, dispatcher)
	assignments := service.NewAssignmentController(bookings, dispatcher)
	transitioner := service.NewStatusTransitioner(bookings, dispatcher)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Bookings:      handler.NewBookingHandler(bookings, users, transitioner, dispatcher),
		Cleaner:       handler.NewCleanerHandler(bookings, claims),
		Admin:         handler.NewAdminHandler(bookings, users, assignments),
		Notifications: handler.NewNotificationHandler(notifications),
		Issues:        handler.NewIssueHandler(issues, bookings),
		JWTSecret:     cfg.JWTSecret,
		RateLimit:     middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
