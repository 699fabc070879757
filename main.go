package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event_ticketing/clock"
	"event_ticketing/config"
	"event_ticketing/database"
	"event_ticketing/handler"
	"event_ticketing/helper"
	"event_ticketing/logger"
	"event_ticketing/messaging"
	"event_ticketing/model"
	"event_ticketing/repository"
	"event_ticketing/router"
	"event_ticketing/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.LogLevel, cfg.App.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := model.PolicyByName(cfg.Tickets.TransitionPolicy)
	if err != nil {
		zlog.Fatal("invalid transition policy", zap.Error(err))
	}

	db, err := database.Connect(ctx, cfg.Database, cfg.Tickets.BatchSize, zlog)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close(db)
	database.Seed(db, zlog)

	sink, err := messaging.Open(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open messaging", zap.Error(err), zap.String("driver", cfg.Messaging.Driver))
	}
	defer sink.Close()

	reg := repository.NewDefaultRegistry(db, zlog)
	deps := service.Deps{
		Registry: reg,
		Sink:     sink,
		Policy:   policy,
		Clock:    clock.System{},
		Log:      zlog,
	}
	events := service.NewEventService(deps)
	bookings := service.NewBookingService(deps)

	stopConsumer := messaging.NewConsumer(sink, service.NewMessageHandler(events, zlog), zlog).Start(ctx)
	defer stopConsumer()

	scheduler, err := helper.StartHoldExpiryScheduler(bookings, cfg.Tickets.HoldTTL, cfg.Tickets.HoldExpiryInterval, zlog)
	if err != nil {
		zlog.Fatal("failed to start hold expiry scheduler", zap.Error(err))
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			zlog.Error("scheduler shutdown failed", zap.Error(err))
		}
	}()

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Server.BodyLimit,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CorsOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
		MaxAge:       600,
	}))

	h := handler.New(reg, events, bookings, cfg.Tickets.BatchSize, zlog)
	router.SetupRoutes(app, h, zlog)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("server shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("server starting", zap.String("addr", cfg.Server.Addr()), zap.String("messaging", cfg.Messaging.Driver))
	if err := app.Listen(cfg.Server.Addr()); err != nil {
		zlog.Error("server stopped", zap.Error(err))
	}
}
