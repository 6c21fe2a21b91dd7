// Package main provides the reminder worker entry point for JobBuddy.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobbuddy/internal/bootstrap"
	"github.com/jobbuddy/internal/config"
	"github.com/jobbuddy/internal/worker"
)

func main() {
	fmt.Println("JobBuddy Reminder Worker")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := bootstrap.InitLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to databases")
	}
	defer app.Close()

	reminderWorker, err := worker.NewReminderWorker(&worker.ReminderWorkerConfig{
		Users:                 app.Store.Users,
		Outreach:              app.Store.Outreach,
		Applications:          app.Store.Applications,
		Reminders:             app.Store.Notifications,
		Notifier:              app.Services.Notifications,
		Logger:                logger,
		Interval:              cfg.Worker.Interval,
		PurgeAfterDays:        cfg.Worker.PurgeAfterDays,
		FollowUpThresholdDays: cfg.Worker.FollowUpThresholdDays,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create reminder worker")
	}

	if err := reminderWorker.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start reminder worker")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := reminderWorker.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("Worker did not stop cleanly")
	}

	logger.Info("Worker exited")
}
