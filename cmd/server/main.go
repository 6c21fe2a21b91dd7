// Package main provides the API server entry point for JobBuddy.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobbuddy/internal/api"
	"github.com/jobbuddy/internal/bootstrap"
	"github.com/jobbuddy/internal/config"
	"github.com/jobbuddy/internal/ratelimit"
)

func main() {
	fmt.Println("JobBuddy API Server")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := bootstrap.InitLogging(cfg)

	// Initialize database connections
	logger.Info("Connecting to databases...")
	app, err := bootstrap.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to databases")
	}
	defer app.Close()

	serverConfig := &api.ServerConfig{
		Host:                  cfg.Server.Host,
		Port:                  cfg.Server.Port,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           60 * time.Second,
		ShutdownTimeout:       cfg.Server.ShutdownTimeout,
		RateLimitRPS:          cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:        cfg.RateLimit.Burst,
		FollowUpThresholdDays: cfg.Worker.FollowUpThresholdDays,
	}

	if cfg.RateLimit.Shared && app.Redis != nil {
		window, err := ratelimit.NewWindowLimiter(&ratelimit.WindowLimiterConfig{
			Redis:             app.Redis.Client(),
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to create shared rate limiter")
		}
		serverConfig.SharedRateLimit = window
		logger.WithField("perMinute", window.Limit()).Info("Shared rate limiting enabled")
	}

	server := api.NewServer(serverConfig, api.DependenciesFromServices(app.Services), logger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
