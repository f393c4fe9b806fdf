package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	logrus "github.com/sirupsen/logrus"

	"bus_booking/internal/auth"
	"bus_booking/internal/config"
	"bus_booking/internal/logger"
	"bus_booking/internal/routes"
	"bus_booking/internal/scheduler"
)

func main() {
	settings := config.LoadSettings()
	logger.Setup(settings.LogLevel)

	db := config.InitDB(settings)
	if err := config.EnsureAdmin(db, settings); err != nil {
		logrus.WithError(err).Fatal("admin seeding failed")
	}

	tokens := auth.NewTokenManager(settings.JWTSecret, settings.AccessTokenTTL, settings.RefreshTokenTTL)

	sweeper := scheduler.NewSweeper(db, settings.SweepInterval, settings.SweepDelayThreshold)
	sweeper.Start()

	router := routes.SetupRouter(db, tokens)
	server := &http.Server{
		Addr:         settings.AppAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", settings.AppAddr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutdown signal received")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
	logrus.Info("server stopped")
}
