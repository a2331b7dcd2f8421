package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/menuboard/config"
	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/database/dbhelper"
	"github.com/ray-remotestate/menuboard/imagehost"
	"github.com/ray-remotestate/menuboard/server"
	"github.com/ray-remotestate/menuboard/utils"
)

func main() {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config, error: %v", err)
	}
	setupLogging(cfg)

	ctx := context.Background()
	if err := database.ConnectAndMigrate(ctx, cfg.DatabaseURL); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Info("migration is successful")

	if err := seedAdmin(ctx, cfg); err != nil {
		logrus.WithError(err).Error("failed to seed admin user")
	}

	srv := server.SetupRoutes(server.Options{
		Uploader: imagehost.New(imagehost.Config{
			UploadURL:  cfg.ImageKit.UploadURL,
			PrivateKey: cfg.ImageKit.PrivateKey,
			Timeout:    cfg.ImageKit.Timeout,
		}),
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})
	go func() {
		if err := srv.Run(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Panicf("failed to run server, error: %v", err)
		}
	}()
	logrus.WithField("port", cfg.Port).Info("server started")

	<-done

	logrus.Info("shutting down...")
	if err := srv.Shutdown(cfg.ShutdownTimeout); err != nil {
		logrus.WithError(err).Error("failed to gracefully shutdown server")
	}
	if err := database.ShutdownDatabase(); err != nil {
		logrus.WithError(err).Error("failed to close database connection!")
	}

	logrus.Info("system is shut ..zzz")
}

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func seedAdmin(ctx context.Context, cfg *config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	hashedPassword, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	username := strings.ToLower(strings.TrimSpace(cfg.AdminUsername))
	created, err := dbhelper.SeedAdmin(ctx, username, hashedPassword)
	if err != nil {
		return err
	}
	if created {
		logrus.WithField("username", username).Info("admin user created")
	}
	return nil
}
