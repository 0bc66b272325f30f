package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/menuqr/config"
	"github.com/menuqr/menuqr/database"
	"github.com/menuqr/menuqr/notifications"
	"github.com/menuqr/menuqr/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Init()

	if err := database.ConnectAndMigrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Println("database connected and migrated")

	hub := notifications.NewHub()
	go hub.Run()

	svr := server.SetupRoutes(hub)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.Printf("listening on %s", cfg.ServerPort)
		if err := svr.Run(cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logrus.Panicf("server stopped, error: %v", err)
		}
	}()

	<-done
	logrus.Info("shutting down...")

	var result *multierror.Error
	if err := svr.Shutdown(shutdownTimeout); err != nil {
		result = multierror.Append(result, err)
	}
	hub.Stop()
	if err := database.ShutdownDatabase(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		logrus.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}

	logrus.Info("shutdown complete")
}
