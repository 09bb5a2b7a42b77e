package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/viguzmanp/boda-consu-seba/internal/config"
	"github.com/viguzmanp/boda-consu-seba/internal/seed"
	"github.com/viguzmanp/boda-consu-seba/internal/server"
	"github.com/viguzmanp/boda-consu-seba/internal/store"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	gin.SetMode(cfg.GinMode)

	for _, path := range []string{cfg.DBPath, cfg.ViewLogPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			log.WithError(err).WithField("path", path).Fatal("failed to create data directory")
		}
	}

	invitations, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open invitation store")
	}
	defer invitations.Close()

	views, err := store.NewViewLog(cfg.ViewLogPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open view log")
	}
	defer views.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seed.LoadFromFile(ctx, cfg.SeedFile, invitations); err != nil {
		log.WithError(err).Fatal("failed to seed data")
	}

	publicRouter, err := server.NewPublicRouter(ctx, cfg, invitations, views)
	if err != nil {
		log.WithError(err).Fatal("failed to build public router")
	}
	adminRouter, err := server.NewAdminRouter(cfg, invitations, views)
	if err != nil {
		log.WithError(err).Fatal("failed to build admin router")
	}

	srv := &http.Server{
		Handler: publicRouter,
		Addr:    net.JoinHostPort("0.0.0.0", cfg.Port),
	}
	adminSrv := &http.Server{
		Handler: adminRouter,
		Addr:    net.JoinHostPort("0.0.0.0", cfg.AdminPort),
	}

	go serve(srv, "server")
	go serve(adminSrv, "admin server")

	<-ctx.Done()
	log.Info("shutting down servers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("admin server shutdown error")
	}
}

func serve(srv *http.Server, name string) {
	log.WithField("addr", srv.Addr).Infof("starting %s", name)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatalf("%s error", name)
	}
}
