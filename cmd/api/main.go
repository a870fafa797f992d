package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cfl-legal/chambers-backend/api/routes"
	"github.com/cfl-legal/chambers-backend/internal/authn"
	"github.com/cfl-legal/chambers-backend/internal/cases"
	"github.com/cfl-legal/chambers-backend/internal/documents"
	"github.com/cfl-legal/chambers-backend/internal/folders"
	"github.com/cfl-legal/chambers-backend/internal/practiceareas"
	"github.com/cfl-legal/chambers-backend/internal/roles"
	"github.com/cfl-legal/chambers-backend/internal/settings"
	"github.com/cfl-legal/chambers-backend/internal/users"
	"github.com/cfl-legal/chambers-backend/pkg/config"
	"github.com/cfl-legal/chambers-backend/pkg/db"
	"github.com/cfl-legal/chambers-backend/pkg/logger"
	"github.com/cfl-legal/chambers-backend/pkg/metrics"
	"github.com/cfl-legal/chambers-backend/pkg/migrate"
	"github.com/cfl-legal/chambers-backend/pkg/redis"
	"github.com/cfl-legal/chambers-backend/pkg/storage/local"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	blobStore, err := local.New(cfg.Uploads.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload storage", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	roleRepo := roles.NewRepository(gdb)
	areaRepo := practiceareas.NewRepository(gdb)
	caseRepo := cases.NewRepository(gdb)
	folderRepo := folders.NewRepository(gdb)
	documentRepo := documents.NewRepository(gdb)
	settingRepo := settings.NewRepository(gdb)

	authService, err := authn.NewService(userRepo, roleRepo, areaRepo, cfg.JWT, cfg.Password)
	requireService(logg, "auth", err)
	userService, err := users.NewService(userRepo, roleRepo, cfg.Password)
	requireService(logg, "users", err)
	roleService, err := roles.NewService(roleRepo)
	requireService(logg, "roles", err)
	areaService, err := practiceareas.NewService(areaRepo, userRepo)
	requireService(logg, "practice areas", err)
	caseService, err := cases.NewService(caseRepo, areaRepo, userRepo)
	requireService(logg, "cases", err)
	folderService, err := folders.NewService(folderRepo)
	requireService(logg, "folders", err)
	documentService, err := documents.NewService(documentRepo, caseRepo, folderRepo, blobStore)
	requireService(logg, "documents", err)
	settingService, err := settings.NewService(settingRepo)
	requireService(logg, "settings", err)

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, routes.Services{
			Auth:          authService,
			Users:         userService,
			Roles:         roleService,
			PracticeAreas: areaService,
			Cases:         caseService,
			Folders:       folderService,
			Documents:     documentService,
			Settings:      settingService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+name+" service", err)
		os.Exit(1)
	}
}
