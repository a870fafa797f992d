package main

import (
	"context"
	"os"

	"github.com/cfl-legal/chambers-backend/internal/practiceareas"
	"github.com/cfl-legal/chambers-backend/internal/roles"
	"github.com/cfl-legal/chambers-backend/internal/seed"
	"github.com/cfl-legal/chambers-backend/internal/users"
	"github.com/cfl-legal/chambers-backend/pkg/config"
	"github.com/cfl-legal/chambers-backend/pkg/db"
	"github.com/cfl-legal/chambers-backend/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	gdb := dbClient.DB()
	seeder, err := seed.New(
		roles.NewRepository(gdb),
		practiceareas.NewRepository(gdb),
		users.NewRepository(gdb),
		cfg.Password,
		logg,
	)
	if err != nil {
		logg.Error(ctx, "failed to create seeder", err)
		os.Exit(1)
	}

	if err := seeder.Run(ctx); err != nil {
		logg.Error(ctx, "seeding finished with errors", err)
		os.Exit(1)
	}
	logg.Info(ctx, "seeding complete")
}
