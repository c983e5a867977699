package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/gurkanbulca/taskapproval/internal/config"
	"github.com/gurkanbulca/taskapproval/internal/database"
	"github.com/gurkanbulca/taskapproval/internal/logging"
	"github.com/gurkanbulca/taskapproval/internal/repository"
	"github.com/gurkanbulca/taskapproval/internal/service"
	"github.com/gurkanbulca/taskapproval/pkg/auth"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Database.Driver == config.DriverMemory {
		log.Fatalf("Nothing to migrate for the %q driver", cfg.Database.Driver)
	}

	logger := logging.New(cfg.Log)
	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("running database migrations", "driver", cfg.Database.Driver)
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations completed")

	if !cfg.Server.SeedData {
		return
	}

	seeded, err := service.NewSeeder(
		repository.NewSQLUserRepository(db),
		repository.NewSQLTaskRepository(db),
		auth.NewPasswordManager(),
		logger,
	).Seed(ctx)
	if err != nil {
		logger.Error("failed to seed data", "error", err)
		os.Exit(1)
	}
	logger.Info("seed finished", "written", seeded)
}
