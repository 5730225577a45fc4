package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/researchmatch/job-service/internal/config"
	"github.com/researchmatch/job-service/internal/repositories/postgres"
	"github.com/researchmatch/job-service/internal/seed"
	"github.com/researchmatch/job-service/internal/utils"
	"github.com/researchmatch/job-service/pkg"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Seed failed: %v", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred closes happen
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := utils.NewJSONLogger(os.Stdout, cfg.LogLevel)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed.Run(ctx, db, repo, cfg.IsDevelopment(), logger); err != nil {
		return err
	}

	logger.Info("Seed complete", "environment", cfg.Environment)
	return nil
}
