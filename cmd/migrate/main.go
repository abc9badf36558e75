package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"tillpoint/internal/config"
	"tillpoint/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// migrate applies the embedded schema. With -database-url it needs nothing
// else from the environment; otherwise the full API configuration is loaded.
func main() {
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.Parse()

	if err := run(*databaseURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(databaseURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var (
		pool   *pgxpool.Pool
		logger zerolog.Logger
		err    error
	)
	if databaseURL != "" {
		logger = config.NewLogger(config.LoggerConfig{Level: "info", Format: "console"}, "tillpoint-migrate")
		pool, err = database.NewPoolFromURL(ctx, databaseURL, config.DatabaseConfig{}, logger)
	} else {
		cfg, loadErr := config.LoadForTool()
		if loadErr != nil {
			return fmt.Errorf("failed to load configuration: %w", loadErr)
		}
		logger = config.NewLogger(cfg.Logger, "tillpoint-migrate")
		pool, err = database.NewPool(ctx, cfg.Database, logger)
	}
	if err != nil {
		return err
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("failed to query database name: %w", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	fmt.Printf("Schema applied to database: %s\n", dbName)
	return nil
}
