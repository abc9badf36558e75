package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tillpoint/internal/config"
	"tillpoint/internal/coupon"
	"tillpoint/internal/database"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
)

func main() {
	org := flag.String("org", "", "organization ID the coupons belong to")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: couponimport -org <uuid> file.csv.gz [file.csv.gz ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*org, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(org string, files []string) error {
	orgID, err := uuid.Parse(org)
	if err != nil {
		return fmt.Errorf("invalid -org %q: %w", org, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no coupon files given")
	}

	cfg, err := config.LoadForTool()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger, "tillpoint-couponimport")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// S3 first when enabled, local file system otherwise or on failure.
	fileLoader := coupon.NewFileLoader(logger)
	var s3Loader coupon.Loader
	if cfg.S3.Enabled {
		s3Loader, err = coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
	}
	loader := coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	importer := coupon.NewImporter(loader, repository.NewCouponRepository(pool, logger), logger)
	result, err := importer.Import(ctx, orgID, files)
	if err != nil {
		return err
	}

	fmt.Printf("Read %d coupons: %d inserted, %d skipped\n", result.Read, result.Inserted, result.Skipped)
	return nil
}
