package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tillpoint/internal/auth"
	"tillpoint/internal/config"
	"tillpoint/internal/database"
	"tillpoint/internal/handler"
	"tillpoint/internal/idempotency"
	"tillpoint/internal/repository"
	"tillpoint/internal/router"
	"tillpoint/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "tillpoint-api")
	logger.Info().Msg("starting tillpoint API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	// Idempotency keys are optional; without Redis every sale request is fresh.
	var keys idempotency.Store
	if cfg.Redis.Enabled {
		rdb, err := idempotency.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer rdb.Close()
		keys = idempotency.NewRedisStore(rdb, cfg.Redis.IdempotencyTTL, 2*cfg.Sales.Timeout, logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")
	} else {
		logger.Info().Msg("idempotency keys disabled (redis not configured)")
	}

	// Initialize repositories
	saleRepo := repository.NewSaleRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize services
	saleService := service.NewSaleService(saleRepo, productRepo, couponRepo, keys, cfg.Sales, logger)
	productService := service.NewProductService(productRepo, categoryRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	couponService := service.NewCouponService(couponRepo, logger)
	authService := service.NewAuthService(userRepo, tokens, logger)

	mux := router.New(router.Handlers{
		Auth:       handler.NewAuthHandler(authService, logger),
		Sales:      handler.NewSaleHandler(saleService, logger),
		Products:   handler.NewProductHandler(productService, logger),
		Categories: handler.NewCategoryHandler(categoryService, logger),
		Coupons:    handler.NewCouponHandler(couponService, logger),
	}, tokens, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
