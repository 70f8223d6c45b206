package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopstream/internal/cart"
	"shopstream/internal/checkout"
	"shopstream/internal/config"
	"shopstream/internal/coupon"
	"shopstream/internal/handler"
	"shopstream/internal/notify"
	"shopstream/internal/repository"
	"shopstream/internal/router"
	"shopstream/internal/service"
	"shopstream/internal/storage"

	"github.com/rs/zerolog"
)

// notificationCapacity is how many recent notifications GET /api/notifications returns.
const notificationCapacity = 50

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("storage_backend", cfg.Storage.Backend).Msg("starting shopstream API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cart storage and store
	cartStorage, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open cart storage: %w", err)
	}
	defer cartStorage.Close()

	notifier := notify.NewLogNotifier(notificationCapacity, logger)

	cartStore, err := cart.Open(ctx, cartStorage, notifier, logger)
	if err != nil {
		return fmt.Errorf("failed to open cart: %w", err)
	}

	// Promo codes: built-in table merged with any configured files
	registry, err := coupon.NewRegistry(ctx, &coupon.RegistryConfig{
		Defaults:  coupon.DefaultRegistryConfig().Defaults,
		FilePaths: cfg.Promo.Files,
	}, promoLoader(ctx, cfg, logger), logger)
	if err != nil {
		return fmt.Errorf("failed to initialise promo registry: %w", err)
	}

	// Database
	pool, err := repository.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise database: %w", err)
	}
	defer pool.Close()

	if err := repository.ApplySchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Services
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, registry, logger)

	wizard := checkout.NewWizard(cartStore, orderService, registry, notifier, logger)

	mux := router.New(router.Handlers{
		Product:       handler.NewProductHandler(productService, logger),
		Order:         handler.NewOrderHandler(orderService, logger),
		Cart:          handler.NewCartHandler(cartStore, productService, registry, logger),
		Checkout:      handler.NewCheckoutHandler(wizard, logger),
		Notifications: handler.NewNotificationHandler(notifier, logger),
	}, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Int("promo_count", registry.Size()).
			Int("cart_items", cartStore.TotalItemCount()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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

// promoLoader reads promo files from S3 when enabled, falling back to the
// local file system.
func promoLoader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) coupon.Loader {
	fileLoader := coupon.NewFileLoader(logger)
	if !cfg.S3.Enabled {
		logger.Info().Msg("using local file system for promo files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}

	return coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
}
