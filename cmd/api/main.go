package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomflow/account"
	"roomflow/config"
	"roomflow/db"
	"roomflow/docstore"
	"roomflow/httpapi"
	"roomflow/listing"
	"roomflow/metrics"
	"roomflow/notify"
	"roomflow/schema"
	"roomflow/verification"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	if err := schema.NewGuardian(pool).Ensure(ctx); err != nil {
		log.Fatalf("schema ensure failed: %v", err)
	}

	emitter := notify.NewEmitter(pool, logger)

	accountRepo := account.NewRepository(pool)
	accountService := account.NewService(accountRepo, emitter)
	profileService := account.NewProfileService(accountRepo, account.NewProfileRepository(pool))

	if err := accountService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("admin seed failed: %v", err)
	}

	store := docstore.New(cfg.UploadDir)
	verificationService := verification.NewService(pool, verification.NewRepository(pool), accountService, store, emitter)
	listingService := listing.NewService(pool, listing.NewRepository(pool), accountService, cfg.DefaultCity)

	server := httpapi.NewServer(
		accountService,
		profileService,
		verificationService,
		listingService,
		pool,
		logger,
		metrics.New(),
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
