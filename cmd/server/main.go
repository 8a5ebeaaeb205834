package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vaultix/vaultix/internal/api"
	"github.com/vaultix/vaultix/internal/api/handlers"
	"github.com/vaultix/vaultix/internal/config"
	"github.com/vaultix/vaultix/internal/contentstore"
	"github.com/vaultix/vaultix/internal/repositories"
	"github.com/vaultix/vaultix/internal/service"
)

// @title Vaultix API
// @version 1.0
// @description File lifecycle and storage accounting service
// @BasePath /
func main() {
	cfg := config.Envs

	db, err := repositories.Connect(cfg.DB_URL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	store := contentstore.NewS3Store(
		cfg.R2.AccessKeyID,
		cfg.R2.SecretAccessKey,
		cfg.R2.AccountID,
		cfg.R2.BucketName,
		cfg.R2.Region,
		cfg.R2.PublicBaseURL,
	)

	fileRepo := repositories.NewFileRepository(db)
	quotaRepo := repositories.NewQuotaRepository(db)
	userRepo := repositories.NewUserRepository(db)

	fileService := service.NewFileService(fileRepo, quotaRepo, userRepo, store, cfg.R2.PinTimeout)

	router := api.SetupRouter(
		db,
		handlers.NewAuthHandler(userRepo),
		handlers.NewFileHandler(fileService),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// Uploads can be large, so only the header read is tightly bounded.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting Vaultix server on port: %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Println("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
