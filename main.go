package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoicechat/backend/internal/adapter/extract"
	"invoicechat/backend/internal/adapter/imagestore"
	"invoicechat/backend/internal/adapter/render"
	"invoicechat/backend/internal/config"
	store "invoicechat/backend/internal/repository"
	"invoicechat/backend/internal/service"
	transport "invoicechat/backend/internal/transport/http"
	"invoicechat/backend/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting invoice chat backend...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Extraction URL: %s", cfg.ExtractionURL)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Initialize adapters
	extractor := extract.NewExtractor(cfg.ExtractionURL, cfg.ExtractionAPIKey, cfg.ExtractionModel, cfg.ExtractionTimeout)
	renderer := render.NewRenderer(cfg.RenderURL, cfg.RenderTimeout)

	var images imagestore.Store
	if os.Getenv(extract.EnvMode) == extract.ModeMock {
		log.Println("INVOICECHAT_MODE=MOCK detected, using in-memory image store")
		images = imagestore.NewMemoryStore()
	} else {
		images, err = imagestore.NewMinioStore(ctx, imagestore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize image store: %v", err)
		}
	}

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service and server
	svc := service.New(db, extractor, renderer, images, cfg, policyEngine)
	server := transport.NewServer(svc)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Backend stopped")
}
