package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravitas-games/buildplanner/internal/catalog"
	"github.com/gravitas-games/buildplanner/internal/config"
	"github.com/gravitas-games/buildplanner/internal/server"
	"github.com/gravitas-games/buildplanner/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting Build Planner Server...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/server.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Configuration loaded from %s", configPath)
	log.Printf("Server will run on %s:%d", cfg.Server.Host, cfg.Server.Port)

	cat, err := openCatalog(cfg.Catalog)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	st, err := store.Open(cfg.Storage.Driver, storageDSN(cfg),
		store.WithRedisPrefix(cfg.Redis.KeyPrefix),
		store.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB))
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer st.Close()
	log.Printf("Builds stored with the %s driver", cfg.Storage.Driver)

	srv, err := server.New(cfg, cat, st)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server listening on %s", addr)
		if err := srv.Start(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Printf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	if err := srv.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func storageDSN(cfg *config.Config) string {
	if cfg.Storage.Driver == "redis" {
		return cfg.Redis.Address
	}
	return cfg.Storage.SQLitePath
}

// openCatalog builds the item catalog from the wiki and the runeword file.
// Either may be absent; the planner then works with what was loaded.
func openCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	opts := []catalog.Option{
		catalog.WithFallbackImage(cfg.FallbackImage),
		catalog.WithFetchLimit(cfg.FetchLimit),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, catalog.WithSource(catalog.NewHTTPSource(cfg.BaseURL, cfg.RetryAttempts, cfg.RetryBackoff)))
	}
	cat := catalog.New(opts...)

	if cfg.BaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := cat.Initialize(ctx); err != nil {
			return nil, err
		}
		log.Printf("Catalog loaded %d items from %s", cat.Len(), cfg.BaseURL)
	} else {
		log.Println("No catalog base URL configured, starting with an empty catalog")
	}

	if cfg.RunewordsFile != "" {
		f, err := os.Open(cfg.RunewordsFile)
		if err != nil {
			return nil, fmt.Errorf("open runewords: %w", err)
		}
		defer f.Close()
		n, err := cat.LoadRunewords(f)
		if err != nil {
			return nil, err
		}
		log.Printf("Loaded %d runewords from %s", n, cfg.RunewordsFile)
	}
	return cat, nil
}
