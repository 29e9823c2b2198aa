package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashdeck/internal/config"
	"flashdeck/internal/database"
	"flashdeck/internal/handlers"
	"flashdeck/internal/repository"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.MasterKey == "" {
		log.Println("Warning: SYNC_MASTER_KEY is not set; sync requests will be rejected")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Initialize repository and handlers
	docs := repository.NewDocumentRepository(db)
	decksHandler := handlers.NewDecksHandler(docs, cfg.MasterKey)
	rateLimiter := handlers.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /decks", decksHandler.GetDecks)
	mux.HandleFunc("POST /decks", decksHandler.SaveDecks)

	// Wrap with rate limiting and logging middleware
	handler := handlers.Logging(rateLimiter.Wrap(mux))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Sync server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}
