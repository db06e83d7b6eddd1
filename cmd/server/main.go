package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/colefleming/mtg-binder/internal/api"
	"github.com/colefleming/mtg-binder/internal/api/handlers"
	"github.com/colefleming/mtg-binder/internal/auth"
	"github.com/colefleming/mtg-binder/internal/config"
	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/services"
	"github.com/colefleming/mtg-binder/internal/trade"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := database.Initialize(cfg.Server.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store := database.NewStore(database.GetDB())

	// Initialize services
	scryfallService := services.NewScryfallService(cfg.Scryfall.BaseURL)
	priceService := services.NewPriceService(scryfallService)
	userService := auth.NewService(store)
	sessions := auth.NewSessions([]byte(cfg.Auth.JWTSecret))
	tradeStore := trade.NewStore(store)

	env := handlers.NewEnv(store, userService, sessions, scryfallService, priceService, tradeStore)
	router := api.SetupRouter(cfg, env)

	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
