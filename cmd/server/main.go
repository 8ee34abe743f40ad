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

	"github.com/IRO05/LocalCleric/internal/ai"
	"github.com/IRO05/LocalCleric/internal/calendar"
	"github.com/IRO05/LocalCleric/internal/chat"
	"github.com/IRO05/LocalCleric/internal/config"
	"github.com/IRO05/LocalCleric/internal/database"
	"github.com/IRO05/LocalCleric/internal/repository"
	"github.com/IRO05/LocalCleric/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate required config
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	// Run migrations
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Repositories and the calendar store
	eventRepo := repository.NewEventRepository(db)
	chatRepo := repository.NewChatRepository(db)
	listener := repository.NewEventListener(db)
	events := calendar.NewStore(eventRepo, listener)

	// Chat pipeline; the assistant is optional
	sessions := chat.NewSessions(chatRepo)
	scheduler := chat.NewScheduler(events)

	var orchestrator *chat.Orchestrator
	if cfg.AIAPIKey != "" {
		aiClient := ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		orchestrator = chat.NewOrchestrator(sessions, server.NewAIAssistant(aiClient), scheduler)
		log.Printf("AI client initialized (model: %s)", cfg.AIModel)
	} else {
		log.Println("AI client not configured, chat assistant disabled")
	}

	e := server.New(server.NewHandler(orchestrator, events))

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		cancel()
	}()

	log.Printf("Starting server on :%d...", cfg.HTTPPort)
	if err := e.Start(fmt.Sprintf(":%d", cfg.HTTPPort)); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
