package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopping-lists/internal/app"
	"shopping-lists/internal/config"
	"shopping-lists/internal/metrics"
	"shopping-lists/internal/storage"
	"shopping-lists/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Open the store selected by the config
	store, db, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	var metricsStore *metrics.Store
	var sessionStore telegram.ConversationStore
	if db != nil {
		defer db.Close()
		metricsStore = metrics.NewStore(db.SQL)
		sessionStore = telegram.NewSessionRepository(db.SQL, telegram.SessionTTL)
	}

	shoppingApp, err := app.New(ctx, store)
	if err != nil {
		log.Fatalf("Failed to load shopping lists: %v", err)
	}

	// 3. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, shoppingApp, metricsStore, sessionStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 4. Drop idle chats once an hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n := bot.CleanupSessions(); n > 0 {
				log.Printf("Dropped %d idle chat sessions", n)
			}
		}
	}()

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
