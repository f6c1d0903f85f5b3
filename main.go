package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/flashlytics/internal/analytics"
	"github.com/example/flashlytics/internal/cache"
	"github.com/example/flashlytics/internal/config"
	"github.com/example/flashlytics/internal/database"
	"github.com/example/flashlytics/internal/digest"
	"github.com/example/flashlytics/internal/logger"
	"github.com/example/flashlytics/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logg.Sync()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if cfg.DatabaseDriver == "sqlite3" {
		if err := database.InitializeSchema(db); err != nil {
			logg.Fatal("Failed to initialize schema", "error", err)
		}
	}

	var resultCache cache.Store
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(logg, cfg.RedisAddr)
		if err != nil {
			logg.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisCache.Close()
		resultCache = redisCache
	} else {
		memory := cache.NewMemory()
		resultCache = memory

		// Janitor for the in-process cache; Redis expires its own keys.
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				memory.Sweep()
			}
		}()
	}

	engine := analytics.New(analytics.Deps{
		Reviews:    database.NewReviewRepository(db, cfg.Thresholds.MaxQueryRows),
		Sessions:   database.NewSessionRepository(db),
		Cards:      database.NewCardRepository(db),
		Thresholds: cfg.Thresholds,
		Cache:      resultCache,
		Log:        logg,
	})

	if cfg.TelegramToken != "" && len(cfg.DigestRecipients) > 0 {
		notifier, err := digest.NewTelegramNotifier(cfg.TelegramToken)
		if err != nil {
			logg.Fatal("Failed to create telegram notifier", "error", err)
		}
		recipients := make([]digest.Recipient, 0, len(cfg.DigestRecipients))
		for _, r := range cfg.DigestRecipients {
			recipients = append(recipients, digest.Recipient{UserID: r.UserID, ChatID: r.ChatID})
		}
		digests := digest.New(logg, engine, notifier, recipients)
		digests.Start()
		defer digests.Stop()
	}

	handler := server.NewAnalyticsHandler(logg, engine, cfg.Thresholds.CallTimeout())
	srv := server.New(logg, cfg.ListenAddr, handler)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logg.Info("Received signal, shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logg.Error("Error during shutdown", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		logg.Fatal("Server error", "error", err)
	}
	logg.Info("Server stopped")
}
