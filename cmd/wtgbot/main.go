package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"wtgbot/internal/bot"
	"wtgbot/internal/config"
	"wtgbot/internal/extractor"
	"wtgbot/internal/fetcher"
	"wtgbot/internal/health"
	"wtgbot/internal/pipeline"
	"wtgbot/internal/wtgapi"
)

func main() {
	// --- Configuration Loading ---
	// .env is optional; environment variables may be set directly.
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	log.WithFields(logrus.Fields{
		"port":          cfg.Port,
		"fetch_timeout": cfg.FetchTimeout().String(),
		"webhook_mode":  cfg.WebhookURL != "",
	}).Info("Configuration loaded successfully")

	// --- Initialize Components ---
	log.Info("Initializing components...")

	pageFetcher := fetcher.NewHTTPFetcher(cfg.FetchTimeout(), log)
	fieldExtractor := extractor.New(log)
	commentAPI := wtgapi.NewClient(cfg.APIBaseURL, cfg.FetchTimeout(), log)
	replyPipeline := pipeline.New(pageFetcher, fieldExtractor, commentAPI, log)

	botHandler, err := bot.NewHandler(cfg, replyPipeline, pageFetcher, log)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot handler: %v", err)
	}

	var webhook http.HandlerFunc
	if cfg.WebhookURL != "" {
		webhook = botHandler.WebhookHandler()
	}
	healthServer := health.NewServer(cfg.Port, webhook, log)

	// --- Application Startup ---
	log.Info("Starting WTG bot...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := healthServer.Start(); err != nil {
			log.WithError(err).Error("Health server stopped with error")
		}
	}()

	if cfg.WebhookURL != "" {
		go botHandler.StartWebhook(ctx)
	} else {
		go botHandler.Start(ctx)
	}

	log.Info("WTG bot is running. Press Ctrl+C to exit.")

	// --- Wait for Shutdown Signal ---
	<-ctx.Done()

	// --- Graceful Shutdown ---
	log.Info("Shutting down WTG bot...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down health server")
	}

	log.Info("WTG bot shut down gracefully.")
}
