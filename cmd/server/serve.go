package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"salesbot-backend/internal/config"
	"salesbot-backend/internal/handlers"
	"salesbot-backend/internal/logging"
	"salesbot-backend/internal/middleware"
	"salesbot-backend/internal/profile"
	"salesbot-backend/internal/router"
	"salesbot-backend/internal/services"
)

const shutdownGrace = 30 * time.Second

func runServer(ctx context.Context) error {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()

	logger.Info("🚀 Starting Sales Assistant Backend...", zap.String("version", version), zap.String("env", cfg.Env))
	logger.Info("✓ Environment variables loaded")

	// ──── Step 2: Load Profile ────
	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return errors.Wrap(err, "profile")
	}
	logger.Info("✓ Profile loaded", zap.String("service", prof.Service.Name))

	// ──── Step 3: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, cfg.OutboundTimeout)
	if err != nil {
		return err
	}
	defer geminiService.Close()
	logger.Info("✓ Gemini Flash client initialized", zap.Int("concurrent_requests", cfg.GeminiConcurrentReqs))

	// ──── Initialize Services ────
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.NotifyEmail, cfg.OutboundTimeout, logger)
	webhook := services.NewDiscordWebhook(cfg.DiscordWebhookURL, cfg.OutboundTimeout)

	chatRelay := services.NewChatRelay(geminiService, prof, logger)
	leadForwarder := services.NewLeadForwarder(webhook, prof, logger)
	contactIntake := services.NewContactIntake(emailService, prof, logger)

	// ──── Initialize Handlers ────
	infoHandler := handlers.NewInfoHandler(prof)
	chatHandler := handlers.NewChatHandler(chatRelay)
	leadHandler := handlers.NewLeadHandler(leadForwarder)
	contactHandler := handlers.NewContactHandler(contactIntake)

	var apiLimiter *middleware.RateLimiter
	if cfg.APIRateLimitPerMin > 0 {
		apiLimiter = middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute, logger)
		defer apiLimiter.Stop()
		logger.Info("✓ API rate limiter enabled", zap.Int("per_minute", cfg.APIRateLimitPerMin))
	}

	// ──── Step 4: Start HTTP Server ────
	r := router.New(logger, apiLimiter, cfg.TrustProxyHeaders, infoHandler, chatHandler, leadHandler, contactHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OutboundTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("✓ Sales Assistant Backend ready on http://localhost:%s", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serveErr:
		if err != nil {
			return errors.Wrap(err, "server error")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	logger.Info("✓ Server stopped")
	return nil
}
