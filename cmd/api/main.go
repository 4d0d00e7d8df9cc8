package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davidbraun/portfolio-api/internal/blog"
	"github.com/davidbraun/portfolio-api/internal/config"
	"github.com/davidbraun/portfolio-api/internal/handlers"
	"github.com/davidbraun/portfolio-api/internal/mail"
	middlewareCustom "github.com/davidbraun/portfolio-api/internal/middleware"
	"github.com/davidbraun/portfolio-api/internal/ratelimit"
	"github.com/davidbraun/portfolio-api/internal/routes"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Rate limiting: local fixed-window store with a distributed
	// sliding-window front when Redis is configured
	local := ratelimit.NewMemoryLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.Capacity)
	dial := func() (ratelimit.RemoteLimiter, error) {
		if cfg.RateLimit.ServiceURL == "" || cfg.RateLimit.ServiceToken == "" {
			return nil, nil
		}
		return ratelimit.NewRedisLimiter(
			cfg.RateLimit.ServiceURL,
			cfg.RateLimit.ServiceToken,
			cfg.RateLimit.Limit,
			cfg.RateLimit.Window,
		)
	}
	limiter := ratelimit.NewLimiter(dial, local, logger)

	// Mail sender; left nil when unconfigured so submissions surface the
	// misconfiguration instead of silently dropping
	var sender mail.Sender
	if cfg.Contact.Configured() {
		sesSender, err := mail.NewSESSender(context.Background(), cfg.Contact.AWSRegion, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		sender = sesSender
	} else {
		logger.Warn("contact mail service not configured, submissions will fail")
	}

	// Blog content source
	blogStore := blog.NewStore(cfg.Blog.ContentDir, logger)

	// Initialize handlers
	contactHandler := handlers.NewContactHandler(limiter, sender, cfg.Contact.FromAddress, cfg.Contact.ToAddress, logger)
	blogHandler := handlers.NewBlogHandler(blogStore)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.Register(router, contactHandler, blogHandler)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
