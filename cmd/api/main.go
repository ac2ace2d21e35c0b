package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"settlement-pipeline/internal/api/handlers"
	"settlement-pipeline/internal/api/middleware"
	"settlement-pipeline/internal/config"
	"settlement-pipeline/internal/log"
	"settlement-pipeline/internal/metrics"
	"settlement-pipeline/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	cfgPath := flag.String("config", "", "Path to YAML config (default: built-in paths)")
	addr := flag.String("addr", ":"+port, "HTTP listen address")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := log.Setup(os.Stdout, level)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	cacheTTL := time.Hour
	if ttlStr := os.Getenv("MERGED_CACHE_TTL"); ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil {
			cacheTTL = parsed
		}
	}

	m := metrics.New()
	h := handlers.NewPipelineHandler(pipeline.New(cfg, m), cacheTTL)

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/datasets", h.ListDatasets)
		api.GET("/merged", h.GetMerged)
		api.GET("/summary", h.GetSummary)
		api.GET("/runs/last", h.GetLastRun)
		api.POST("/pipeline/run", h.RunPipeline)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 30*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// Start server
	logger.Info("starting API server", slog.String("addr", *addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server exited cleanly")
}
