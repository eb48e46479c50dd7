package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Yanisdje/athleticabcknd/config"
	"github.com/Yanisdje/athleticabcknd/fetcher"
	"github.com/Yanisdje/athleticabcknd/handlers"
	"github.com/Yanisdje/athleticabcknd/metrics"
	"github.com/Yanisdje/athleticabcknd/middleware"
	"github.com/Yanisdje/athleticabcknd/openai"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Info(".env file not found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	// Validate required configuration
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	metrics.Register()

	// One configured client per process, shared across requests.
	llmClient := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIChatModel,
		cfg.OpenAITimeout, cfg.AnalysisMaxTokens, cfg.AnalysisTemperature)
	imageFetcher := fetcher.New(cfg.OpenAITimeout, cfg.MaxImageBytes)

	log.Infof("Analyzer LLM provider=%s model=%s", llmClient.SourceName(), cfg.OpenAIModel)

	// Initialize handlers
	h := handlers.New(cfg, llmClient, imageFetcher)

	// Setup HTTP server
	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/", h.Home)
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate-limited API routes
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, time.Minute))
	{
		api.POST("/analyze", h.Analyze)
		api.POST("/chat", h.Chat)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
