package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubpulse/clubpulse/internal/github"
	"github.com/clubpulse/clubpulse/internal/handlers"
	"github.com/clubpulse/clubpulse/internal/repositories"
	"github.com/clubpulse/clubpulse/internal/services"
	"github.com/clubpulse/clubpulse/pkg/config"
	"github.com/clubpulse/clubpulse/pkg/database"
	"github.com/clubpulse/clubpulse/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(config.AppConfig.Server.Mode)
	logger.Init()

	// Initialize database
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	githubClient, err := github.NewClient(config.AppConfig.GitHub.Token, config.AppConfig.GitHub.BaseURL)
	if err != nil {
		log.Fatalf("Failed to create GitHub client: %v", err)
	}

	snapshotRepo := repositories.NewSnapshotRepository(database.DB)
	statsService := services.NewStatsService(githubClient)
	cacheTTL := time.Duration(config.AppConfig.Stats.CacheTTLMinutes) * time.Minute
	cacheService := services.NewSnapshotCacheService(statsService, snapshotRepo, cacheTTL)
	exportService := services.NewExportService()

	// Initialize router
	router := gin.Default()
	setupRoutes(router, cacheService, exportService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func setupRoutes(router *gin.Engine, cacheService *services.SnapshotCacheService, exportService *services.ExportService) {
	statsHandler := handlers.NewStatsHandler(cacheService, exportService)
	healthHandler := handlers.NewHealthHandler()

	users := router.Group("/users")
	{
		users.GET("/:username/stats", statsHandler.GetStats)
		users.GET("/:username/stats/export", statsHandler.ExportStats)
	}

	router.GET("/health", healthHandler.HealthCheck)
}
