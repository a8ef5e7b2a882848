package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ticket-aggregator/internal/config"
	"ticket-aggregator/internal/database"
	"ticket-aggregator/internal/handlers"
	"ticket-aggregator/internal/jobs"
	"ticket-aggregator/internal/match"
	"ticket-aggregator/internal/repository"
	"ticket-aggregator/internal/scrape"
	"ticket-aggregator/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize core services
	repo := repository.NewRepository(database.GetDB())
	matcher := match.NewMatcher(cfg.Crawl.MatchThreshold)
	ingestService := services.NewIngestService(repo, matcher, time.Now)

	// Marketplace scrape sources are registered here. The browser-driven
	// clients live outside this module; an empty list leaves the API
	// read-only and the crawl job idle.
	var sources []scrape.Source

	// Start the periodic crawl job
	ingestJob := jobs.NewIngestJob(ingestService, sources, cfg.Crawl.Queries)
	ingestJob.Start(time.Duration(cfg.Crawl.IntervalHours) * time.Hour)
	log.Println("Ingest job started")

	// Set up Gin router
	router := gin.Default()

	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	eventHandler := handlers.NewEventHandler(repo, ingestService, sources)

	api := router.Group("/api")
	{
		api.GET("/events", eventHandler.GetEvents)
		api.GET("/events/:id", eventHandler.GetEventByID)
		api.POST("/crawl", eventHandler.TriggerCrawl)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
