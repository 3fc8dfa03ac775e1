package main

import (
	"context"
	"errors"
	"juba-homez/internal/api/routes"
	"juba-homez/internal/config"
	"juba-homez/internal/models"
	"juba-homez/internal/mq"
	"juba-homez/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	loadLocalEnv()

	// Load configuration
	configPath := os.Getenv("JUBA_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Create the bootstrap admin if none exists
	authService := services.NewAuthService(db, cfg, services.NewTokenService(cfg), services.NewAuditService(db))
	if admin, err := authService.CreateDefaultAdmin(context.Background()); err != nil {
		log.Printf("Warning: Failed to create default admin: %v", err)
	} else if admin != nil {
		log.Printf("Created default admin %s", admin.Email)
	}

	// Notification fan-out is optional
	var publisher services.EventPublisher
	if cfg.Messaging.AMQPURL != "" {
		p, err := mq.NewPublisher(cfg.Messaging.AMQPURL, cfg.Messaging.Exchange)
		if err != nil {
			log.Printf("Warning: notifications will not be published: %v", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	routes.SetupRoutes(r, cfg, db, publisher)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting Juba Homez API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server stopped")
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; relying on existing environment")
	}
}
