package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wellspring-app/nutrition-service/config"
	"github.com/wellspring-app/nutrition-service/internal/api"
	"github.com/wellspring-app/nutrition-service/internal/database"
	"github.com/wellspring-app/nutrition-service/internal/middleware"
	"github.com/wellspring-app/nutrition-service/internal/router"
	"github.com/wellspring-app/nutrition-service/internal/server"
	"github.com/wellspring-app/nutrition-service/internal/service"
)

func main() {
	// .env is optional; production supplies real environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	s3Config, err := config.NewS3Config(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}

	photoService := service.NewCommunityPhotoService(db, service.NewS3PhotoStorage(s3Config))
	nutritionService := service.NewNutritionService(cfg, photoService, redisClient)
	tokenService := service.NewTokenService(cfg.JWTSecret)
	uploadLimiter := middleware.NewPhotoUploadRateLimiter(redisClient)

	r := router.SetupRouter(
		cfg,
		api.NewNutritionHandler(nutritionService),
		api.NewPhotoHandler(photoService),
		tokenService,
		uploadLimiter,
	)

	srv := server.New(r, cfg)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s:%s...", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	// Gracefully shutdown the server
	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
