package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brigade-backend/internal/config"
	"brigade-backend/internal/database"
	"brigade-backend/internal/handlers"
	"brigade-backend/internal/middleware"
	"brigade-backend/internal/router"
	"brigade-backend/internal/services"
	"brigade-backend/internal/web"
	"brigade-backend/migrations"
)

func main() {
	log.Println("🚀 Starting Brigade Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Open Database and Apply Migrations ────
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	stores, err := database.OpenStores(ctx, cfg.DatabaseURL, cfg.MigrationsFS(migrations.FS))
	cancel()
	if err != nil {
		log.Fatalf("✗ Database setup failed: %v", err)
	}
	defer stores.Close()
	if database.IsSQLite(cfg.DatabaseURL) {
		log.Println("✓ SQLite database opened")
	} else {
		log.Println("✓ PostgreSQL connected, migrations applied")
	}

	// ──── Step 3: Initialize Redis (optional) ────
	var throttle services.LoginThrottle
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		throttle = services.NewRedisLoginThrottle(redisClient)
		log.Println("✓ Redis connected, login throttle enabled")
	} else {
		log.Println("• REDIS_URL not set, login throttle disabled")
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, cfg.TokenTTL, cfg.SecureCookies())
	authService := services.NewAuthService(stores.Accounts, jwtAuth, throttle)
	submissionService := services.NewSubmissionService(authService, stores.Violations, stores.Sessions)
	reportingService := services.NewReportingService(stores.Accounts, stores.Violations, stores.Sessions)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("✗ Page templates failed to load: %v", err)
	}

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, jwtAuth)
	recordHandler := handlers.NewSessionRecordHandler(authService, submissionService, reportingService)
	reportHandler := handlers.NewReportHandler(reportingService, cfg.LeaderboardSize)
	pageHandler := handlers.NewPageHandler(authService, reportingService, jwtAuth, renderer, cfg.LeaderboardSize)

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer authLimiter.Stop()

	// ──── Step 4: Start HTTP Server ────
	r := router.New(jwtAuth, authLimiter, authHandler, recordHandler, reportHandler, pageHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	idle := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		close(idle)
	}()

	log.Printf("✓ Brigade Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-idle
}
