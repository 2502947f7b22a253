package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/robfig/cron/v3"

	"github.com/advisordesk/costbasis-backend/internal/api"
	"github.com/advisordesk/costbasis-backend/internal/config"
	"github.com/advisordesk/costbasis-backend/internal/costbasis"
	"github.com/advisordesk/costbasis-backend/internal/database"
	"github.com/advisordesk/costbasis-backend/internal/repository"
	"github.com/advisordesk/costbasis-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Decode the settings encryption key, if configured
	var fernetKey *fernet.Key
	if cfg.Security.FernetKey != "" {
		fernetKey, err = fernet.DecodeKey(cfg.Security.FernetKey)
		if err != nil {
			log.Fatalf("Failed to decode FERNET_KEY: %v", err)
		}
	}

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	settingRepo := repository.NewSettingRepository(db, fernetKey)

	// Create services
	systemService := service.NewSystemService(db)
	portfolioService := service.NewPortfolioService(
		portfolioRepo,
		positionRepo,
	)
	transactionService := service.NewTransactionService(
		transactionRepo,
	)
	reportService := service.NewReportService(
		costbasis.NewEngine(cfg.Reporting.HoldingPeriodDays),
		transactionService,
		portfolioService,
	)
	priceService := service.NewPriceService(
		positionRepo,
		settingRepo,
		cfg.Quote.BaseURL,
	)

	// Schedule automatic price refreshes
	scheduler := cron.New()
	if cfg.Quote.RefreshSchedule != "" {
		if _, err := priceService.Schedule(scheduler, cfg.Quote.RefreshSchedule); err != nil {
			log.Fatalf("Failed to schedule price refresh: %v", err)
		}
		log.Printf("Price refresh scheduled: %s", cfg.Quote.RefreshSchedule)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(systemService, portfolioService, transactionService, reportService, priceService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
