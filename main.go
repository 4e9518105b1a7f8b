package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/config"
	"github.com/quartermasters/nudge-engine/pkg/crypto"
	"github.com/quartermasters/nudge-engine/pkg/database"
	"github.com/quartermasters/nudge-engine/pkg/handlers"
	"github.com/quartermasters/nudge-engine/pkg/integrations"
	"github.com/quartermasters/nudge-engine/pkg/llm"
	"github.com/quartermasters/nudge-engine/pkg/logging"
	"github.com/quartermasters/nudge-engine/pkg/middleware"
	"github.com/quartermasters/nudge-engine/pkg/observability"
	"github.com/quartermasters/nudge-engine/pkg/repositories"
	"github.com/quartermasters/nudge-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Bool("shopify_configured", cfg.Shopify.IsConfigured()),
		zap.Bool("twilio_configured", cfg.Twilio.IsConfigured()),
		zap.Bool("sendgrid_configured", cfg.SendGrid.IsConfigured()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, cfg.Database.ConnectionString(), cfg.Database.MaxConnections)
	if err != nil {
		// Pool errors can echo the DSN, password included.
		logger.Fatal("Failed to connect to database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// Migrations run through database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		sqlDB.Close()
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	sqlDB.Close()

	metrics := observability.NewMetrics()

	chatClient, err := llm.NewChatClient(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to create chat client", zap.Error(err))
	}

	var tokenEnc *crypto.TokenEncryptor
	if cfg.TokenEncryptionKey != "" {
		tokenEnc, err = crypto.NewTokenEncryptor(cfg.TokenEncryptionKey)
		if err != nil {
			logger.Fatal("Failed to create token encryptor", zap.Error(err))
		}
	}

	// Repositories
	storeRepo := repositories.NewStoreRepository(db, tokenEnc)
	productRepo := repositories.NewProductRepository(db)
	knowledgeRepo := repositories.NewKnowledgeRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)
	recoveryRepo := repositories.NewCartRecoveryRepository(db)

	// Services
	assistantService := services.NewAssistantService(chatClient, metrics, logger)
	knowledgeService := services.NewKnowledgeService(knowledgeRepo, logger)
	dashboardService := services.NewDashboardService(conversationRepo, analyticsRepo, recoveryRepo)

	// Outbound integrations
	shopifyClient := integrations.NewShopifyClient(&cfg.Shopify, cfg.BaseURL, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(assistantService, storeRepo, conversationRepo, logger).RegisterRoutes(mux)
	handlers.NewKnowledgeHandler(knowledgeService, logger).RegisterRoutes(mux)
	handlers.NewDashboardHandler(dashboardService, logger).RegisterRoutes(mux)
	handlers.NewShopifyHandler(shopifyClient, storeRepo, productRepo, logger).RegisterRoutes(mux)

	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	handler := middleware.RequestLogger(logger)(middleware.HTTPMetrics(metrics)(mux))

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting nudge-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}

	logger.Info("nudge-engine stopped")
}
