package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/auditoria/docgen/internal/config"
	"github.com/auditoria/docgen/internal/findata"
	"github.com/auditoria/docgen/internal/generator"
	"github.com/auditoria/docgen/internal/infrastructure/persistence/repository"
	httpserver "github.com/auditoria/docgen/internal/interfaces/http"
	"github.com/auditoria/docgen/internal/replacements"
	"github.com/auditoria/docgen/pkg/database"
	"github.com/auditoria/docgen/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting audit document generation service",
		zap.Int("port", cfg.Server.Port),
		zap.String("template_dir", cfg.Templates.RootDir))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	auditRepo := repository.NewAuditRepository(db.DB, logger)
	financialRepo := repository.NewFinancialDataRepository(db.DB, logger)

	// Initialize document generation pipeline
	accessor := findata.NewAccessor(financialRepo, logger)
	loader := replacements.NewLoader(logger)

	gen := generator.New(generator.Config{
		ReplacementsPath: cfg.Templates.ReplacementsPath,
		TablesPath:       cfg.Templates.TablesPath,
		DownloadBaseURL:  cfg.Templates.DownloadBaseURL,
	}, accessor, loader, logger)

	// Initialize HTTP server
	handlers := httpserver.NewHandlers(auditRepo, gen, cfg.Templates.RootDir, logger)
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
