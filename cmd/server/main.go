package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/taxroll/internal/config"
	"github.com/stwalsh4118/taxroll/internal/database"
	"github.com/stwalsh4118/taxroll/internal/handlers"
	"github.com/stwalsh4118/taxroll/internal/importer"
	"github.com/stwalsh4118/taxroll/internal/logger"
	"github.com/stwalsh4118/taxroll/internal/middleware"
	"github.com/stwalsh4118/taxroll/internal/repository"
	"github.com/stwalsh4118/taxroll/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting taxroll API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Connects, pings and applies migrations when DB_AUTO_MIGRATE is set
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":           cfg.Database.Host,
		"port":           cfg.Database.Port,
		"database":       cfg.Database.Name,
		"pool_min":       cfg.Database.PoolMin,
		"pool_max":       cfg.Database.PoolMax,
		"schema_version": database.SchemaVersion(),
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS))

	municipalityRepo := repository.NewMunicipalityRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)

	municipalityService := services.NewMunicipalityService(municipalityRepo, log)
	propertyService := services.NewPropertyService(propertyRepo, municipalityRepo, log)

	imp := importer.New(municipalityService, propertyService, log, cfg.Import.Workers)

	api := &handlers.Handlers{
		Health:         handlers.NewHealthHandler(db, cfg.Server.Env),
		Municipalities: handlers.NewMunicipalityHandler(municipalityService),
		Properties:     handlers.NewPropertyHandler(propertyService),
		Transfers:      handlers.NewTransferHandler(imp, municipalityService, propertyService, cfg.Import.MaxUploadBytes()),
		UploadLimit:    cfg.Import.MaxUploadBytes(),
	}
	api.Register(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
