// Package cli defines the cobra command tree for the taxroll admin tool.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/taxroll/internal/config"
	"github.com/stwalsh4118/taxroll/internal/database"
	"github.com/stwalsh4118/taxroll/internal/logger"
	"github.com/stwalsh4118/taxroll/internal/repository"
	"github.com/stwalsh4118/taxroll/internal/services"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taxroll",
		Short:         "Administer municipalities and the property assessment roll",
		Long:          "Bulk import and export of municipalities and properties, and database migrations. Connection settings come from the same environment variables as the API server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newImportCmd(),
		newExportCmd(),
		newMigrateCmd(),
	)

	return root
}

// app holds the services a command needs, backed by a live database.
type app struct {
	cfg            *config.Config
	log            *logger.Logger
	db             *database.Database
	municipalities services.MunicipalityService
	properties     services.PropertyService
}

// openApp loads configuration and connects to the database. Logs go to
// stderr so stdout stays clean for exports.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.NewWithWriter(cfg.Server.Env, os.Stderr)

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	municipalityRepo := repository.NewMunicipalityRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)

	return &app{
		cfg:            cfg,
		log:            log,
		db:             db,
		municipalities: services.NewMunicipalityService(municipalityRepo, log),
		properties:     services.NewPropertyService(propertyRepo, municipalityRepo, log),
	}, nil
}

func (a *app) close() {
	a.db.Close()
}
