package cli

import (
	"fmt"
	"os"

	"saha-erp/internal/config"
	"saha-erp/internal/database"
	"saha-erp/internal/logging"
	"saha-erp/internal/service"
	"saha-erp/internal/storage"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "saha-erp",
		Short:         "Student management back end",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newAddUserCmd(),
		newResetPasswordCmd(),
		newGenSecretCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app is what every database-backed command needs.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	db  *gorm.DB
	svc *service.Services
}

// bootstrap loads config, opens the database and applies migrations.
func bootstrap() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	blobs, err := storage.New(cfg.Uploads)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("init uploads: %w", err)
	}
	svc := service.New(db, log, service.Options{
		Blobs:       blobs,
		MaxUploadMB: cfg.Uploads.MaxSizeMB,
		MaxImagePx:  cfg.Uploads.MaxImagePx,
		BcryptCost:  cfg.Security.BcryptCost,
	})
	return &app{cfg: cfg, log: log, db: db, svc: svc}, nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		a.log.Warn().Err(err).Msg("close database")
	}
}
