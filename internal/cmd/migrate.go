package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidlens/vidlens/internal/config"
	"github.com/vidlens/vidlens/pkg/analysisstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the analysis database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadFrom(ctx, cfgFile)
	if err != nil {
		return err
	}

	store, err := analysisstore.Open(ctx, analysisstore.Config{Path: cfg.Store.Path})
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := analysisstore.Migrate(ctx, store); err != nil {
		return err
	}

	logger.Info("schema migrated",
		zap.String("store_path", cfg.Store.Path),
		zap.Int("schema_version", analysisstore.SchemaVersion))
	return nil
}
