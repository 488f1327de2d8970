package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidlens/vidlens/internal/config"
	"github.com/vidlens/vidlens/internal/server"
	"github.com/vidlens/vidlens/internal/server/handlers"
	"github.com/vidlens/vidlens/pkg/analysisjobs"
	"github.com/vidlens/vidlens/pkg/analysisstore"
	"github.com/vidlens/vidlens/pkg/gemini"
	"github.com/vidlens/vidlens/pkg/youtube"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "Listen host (overrides config)")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadFrom(ctx, cfgFile)
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if err := cfg.ValidateForServe(); err != nil {
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

	ytClient := youtube.New(youtube.Config{
		BaseURL: cfg.YouTube.BaseURL,
		Timeout: cfg.YouTube.Timeout,
	}, logger)

	genClient, err := gemini.New(gemini.Config{
		APIKey:            cfg.Gemini.APIKey,
		Model:             cfg.Gemini.Model,
		BaseURL:           cfg.Gemini.BaseURL,
		Timeout:           cfg.Gemini.Timeout,
		RequestsPerSecond: cfg.Gemini.RequestsPerSecond,
	}, logger)
	if err != nil {
		return err
	}

	registry := analysisjobs.NewRegistry()
	analyzer := analysisjobs.NewAnalyzer(store, genClient, logger)
	runner := analysisjobs.NewRunner(registry, ytClient, analyzer, analysisjobs.Options{
		Pace:   cfg.Jobs.Pace,
		Logger: logger,
	})

	srv := server.New(cfg.Server.Host, cfg.Server.Port, server.Deps{
		Analysis: handlers.NewAnalysis(runner, registry, analyzer, ytClient, logger),
		Browse:   handlers.NewBrowse(ytClient, logger),
		Limits:   cfg.RateLimit,
		Logger:   logger,
	})

	logger.Info("vidlens starting",
		zap.String("store_path", cfg.Store.Path),
		zap.String("model", genClient.Model()),
		zap.Int("rate_limit_max", cfg.RateLimit.Max))

	return srv.ListenAndServe(ctx, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}
