package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"TrendsAgent/internal/app"
	"TrendsAgent/internal/config"
	"TrendsAgent/internal/logging"
)

var Version = "dev"

var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "trendsagent",
		Short:         "Classify job-announcement trends and draft social content for review",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides TRENDSAGENT_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, applies flag overrides and wires the application.
func bootstrap(ctx context.Context, overrides ...func(*config.Config)) (*app.Application, config.Config, *slog.Logger, error) {
	if configPath != "" {
		if err := os.Setenv("TRENDSAGENT_CONFIG", configPath); err != nil {
			return nil, config.Config{}, nil, fmt.Errorf("set config path: %w", err)
		}
	}

	cfg := config.Load()
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	for _, apply := range overrides {
		apply(&cfg)
	}
	logger := logging.NewWithFormat(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, cfg, logger, err
	}
	return application, cfg, logger, nil
}
