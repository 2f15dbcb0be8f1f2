package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"kanabus/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "kanabus",
	Short:         "Misumicho bus timetable scraper and local viewer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(scrapeCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig applies the persistent flags on top of the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("output-dir") {
		dir, _ := cmd.Flags().GetString("output-dir")
		cfg.SetOutputDir(dir)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	return cfg, logger, nil
}
