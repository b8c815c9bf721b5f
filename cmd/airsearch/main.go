package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/airsearch-mcp/internal/config"
	"github.com/dshills/airsearch-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "airsearch",
	Short:         "Airport search MCP server with typo-tolerant matching",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Airsearch MCP Server\n")
		fmt.Fprintf(out, "Version: %s\n", version)
		fmt.Fprintf(out, "Build Time: %s\n", buildTime)
		fmt.Fprintf(out, "Build Mode: %s\n", storage.BuildMode)
		fmt.Fprintf(out, "SQLite Driver: %s\n", storage.DriverName)
		fmt.Fprintf(out, "Schema Version: %s\n", storage.CurrentSchemaVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, importCmd, searchCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and installs the default logger.
// Logs go to stderr; stdout is reserved for MCP protocol and command output.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return cfg, logger, nil
}

// openStorage opens the configured store and logs where it lives
func openStorage(cfg *config.Config, logger *slog.Logger) (*storage.SQLStorage, error) {
	store, err := config.OpenStorage(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if cfg.Database.Driver == config.DriverMySQL {
		logger.Debug("storage opened", "driver", store.Driver())
	} else {
		logger.Debug("storage opened", "driver", store.Driver(), "path", cfg.Database.Path, "build_mode", storage.BuildMode)
	}
	return store, nil
}
