package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tinygen/config"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

var (
	// Global flags
	debug      bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tinygen",
	Short: "tinygen - turn a change request into a diff for any git repository",
	Long: `tinygen clones a repository, hands the whole code base to an LLM and
asks it, in three passes, to analyze the change, write a unified diff and
verify it.

Run "tinygen serve" for the HTTP API or "tinygen analyze" for a one-off run.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(config.ExpandPath(configPath))
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if debug {
			cfg.Debug = true
		}

		logger, err = config.NewLogger(cfg.Debug, cfg.DataDir())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (or set TINYGEN_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default: ~/.config/tinygen/settings.toml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(modelsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
