package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/config"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfg     *config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:     "fedgrid",
	Short:   "Federated power-grid dashboard backend",
	Long:    "Serves the FedGrid Mangalore dashboard API: sign-in gating, live prediction snapshots, synthetic heatmaps, operator insights and the grid assistant.",
	Version: version,
	// Usage output on every runtime error buries the message.
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// loadConfig reads --config (or ./config.yaml) plus FEDGRID_* overrides and
// installs the global logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.LoadFrom(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	if err := config.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	zap.L().Debug("config loaded",
		zap.String("command", cmd.Name()),
		zap.String("file", cfgFile),
		zap.String("version", version),
	)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.SetVersionTemplate("fedgrid {{.Version}}\n")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
