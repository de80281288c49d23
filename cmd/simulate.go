package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/config"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

var (
	simFiles    int
	simInterval time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Write simulated federated prediction snapshots",
	Long:  "Generates prediction_001.json onward with a daily consumption cycle and writes them to the configured snapshot source (dir, ftp or store).",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("files") {
			cfg.Simulate.Files = simFiles
		}
		if err := cfg.Validate("simulate"); err != nil {
			return err
		}
		interval := time.Duration(cfg.Simulate.IntervalSecs) * time.Second
		if cmd.Flags().Changed("interval") {
			interval = simInterval
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sink, closeSink, err := openSink(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeSink() //nolint:errcheck

		zap.L().Info("simulate: starting",
			zap.String("source", cfg.Snapshot.Source),
			zap.Int("files", cfg.Simulate.Files),
			zap.Duration("interval", interval),
		)
		return newSimulator(cfg.Simulate).Run(ctx, sink, cfg.Simulate.Files, interval)
	},
}

func newSimulator(c config.SimulateConfig) *snapshot.Simulator {
	sc := snapshot.DefaultSimConfig()
	if c.BaseKW > 0 {
		sc.BaseKW = c.BaseKW
	}
	if c.VariationKW > 0 {
		sc.VariationKW = c.VariationKW
	}
	if c.NoiseKW > 0 {
		sc.NoiseKW = c.NoiseKW
	}
	if c.MaxErrorPct > 0 {
		sc.MaxErrorPct = c.MaxErrorPct
	}
	return snapshot.NewSimulator(sc)
}

func init() {
	simulateCmd.Flags().IntVar(&simFiles, "files", 50, "number of snapshots to write (1-100)")
	simulateCmd.Flags().DurationVar(&simInterval, "interval", 5*time.Second, "delay between snapshots")
	rootCmd.AddCommand(simulateCmd)
}
