package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/grid"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/heatmap"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

var (
	heatmapZoom   int
	heatmapFormat string
	heatmapSeed   uint64
	heatmapLive   bool
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Generate a heat layer for a zoom level",
	Long:  "Prints the synthetic heat layer (points, tier and options) or a GeoJSON feature collection. With --live the newest snapshot drives region intensities.",
	RunE: func(cmd *cobra.Command, args []string) error {
		frame := grid.Frame()
		if heatmapZoom < frame.MinZoom || heatmapZoom > frame.MaxZoom {
			return eris.Errorf("heatmap: zoom must be between %d and %d", frame.MinZoom, frame.MaxZoom)
		}
		seed := heatmapSeed
		if !cmd.Flags().Changed("seed") {
			seed = cfg.Heatmap.Seed
		}

		var live *snapshot.Snapshot
		if heatmapLive {
			ctx := cmd.Context()
			src, closeSrc, err := openSource(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeSrc() //nolint:errcheck
			live, err = snapshot.NewLoader(src, cfg.Snapshot.MaxIdx).Latest(ctx)
			if err != nil {
				zap.L().Warn("heatmap: latest snapshot unavailable", zap.Error(err))
			}
		}

		layer := heatmap.NewSynthesizer(seed).Build(grid.Regions(), live, heatmapZoom)

		var v any = layer
		switch heatmapFormat {
		case "points":
		case "geojson":
			v = heatmap.FeatureCollection(layer.Points)
		default:
			return eris.Errorf("heatmap: unknown format %q", heatmapFormat)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "heatmap: encode")
	},
}

func init() {
	heatmapCmd.Flags().IntVar(&heatmapZoom, "zoom", 11, "map zoom level (10-16)")
	heatmapCmd.Flags().StringVar(&heatmapFormat, "format", "points", "output format: points or geojson")
	heatmapCmd.Flags().Uint64Var(&heatmapSeed, "seed", 0, "random seed; 0 uses entropy (default from config)")
	heatmapCmd.Flags().BoolVar(&heatmapLive, "live", false, "use the newest snapshot for region intensities")
	rootCmd.AddCommand(heatmapCmd)
}
