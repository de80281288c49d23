package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/dashboard"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

var snapshotListLimit int

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect prediction snapshots in the configured source",
}

var snapshotLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the newest snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		src, closeSrc, err := openSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeSrc() //nolint:errcheck

		snap, err := snapshot.NewLoader(src, cfg.Snapshot.MaxIdx).Latest(ctx)
		if err != nil {
			return eris.Wrap(err, "snapshot: load latest")
		}
		if snap == nil {
			return eris.New("snapshot: no snapshots found")
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(snap), "snapshot: encode")
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		src, closeSrc, err := openSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeSrc() //nolint:errcheck

		snaps, err := snapshot.NewLoader(src, cfg.Snapshot.MaxIdx).Recent(ctx, snapshotListLimit)
		if err != nil {
			return eris.Wrap(err, "snapshot: list")
		}
		printSnapshots(cmd.OutOrStdout(), snaps)
		return nil
	},
}

func printSnapshots(out io.Writer, snaps []*snapshot.Snapshot) {
	if len(snaps) == 0 {
		_, _ = fmt.Fprintln(out, "No snapshots found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPREDICTED_MWH\tERROR_%\tNODES\tSTATUS\tTIMESTAMP")
	_, _ = fmt.Fprintln(w, "----\t-------------\t-------\t-----\t------\t---------")
	for _, s := range snaps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%s\t%s\n",
			snapshot.Name(s.Index),
			dashboard.MWh(s.PredictedKW),
			s.ErrorPercent,
			len(s.FederatedNodes),
			s.Status,
			s.TimestampUTC,
		)
	}
	_ = w.Flush()
}

func init() {
	snapshotListCmd.Flags().IntVar(&snapshotListLimit, "limit", 10, "maximum snapshots to show")
	snapshotCmd.AddCommand(snapshotLatestCmd, snapshotListCmd)
	rootCmd.AddCommand(snapshotCmd)
}
