package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/grid"
)

var regionsFormat string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Print the Mangalore grid region table",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		regions := grid.Regions()
		switch regionsFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(regions), "regions: encode json")
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(regions); err != nil {
				return eris.Wrap(err, "regions: encode yaml")
			}
			return eris.Wrap(enc.Close(), "regions: close yaml")
		default:
			return eris.Errorf("regions: unknown format %q", regionsFormat)
		}
	},
}

func init() {
	regionsCmd.Flags().StringVar(&regionsFormat, "format", "yaml", "output format: json or yaml")
	rootCmd.AddCommand(regionsCmd)
}
