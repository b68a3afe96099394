package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/i474232898/worldview-aggregation/internal/config"
	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

func newFetchCmd(cfg func() *config.AppConfig) *cobra.Command {
	var pretty bool

	layerNames := make([]string, len(worldview.Layers))
	for i, l := range worldview.Layers {
		layerNames[i] = string(l)
	}

	cmd := &cobra.Command{
		Use:       "fetch <layer>",
		Short:     "Fetch one layer from its upstreams and print it as JSON",
		Long:      "Fetch one layer (" + strings.Join(layerNames, ", ") + ") once and print the normalized records.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: layerNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			service := buildService(cfg())

			items, _, err := service.Layer(cmd.Context(), worldview.Layer(args[0]))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(items); err != nil {
				return fmt.Errorf("encode output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}
