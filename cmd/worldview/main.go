package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/i474232898/worldview-aggregation/internal/config"
	"github.com/i474232898/worldview-aggregation/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.AppConfig

	root := &cobra.Command{
		Use:          "worldview",
		Short:        "Cached aggregation of flight, seismic, satellite and camera feeds for the globe dashboard",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
			return nil
		},
	}

	serve := newServeCmd(func() *config.AppConfig { return cfg })
	root.AddCommand(serve, newFetchCmd(func() *config.AppConfig { return cfg }))

	// Running without a subcommand serves.
	root.RunE = serve.RunE
	return root
}
