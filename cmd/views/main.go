// Command views renders views from a directory, once from the command line
// or per request over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"impractical.co/views"
	"impractical.co/views/internal/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "views",
		Short: "Render views with layouts and sections",
		Long: `views renders templates from a directory of views.

Views can extend layouts, capture output into named sections for the
layout to emit, and include other views. Configuration is read from a
YAML file, and any value can be overridden with VIEWS_ environment
variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")

	cmd.AddCommand(
		renderCmd(&configPath),
		serveCmd(&configPath),
	)
	return cmd
}

// setup reads the configuration and returns it with a context carrying
// the configured logger.
func setup(ctx context.Context, configPath string) (context.Context, *config.Config, error) {
	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		return ctx, nil, errors.Wrap(err, "failed to read config")
	}
	handler, err := cfg.Logging.Handler(os.Stderr)
	if err != nil {
		return ctx, nil, err
	}
	return views.LoggingContext(ctx, slog.New(handler)), cfg, nil
}
