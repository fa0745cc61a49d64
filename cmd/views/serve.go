package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"impractical.co/views"
	"impractical.co/views/internal/metrics"
	"impractical.co/views/internal/server"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve views over HTTP",
		Long: `Serve views over HTTP. Each GET request renders the view named by
its path, with the query parameters in scope. Paths ending in a slash
render the directory's index view.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ctx, cfg, err := setup(ctx, *configPath)
			if err != nil {
				return err
			}

			opts := cfg.Views.Options()
			serverOpts := server.Options{Escape: cfg.Views.EscapeContext()}
			if cfg.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				opts = append(opts, views.WithObserver(metrics.NewRecorder(reg, cfg.Metrics.Namespace)))
				serverOpts.Gatherer = reg
				serverOpts.MetricsPath = cfg.Metrics.Path
			}

			site, err := views.NewSite(cfg.Views.FS(), opts...)
			if err != nil {
				return err
			}

			handler := server.New(site, views.LoggerFromContext(ctx), serverOpts)
			return errors.Wrap(server.ListenAndServe(ctx, cfg.Server.Addr(), handler), "server terminated")
		},
	}
}
