// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jllopis/gedboard/pkg/config"
	"github.com/jllopis/gedboard/pkg/dashboard"
	"github.com/jllopis/gedboard/pkg/ged"
	"github.com/jllopis/gedboard/pkg/health"
	"github.com/jllopis/gedboard/pkg/report"
	"github.com/jllopis/gedboard/pkg/telemetry"
	"github.com/jllopis/gedboard/pkg/watch"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr      string
		watchData bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard server",
		Long: `Serve the dashboards over HTTP. The data directory is rescanned when
files change if data.watch is set (or --watch is given), and alert and
analysis settings are reloaded when the --config file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Web.Addr
			}
			return a.serve(cmd.Context(), addr, watchData || a.cfg.Data.Watch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default web.addr)")
	cmd.Flags().BoolVar(&watchData, "watch", false, "rescan the data directory when files change")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string, watchData bool) error {
	cfg := a.cfg
	shutdown, err := telemetry.InitWithConfig(appName, version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return NewConfigError(err, a.flags.ConfigPath)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			a.logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	metrics, err := telemetry.NewPipelineMetrics()
	if err != nil {
		return WrapError(err)
	}
	catalog, err := a.catalog(ged.WithMetrics(metrics))
	if err != nil {
		return err
	}

	rc := config.NewReloadableConfig(cfg)
	gen := report.NewGenerator(catalog,
		report.WithSettings(func() report.Settings { return report.SettingsFromConfig(rc.Get()) }),
		report.WithMetrics(metrics),
		report.WithLogger(a.logger),
	)

	reloads := &health.ReloadChecker{}
	checks := health.NewRegistry()
	checks.Register("catalog", health.CatalogChecker(catalog))
	checks.Register("reload", reloads)

	srv, err := dashboard.New(gen,
		dashboard.WithAddr(addr),
		dashboard.WithHealth(checks),
		dashboard.WithLogger(a.logger),
	)
	if err != nil {
		return WrapError(err)
	}

	var dataWatcher *watch.Watcher
	if watchData {
		opts := []watch.Option{
			watch.WithDebounce(cfg.Data.DebounceDuration()),
			watch.WithLogger(a.logger),
			watch.OnReload(reloads.Observe),
		}
		if m := catalog.Manifest(); m != "" {
			opts = append(opts, watch.WithDir(filepath.Dir(m)))
		}
		dataWatcher, err = watch.New(catalog.Dir(), catalog, opts...)
		if err != nil {
			return WrapCatalogError(err, catalog.Dir())
		}
	}

	var configWatcher *config.Watcher
	if a.flags.ConfigPath != "" {
		configWatcher, err = config.NewWatcher(a.flags.ConfigPath,
			config.WithWatchProfile(a.flags.Profile),
			config.WithWatchLogger(a.logger),
			config.WithWatchArgs(a.flags.configArgs()),
		)
		if err != nil {
			return NewConfigError(err, a.flags.ConfigPath)
		}
		configWatcher.OnChange(func(next *config.Config) {
			prev := rc.Get()
			rc.Update(next)
			var restart []string
			for _, section := range config.ChangedSections(prev, next) {
				if section != "alerts" && section != "analysis" {
					restart = append(restart, section)
				}
			}
			if len(restart) > 0 {
				a.logger.Warn("config sections changed, restart to apply", "sections", restart)
			}
			a.logger.Info("settings reloaded", "alerts", next.Alerts, "analysis", next.Analysis)
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if dataWatcher != nil {
		g.Go(func() error { return dataWatcher.Run(gctx) })
	}
	if configWatcher != nil {
		configWatcher.Start(gctx)
		g.Go(func() error {
			<-gctx.Done()
			configWatcher.Stop()
			return nil
		})
	}

	a.logger.Info("serving dashboards",
		"projects", catalog.Len(),
		"data_dir", catalog.Dir(),
		"watch", watchData,
		"version", version,
	)
	return g.Wait()
}
