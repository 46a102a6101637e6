package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/civcards/internal/civ/source"
	"github.com/ziadkadry99/civcards/internal/db"
	"github.com/ziadkadry99/civcards/internal/observe"
	"github.com/ziadkadry99/civcards/internal/selection"
	"github.com/ziadkadry99/civcards/internal/server"
	"github.com/ziadkadry99/civcards/internal/viewer"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the card viewer",
	Long: `Starts the web viewer: the card page, its websocket event channel
and a JSON API. The dataset loads in the background; requests made
before it is ready answer 503.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		var (
			metrics        *observe.Metrics
			metricsHandler http.Handler
			recorder       viewer.Recorder
		)
		if cfg.Metrics {
			provider, err := observe.InitProvider(ctx, observe.ProviderConfig{
				ServiceName:    "civcards",
				ServiceVersion: Version,
			})
			if err != nil {
				return fmt.Errorf("initialising metrics: %w", err)
			}
			defer provider.Shutdown(context.Background())

			metrics, err = observe.NewMetrics(provider.MeterProvider)
			if err != nil {
				return fmt.Errorf("creating metrics: %w", err)
			}
			metricsHandler = provider.Handler()
			recorder = metrics
		}

		loader := cfg.Loader()
		src := source.New(loader, cfg.Civ)

		srv := server.New(server.Config{
			Port:           cfg.Port,
			AllowAll:       cfg.AllowAllOrigins,
			Metrics:        metrics,
			MetricsHandler: metricsHandler,
			Ready: func() error {
				_, err := src.Dataset()
				return err
			},
		})

		v, err := viewer.New(viewer.Deps{
			Datasets:        src,
			Store:           selection.NewSQLiteStore(database, cfg.SelectionDefaults()),
			History:         selection.NewHistory(database),
			Catalog:         loader,
			Options:         cfg.ViewOptions(),
			Metrics:         recorder,
			AllowAllOrigins: cfg.AllowAllOrigins,
		})
		if err != nil {
			return err
		}
		v.RegisterRoutes(srv.Router())

		g, gctx := errgroup.WithContext(ctx)
		src.Start(gctx)

		g.Go(func() error {
			ds, err := src.Wait(gctx)
			if gctx.Err() != nil {
				return nil
			}
			if metrics != nil {
				metrics.RecordDatasetLoad(gctx, cfg.Civ, err)
			}
			if err != nil {
				// The source logged the failure; keep serving 503s.
				return nil
			}
			if err := ds.Validate(); err != nil {
				slog.Warn("dataset has unresolved references", "civ", cfg.Civ, "error", err)
			}
			return nil
		})

		g.Go(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			slog.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		slog.Info("civcards starting",
			"version", Version,
			"civ", cfg.Civ,
			"port", cfg.Port,
			"database", database.Path(),
		)
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (overrides the config)")
	rootCmd.AddCommand(serveCmd)
}
