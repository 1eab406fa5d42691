package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/nickheal/oss-maintainance-cost-analyser/internal/api"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/analysis"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/config"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/registry"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/vuln"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		Long: `Run an HTTP server exposing the analysis over a JSON API.

POST a raw package.json body to /api/analyze to receive the full
analysis report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	httpCache, err := buildCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer httpCache.Close()

	analyzer := analysis.New(analysis.Options{
		Source: registry.NewSource(registry.Config{
			RegistryURL: cfg.Registry.URL,
			GraphURL:    cfg.Registry.GraphURL,
			Cache:       httpCache,
			TTL:         cfg.Cache.TTL(),
			Logger:      logger,
		}),
		Fetcher: vuln.NewFetcher(vuln.NewOSVClient(vuln.OSVConfig{
			URL:    cfg.Vulnerabilities.URL,
			Cache:  httpCache,
			TTL:    cfg.Cache.TTL(),
			Logger: logger,
		}), cfg.Concurrency, logger),
		Logger:      logger,
		Concurrency: cfg.Concurrency,
		Shallow:     cfg.Shallow,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(analyzer, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
