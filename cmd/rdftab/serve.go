package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/geoknoesis/rdf-tabular/server"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(g *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx, cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := a.cfg.Server.Listen
			if listen != "" {
				addr = listen
			}
			return serveHTTP(ctx, a, addr)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")
	return cmd
}

func (a *app) handler() http.Handler {
	return server.New(a.engine,
		server.WithLogger(a.logger),
		server.WithDefaults(a.defaults),
		server.WithMetricsHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})),
	)
}

// serveHTTP blocks until ctx is done or the listener fails, then shuts the
// server down.
func serveHTTP(ctx context.Context, a *app, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		a.logger.Info("HTTP API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down HTTP API")
		return srv.Shutdown(shutdownCtx)
	})
	return grp.Wait()
}
