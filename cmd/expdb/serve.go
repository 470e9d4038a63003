package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"expdb/internal/adapters/datasets"
	"expdb/internal/blob"
	"expdb/internal/observability"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the expression HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler, cleanup, err := a.buildServer(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ln, err := net.Listen("tcp", a.cfg.Server.Addr)
			if err != nil {
				return err
			}
			ln = limitListener(ln, a.cfg.Server.MaxConnections)
			srv := &http.Server{
				Handler:           handler,
				ReadTimeout:       a.cfg.ReadTimeout(),
				ReadHeaderTimeout: a.cfg.ReadTimeout(),
				WriteTimeout:      a.cfg.WriteTimeout(),
			}
			a.logger.Info("expdb listening",
				zap.String("addr", ln.Addr().String()),
				zap.Int("max_connections", a.cfg.Server.MaxConnections),
				zap.String("datasets", a.cfg.Datasets.Driver),
				zap.String("metrics", a.cfg.Metrics.Backend),
				zap.String("audit", a.cfg.Audit.Driver))
			return runServer(ctx, srv, ln, a.cfg.ShutdownTimeout(), a.logger)
		},
	}
}

// buildServer assembles the full HTTP handler from configuration.
func (a *app) buildServer(ctx context.Context) (http.Handler, func(), error) {
	store, err := blob.Open(ctx, a.cfg.BlobConfig())
	if err != nil {
		return nil, nil, err
	}
	recorder, metricsHandler, err := observability.Open(observability.Backend(a.cfg.Metrics.Backend))
	if err != nil {
		return nil, nil, err
	}
	svc, cleanup, err := a.newService(ctx, store, recorder)
	if err != nil {
		return nil, nil, err
	}
	return newMux(svc, a.cfg.Metrics.Path, metricsHandler, a.logger), cleanup, nil
}

// newMux routes the expression API, health check and optional metrics
// endpoint. Every other path reaches the dataset handler, which answers with
// an error envelope.
func newMux(q datasets.Querier, metricsPath string, metricsHandler http.Handler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", datasets.NewHandler(q))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})
	if metricsHandler != nil && metricsPath != "" {
		mux.Handle(metricsPath, metricsHandler)
	}
	return datasets.WithAccessLog(logger, mux)
}

// limitListener caps concurrent connections on ln when max is positive.
func limitListener(ln net.Listener, max int) net.Listener {
	if max <= 0 {
		return ln
	}
	return netutil.LimitListener(ln, max)
}

// runServer serves on ln until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
