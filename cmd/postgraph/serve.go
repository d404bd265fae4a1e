package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anujdecoder/postgraph"
	"github.com/anujdecoder/postgraph/config"
	"github.com/anujdecoder/postgraph/observability"
	"github.com/anujdecoder/postgraph/schema"
	"github.com/anujdecoder/postgraph/store"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(v, file)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "Address the HTTP server listens on")
	flags.Int("max-connections", 1024, "Maximum simultaneous connections, 0 for no limit")
	flags.Bool("playground", true, "Serve the GraphQL playground on GET /graphql")
	flags.String("consistency", "lenient", "Reference maintenance policy: lenient or strict")
	flags.String("log-level", "info", "Log level")
	bind(v, flags.Lookup("addr"), "http_addr")
	bind(v, flags.Lookup("max-connections"), "max_connections")
	bind(v, flags.Lookup("playground"), "playground")
	bind(v, flags.Lookup("consistency"), "consistency")
	bind(v, flags.Lookup("log-level"), "log_level")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	entities, err := store.Open(ctx, cfg.Store.URLs,
		store.WithLogger(logger),
		store.WithMaxConflictRetries(cfg.Store.MaxConflictRetries))
	if err != nil {
		return err
	}
	defer func() {
		if err := entities.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	var handlerOpts []postgraph.HandlerOption
	if cfg.Playground {
		handlerOpts = append(handlerOpts, postgraph.WithPlayground("postgraph", "/graphql"))
	}
	srv, err := schema.NewServer(entities,
		schema.WithLogger(logger),
		schema.WithPolicy(cfg.Policy()),
		schema.WithHandlerOptions(handlerOpts...))
	if err != nil {
		return errors.Wrap(err, "build schema")
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", srv.HTTP)
	mux.Handle("/graphql/ws", srv.WebSocket)
	if cfg.MetricsPath != "" {
		mux.Handle(cfg.MetricsPath, promhttp.Handler())
	}

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.HTTPAddr)
	}
	if cfg.MaxConnections > 0 {
		lis = netutil.LimitListener(lis, cfg.MaxConnections)
	}

	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	logger.Info("server listening",
		zap.String("addr", lis.Addr().String()),
		zap.Stringer("consistency", cfg.Policy()),
		zap.Bool("playground", cfg.Playground))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "GraphQL server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})
	return g.Wait()
}
