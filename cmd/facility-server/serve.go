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

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/config"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/db"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/broadcast"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/service"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/session"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store/sqlite"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/grpcapi"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/httpapi"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/metrics"
)

func newServeCmd(load func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket feed and gRPC change feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg config.Config) error {
	logger := newLogger()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	sqlDB, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, sqlDB, db.SeedDevOptions{Password: cfg.DevSeedPassword}); err != nil {
			return err
		}
		logger.Printf("dev data seeded in %s", cfg.DBPath)
	}

	writer := db.NewObservedWorker(sqlDB, metrics.ObserveTx)
	defer writer.Close()

	records := sqlite.NewRecordStore(sqlDB, writer)
	statuses := sqlite.NewStatusStore(sqlDB)
	accounts := sqlite.NewAccountStore(sqlDB)

	// Services
	hub := broadcast.NewHub(logger, cfg.MaxSubscribers, cfg.SubscriberBuffer)
	defer hub.Close()

	dispatcher, err := service.NewDispatcher(records, statuses, hub, service.DispatcherConfig{Location: loc})
	if err != nil {
		return err
	}

	registry := session.NewRegistry()
	auth := session.NewAuthenticator(accounts, registry, session.NewFixationGuard(registry), logger)

	pruner := session.NewIdlePruner(registry, cfg.SessionTTL(), cfg.PruneInterval(), logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	// Transports
	httpSrv := httpapi.NewServer(httpapi.Dependencies{
		Logger:         logger,
		Addr:           cfg.HTTPAddr,
		Dispatcher:     dispatcher,
		Queries:        service.NewQueryService(records, statuses),
		Auth:           auth,
		Sessions:       registry,
		Hub:            hub,
		SecureCookies:  cfg.SecureCookies,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	var grpcSrv *grpcapi.Server
	var grpcLis net.Listener
	if cfg.GRPCAddr != "" {
		grpcLis, err = net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		grpcSrv = grpcapi.NewServer(grpcapi.Dependencies{Logger: logger, Hub: hub, Token: cfg.GRPCToken})
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("http server error: %v", err)
			stop()
		}
	})
	if grpcSrv != nil {
		wg.Go(func() {
			if err := grpcSrv.Serve(grpcLis); err != nil {
				logger.Printf("grpc server error: %v", err)
				stop()
			}
		})
	}

	<-ctx.Done()
	logger.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Closing the hub first ends websocket and gRPC streams so both servers
	// can drain.
	hub.Close()
	if grpcSrv != nil {
		grpcSrv.Shutdown(shutdownCtx)
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
	wg.Wait()
	return nil
}
