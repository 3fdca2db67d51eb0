package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/milcalc/internal/logging"
	"github.com/iwvelando/milcalc/internal/server"
	"github.com/iwvelando/milcalc/internal/snapshot"
	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/refdata"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	tables, err := refdata.Load(cfg.ReferenceData)
	if err != nil {
		logger.Fatal("failed to load reference data",
			zap.String("op", "main"),
			zap.String("path", cfg.ReferenceData),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store snapshot.Store = snapshot.NewMemoryStore()
	if cfg.UsesRedis() {
		redisStore, err := snapshot.NewRedisStore(ctx, logger, cfg.Snapshots.Redis)
		if err != nil {
			logger.Fatal("failed to open snapshot store",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		defer func() {
			_ = redisStore.Close()
		}()
		store = redisStore
		logger.Info("storing snapshots in redis",
			zap.String("op", "main"),
			zap.String("address", cfg.Snapshots.Redis.Address),
		)
	}

	httpServer := &http.Server{
		Addr: cfg.Address,
		Handler: server.NewHandler(logger, server.Options{
			Tables:        tables,
			Store:         store,
			MaxUploadSize: cfg.MaxUploadSize.Bytes(),
			Version:       version,
		}),
		ReadTimeout:  cfg.Timeouts.Read,
		WriteTimeout: cfg.Timeouts.Write,
	}

	logger.Info("starting server",
		zap.String("op", "main"),
		zap.String("address", cfg.Address),
		zap.String("version", version),
		zap.String("referenceData", tables.Version),
	)
	listener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		logger.Fatal("failed to listen",
			zap.String("op", "main"),
			zap.String("address", httpServer.Addr),
			zap.Error(err),
		)
	}
	if err := serve(ctx, logger, httpServer, listener, cfg.Timeouts.Shutdown); err != nil {
		logger.Fatal("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped", zap.String("op", "main"))
}

// serve runs httpServer on listener until ctx is done, then shuts it down and
// returns once in-flight requests have drained.
func serve(ctx context.Context, logger *zap.Logger, httpServer *http.Server, listener net.Listener, shutdownTimeout time.Duration) error {
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// Serve returns as soon as Shutdown starts.
	<-shutdownDone
	return nil
}
