package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	"github.com/Saifkhan77806/LoveTown/internal/cache"
	"github.com/Saifkhan77806/LoveTown/internal/config"
	"github.com/Saifkhan77806/LoveTown/internal/db"
	"github.com/Saifkhan77806/LoveTown/internal/logger"
	"github.com/Saifkhan77806/LoveTown/internal/middleware"
	"github.com/Saifkhan77806/LoveTown/internal/server"
	"github.com/Saifkhan77806/LoveTown/internal/service/match"
	"github.com/Saifkhan77806/LoveTown/internal/service/relationship"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.New()

	var grpcAddr, httpAddr string
	var seed bool
	flagSet := pflag.NewFlagSet("lovetown", pflag.ContinueOnError)
	flagSet.StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address host:port (overrides GRPC_HOST/GRPC_PORT)")
	flagSet.StringVar(&httpAddr, "http-addr", "", "HTTP listen address host:port (overrides HTTP_HOST/HTTP_PORT)")
	flagSet.BoolVar(&seed, "seed", false, "wipe the database and load demo users before serving")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := override(&cfg.GRPC.Host, &cfg.GRPC.Port, grpcAddr); err != nil {
		return fmt.Errorf("--grpc-addr: %w", err)
	}
	if err := override(&cfg.HTTP.Host, &cfg.HTTP.Port, httpAddr); err != nil {
		return fmt.Errorf("--http-addr: %w", err)
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisCache.Close()

	if seed {
		if err := db.SeedTestData(database); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCtx := app.New(cfg, database, redisCache, log)
	defer appCtx.Scheduler.Shutdown()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	svc, err := wire(ctx, hubCtx, appCtx)
	if err != nil {
		return err
	}
	hub := svc.hub
	log.Info("freeze window", "window", svc.machine.Freeze().Window, "env", cfg.App.ENV)

	if cfg.JWT.Secret == "" {
		if cfg.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
		log.Warn("JWT_SECRET is not set")
	}
	verifier := middleware.NewVerifier(cfg.JWT.Secret)

	grpcServer := server.NewGRPCServer(
		[]grpc.ServerOption{grpc.UnaryInterceptor(middleware.UnaryAuth(verifier))},
		match.NewRegistrar(appCtx, svc.matchmaker),
		relationship.NewRegistrar(appCtx, svc.machine),
	)
	lis, err := server.ListenGRPC(cfg)
	if err != nil {
		return err
	}

	httpAPI := server.NewHTTP(cfg, svc.chat, hub, verifier, log)
	httpServer := server.NewHTTPServer(cfg, httpAPI.Router(cfg))

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting gRPC server", "addr", lis.Addr().String())
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		log.Info("starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errCh:
		log.Error("server failed", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "err", err)
	}
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	stopHub()
	<-hub.Done()
	return err
}

// override replaces host and port from a host:port flag value.
func override(host, port *string, addr string) error {
	if addr == "" {
		return nil
	}
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if h != "" {
		*host = h
	}
	*port = p
	return nil
}
