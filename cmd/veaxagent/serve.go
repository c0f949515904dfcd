package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"veaxAgent/internal/api"
	"veaxAgent/internal/assistant"
	"veaxAgent/internal/cache"
	"veaxAgent/internal/config"
	"veaxAgent/internal/metrics"
	"veaxAgent/internal/near"
	"veaxAgent/internal/resolver"
	"veaxAgent/internal/rpc"
	"veaxAgent/internal/service"
	"veaxAgent/internal/txbuilder"
	"veaxAgent/internal/veax"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	newCaller := func(name, url string) (*rpc.Client, error) {
		return rpc.NewClient(rpc.Config{
			Service:      name,
			URL:          url,
			Timeout:      cfg.RequestTimeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
		}, logger, m)
	}
	nearRPC, err := newCaller("near", cfg.NearRPCURL)
	if err != nil {
		return err
	}
	poolRPC, err := newCaller("pool", cfg.PoolRPCURL)
	if err != nil {
		return err
	}
	estimationRPC, err := newCaller("estimation", cfg.EstimationRPCURL)
	if err != nil {
		return err
	}
	managementRPC, err := newCaller("pool-management", cfg.PoolManagementRPCURL)
	if err != nil {
		return err
	}
	positionsRPC, err := newCaller("positions", cfg.PositionsRPCURL)
	if err != nil {
		return err
	}

	tokenCache := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	defer tokenCache.Close()
	if err := tokenCache.Ping(ctx); err != nil {
		if errors.Is(err, cache.ErrDisabled) {
			logger.Info("token cache disabled")
		} else {
			logger.Warn("token cache unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
	}

	chain := near.NewClient(nearRPC, logger)
	poolClient := veax.NewPoolClient(poolRPC)
	res := resolver.New(poolClient, chain, tokenCache, resolver.Config{
		ListLimit:   cfg.TokenListLimit,
		Concurrency: cfg.MetadataConcurrency,
	}, logger)

	svc := service.New(service.Deps{
		Chain:               chain,
		Tokens:              res,
		Pools:               poolClient,
		Estimator:           veax.NewEstimationClient(estimationRPC),
		Manager:             veax.NewManagementClient(managementRPC),
		Positions:           veax.NewPositionClient(positionsRPC),
		Builder:             txbuilder.New(cfg.DEXContract, cfg.WrapContract),
		MetadataConcurrency: cfg.MetadataConcurrency,
	}, logger)

	proxy, err := assistant.New(assistant.Config{
		URL:     cfg.AssistantURL,
		APIKey:  cfg.AssistantAPIKey,
		Timeout: cfg.RequestTimeout,
	}, logger, m)
	if err != nil {
		return err
	}

	server := api.NewServer(svc, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     m,
		Gatherer:    reg,
		Assistant:   proxy,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.Addr),
			zap.String("dex", cfg.DEXContract),
			zap.String("near_rpc", cfg.NearRPCURL),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Bool("cache_enabled", cfg.RedisAddr != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
