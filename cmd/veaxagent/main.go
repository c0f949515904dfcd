package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"veaxAgent/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "veaxagent",
		Short:        "Veax DEX agent backend",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  runServe,
	}

	serveCmd.Flags().String("addr", config.DefaultAddr, "listen address")
	serveCmd.Flags().String("near-rpc-url", config.DefaultNearRPCURL, "NEAR RPC URL")
	serveCmd.Flags().String("pool-rpc-url", config.DefaultPoolRPCURL, "liquidity-pool service URL")
	serveCmd.Flags().String("estimation-rpc-url", config.DefaultEstimationRPCURL, "estimation service URL")
	serveCmd.Flags().String("pool-management-rpc-url", config.DefaultPoolManagementRPCURL, "pool-management service URL")
	serveCmd.Flags().String("positions-rpc-url", config.DefaultPositionsRPCURL, "liquidity-position service URL")
	serveCmd.Flags().String("dex-contract", config.DefaultDEXContract, "DEX contract account")
	serveCmd.Flags().String("wrap-contract", config.DefaultWrapContract, "wrapped NEAR contract account")
	serveCmd.Flags().Duration("request-timeout", 10*time.Second, "timeout per upstream call")
	serveCmd.Flags().Int("max-retries", 0, "retries for failed upstream calls")
	serveCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	serveCmd.Flags().Int("token-list-limit", 100, "tokens listed when resolving symbols")
	serveCmd.Flags().Int("metadata-concurrency", 8, "parallel metadata lookups per request")
	serveCmd.Flags().String("redis-addr", "", "Redis address for the token cache (empty disables)")
	serveCmd.Flags().Duration("cache-ttl", 5*time.Minute, "token cache TTL")
	serveCmd.Flags().StringSlice("cors-origins", []string{"*"}, "allowed CORS origins (comma-separated)")
	serveCmd.Flags().String("assistant-url", config.DefaultAssistantURL, "assistant upstream URL")
	serveCmd.Flags().Duration("shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	planCmd := &cobra.Command{
		Use:   "plan-range",
		Short: "Print the tick range planned for a price",
		RunE:  runPlanRange,
	}

	planCmd.Flags().Float64("price", 0, "spot price of token A in token B")
	planCmd.Flags().Int("decimals-a", 24, "decimals of token A")
	planCmd.Flags().Int("decimals-b", 6, "decimals of token B")
	planCmd.Flags().Float64("leverage", 1000, "pool leverage for the fee level")

	root.AddCommand(planCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
