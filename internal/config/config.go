package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults for the mainnet deployment.
const (
	DefaultAddr                 = ":5000"
	DefaultNearRPCURL           = "https://rpc.mainnet.near.org"
	DefaultPoolRPCURL           = "https://veax-liquidity-pool.veax.com/v1/rpc"
	DefaultEstimationRPCURL     = "https://veax-estimation-service.veax.com/v1/rpc"
	DefaultPoolManagementRPCURL = "https://veax-pool-management.veax.com/v1/rpc"
	DefaultPositionsRPCURL      = "https://veax-liquidityposition.veax.com/v1/rpc"
	DefaultAssistantURL         = "https://api.bitte.ai/v1"
	DefaultDEXContract          = "veax.near"
	DefaultWrapContract         = "wrap.near"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Addr            string
	LogLevel        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	NearRPCURL           string
	PoolRPCURL           string
	EstimationRPCURL     string
	PoolManagementRPCURL string
	PositionsRPCURL      string

	DEXContract  string
	WrapContract string

	RequestTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration

	TokenListLimit      int
	MetadataConcurrency int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	AssistantURL    string
	AssistantAPIKey string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VEAXAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("log-level", "info")
	v.SetDefault("shutdown-timeout", 5*time.Second)
	v.SetDefault("cors-origins", "*")
	v.SetDefault("near-rpc-url", DefaultNearRPCURL)
	v.SetDefault("pool-rpc-url", DefaultPoolRPCURL)
	v.SetDefault("estimation-rpc-url", DefaultEstimationRPCURL)
	v.SetDefault("pool-management-rpc-url", DefaultPoolManagementRPCURL)
	v.SetDefault("positions-rpc-url", DefaultPositionsRPCURL)
	v.SetDefault("dex-contract", DefaultDEXContract)
	v.SetDefault("wrap-contract", DefaultWrapContract)
	v.SetDefault("request-timeout", 10*time.Second)
	v.SetDefault("max-retries", 0)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("token-list-limit", 100)
	v.SetDefault("metadata-concurrency", 8)
	v.SetDefault("redis-db", 0)
	v.SetDefault("cache-ttl", 5*time.Minute)
	v.SetDefault("assistant-url", DefaultAssistantURL)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Addr:                 v.GetString("addr"),
		LogLevel:             v.GetString("log-level"),
		ShutdownTimeout:      v.GetDuration("shutdown-timeout"),
		CORSOrigins:          getStringSlice(v, "cors-origins"),
		NearRPCURL:           v.GetString("near-rpc-url"),
		PoolRPCURL:           v.GetString("pool-rpc-url"),
		EstimationRPCURL:     v.GetString("estimation-rpc-url"),
		PoolManagementRPCURL: v.GetString("pool-management-rpc-url"),
		PositionsRPCURL:      v.GetString("positions-rpc-url"),
		DEXContract:          v.GetString("dex-contract"),
		WrapContract:         v.GetString("wrap-contract"),
		RequestTimeout:       v.GetDuration("request-timeout"),
		MaxRetries:           v.GetInt("max-retries"),
		RetryBackoff:         v.GetDuration("retry-backoff"),
		TokenListLimit:       v.GetInt("token-list-limit"),
		MetadataConcurrency:  v.GetInt("metadata-concurrency"),
		RedisAddr:            v.GetString("redis-addr"),
		RedisPassword:        v.GetString("redis-password"),
		RedisDB:              v.GetInt("redis-db"),
		CacheTTL:             v.GetDuration("cache-ttl"),
		AssistantURL:         v.GetString("assistant-url"),
		AssistantAPIKey:      v.GetString("assistant-api-key"),
	}

	return cfg, nil
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error
	for key, raw := range map[string]string{
		"near-rpc-url":            c.NearRPCURL,
		"pool-rpc-url":            c.PoolRPCURL,
		"estimation-rpc-url":      c.EstimationRPCURL,
		"pool-management-rpc-url": c.PoolManagementRPCURL,
		"positions-rpc-url":       c.PositionsRPCURL,
		"assistant-url":           c.AssistantURL,
	} {
		if err := checkURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DEXContract == "" || c.WrapContract == "" {
		errs = append(errs, errors.New("dex-contract and wrap-contract are required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request-timeout must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown-timeout must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("max-retries must not be negative"))
	}
	if c.MaxRetries > 0 && c.RetryBackoff <= 0 {
		errs = append(errs, errors.New("retry-backoff must be positive when retries are enabled"))
	}
	if c.TokenListLimit <= 0 {
		errs = append(errs, errors.New("token-list-limit must be positive"))
	}
	if c.MetadataConcurrency <= 0 {
		errs = append(errs, errors.New("metadata-concurrency must be positive"))
	}
	return errors.Join(errs...)
}

func checkURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
