package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"veaxAgent/internal/model"
)

const keyPrefix = "veaxagent"

// ErrDisabled indicates the cache layer is disabled via configuration.
var ErrDisabled = errors.New("redis cache disabled")

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Config represents Redis client configuration options. The cache is enabled
// when Addr is set.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a Redis address was configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// Cache stores the resolved token catalog in Redis. Entries expire after
// TTL; there is no explicit invalidation.
type Cache struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Cache from the provided configuration.
func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if !cfg.Enabled() {
		return &Cache{cfg: cfg}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Cache{client: client, cfg: cfg}
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrDisabled
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func tokensKey(limit int) string {
	return fmt.Sprintf("%s:tokens:catalog:%d", keyPrefix, limit)
}

// GetTokens retrieves the cached token catalog built with the given list limit.
func (c *Cache) GetTokens(ctx context.Context, limit int) ([]model.TokenMeta, error) {
	if c == nil || c.client == nil {
		return nil, ErrDisabled
	}

	payload, err := c.client.Get(ctx, tokensKey(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var tokens []model.TokenMeta
	if err := json.Unmarshal(payload, &tokens); err != nil {
		return nil, fmt.Errorf("decode cached tokens: %w", err)
	}
	return tokens, nil
}

// SetTokens stores the token catalog.
func (c *Cache) SetTokens(ctx context.Context, limit int, tokens []model.TokenMeta) error {
	if c == nil || c.client == nil {
		return ErrDisabled
	}

	payload, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tokensKey(limit), payload, c.cfg.TTL).Err()
}
