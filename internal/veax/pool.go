package veax

import (
	"context"

	"github.com/shopspring/decimal"

	"veaxAgent/internal/model"
	"veaxAgent/internal/rpc"
)

// PoolClient talks to the liquidity-pool service.
type PoolClient struct {
	rpc rpc.Caller
}

func NewPoolClient(caller rpc.Caller) *PoolClient {
	return &PoolClient{rpc: caller}
}

// TokensList returns one page of listed tokens.
func (c *PoolClient) TokensList(ctx context.Context, filter ListFilter) (TokenPage, error) {
	if filter.Sort == "" {
		filter.Sort = SortNone
	}
	var out TokenPage
	err := c.rpc.Call(ctx, "tokens_list", map[string]ListFilter{"filter": filter}, &out)
	return out, err
}

// TokenCurrentPrices returns USD prices keyed by token address. Tokens
// without a price are absent from the map.
func (c *PoolClient) TokenCurrentPrices(ctx context.Context, addresses ...string) (map[string]decimal.Decimal, error) {
	var res currentPrices
	if err := c.rpc.Call(ctx, "token_current_prices", map[string][]string{"token_addresses": addresses}, &res); err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(res.Prices))
	for addr, p := range res.Prices {
		if p.Valid {
			out[addr] = p.Decimal
		}
	}
	return out, nil
}

// TokenCurrentPricesRaw is TokenCurrentPrices without decoding.
func (c *PoolClient) TokenCurrentPricesRaw(ctx context.Context, addresses ...string) (raw, error) {
	var out raw
	err := c.rpc.Call(ctx, "token_current_prices", map[string][]string{"token_addresses": addresses}, &out)
	return out, err
}

func (c *PoolClient) TokenHistoricalPrices(ctx context.Context, addresses []string, timestamp int64) (raw, error) {
	var out raw
	err := c.rpc.Call(ctx, "token_historical_prices", map[string]any{
		"token_addresses": addresses,
		"timestamp":       timestamp,
	}, &out)
	return out, err
}

func (c *PoolClient) LiquidityPairedTokens(ctx context.Context, address string) (raw, error) {
	var out raw
	err := c.rpc.Call(ctx, "liquidity_paired_tokens", map[string]string{"token_address": address}, &out)
	return out, err
}

// Pools lists every pool.
func (c *PoolClient) Pools(ctx context.Context) ([]model.Pool, error) {
	var out poolList
	if err := c.rpc.Call(ctx, "get_pools", nil, &out); err != nil {
		return nil, err
	}
	return out.Pools, nil
}

func (c *PoolClient) PoolsRaw(ctx context.Context) (raw, error) {
	var out raw
	err := c.rpc.Call(ctx, "get_pools", nil, &out)
	return out, err
}

func (c *PoolClient) LastPoolUpdates(ctx context.Context) (raw, error) {
	var out raw
	err := c.rpc.Call(ctx, "get_last_pool_update_for_each_pool", nil, &out)
	return out, err
}

// SpotPrice returns the pool spot price per fee level for a token pair.
func (c *PoolClient) SpotPrice(ctx context.Context, tokenA, tokenB string) (SpotPrice, error) {
	var out SpotPrice
	err := c.rpc.Call(ctx, "get_pool_spot_price", tokenPair{TokenA: tokenA, TokenB: tokenB}, &out)
	return out, err
}

func (c *PoolClient) SpotPriceRaw(ctx context.Context, tokenA, tokenB string) (raw, error) {
	var out raw
	err := c.rpc.Call(ctx, "get_pool_spot_price", tokenPair{TokenA: tokenA, TokenB: tokenB}, &out)
	return out, err
}

func (c *PoolClient) PoolByTokenPair(ctx context.Context, tokenA, tokenB string) (raw, error) {
	var out raw
	err := c.rpc.Call(ctx, "liquidity_pool_by_token_pair", tokenPair{TokenA: tokenA, TokenB: tokenB}, &out)
	return out, err
}

// LiquidityPerLevel returns the share of liquidity at each fee level.
func (c *PoolClient) LiquidityPerLevel(ctx context.Context, tokenA, tokenB string) (LiquidityShare, error) {
	var out LiquidityShare
	err := c.rpc.Call(ctx, "chart_liquidity_percent_per_level", tokenPair{TokenA: tokenA, TokenB: tokenB}, &out)
	return out, err
}
