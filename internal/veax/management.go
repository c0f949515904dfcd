package veax

import (
	"context"

	"veaxAgent/internal/rpc"
)

// ManagementClient talks to the pool-management service.
type ManagementClient struct {
	rpc rpc.Caller
}

func NewManagementClient(caller rpc.Caller) *ManagementClient {
	return &ManagementClient{rpc: caller}
}

// PoolLeverage returns the leverage of each fee level of a pool.
func (c *ManagementClient) PoolLeverage(ctx context.Context, tokenA, tokenB string) (Leverage, error) {
	var out Leverage
	err := c.rpc.Call(ctx, "get_pool_leverage", tokenPair{TokenA: tokenA, TokenB: tokenB}, &out)
	return out, err
}

// StorageCosts returns the DEX storage cost of each purpose in NEAR.
func (c *ManagementClient) StorageCosts(ctx context.Context) (StorageCosts, error) {
	var out StorageCosts
	err := c.rpc.Call(ctx, "get_storage_costs", nil, &out)
	return out, err
}
