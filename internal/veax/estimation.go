package veax

import (
	"context"
	"fmt"

	"veaxAgent/internal/rpc"
)

// EstimationClient talks to the estimation service.
type EstimationClient struct {
	rpc rpc.Caller
}

func NewEstimationClient(caller rpc.Caller) *EstimationClient {
	return &EstimationClient{rpc: caller}
}

// SwapQuery asks for the expected output of swapping AmountA of TokenA.
// AmountA is in human units.
type SwapQuery struct {
	TokenA            string  `json:"token_a"`
	TokenB            string  `json:"token_b"`
	AmountA           string  `json:"amount_a"`
	SlippageTolerance float64 `json:"slippage_tolerance"`
}

// PositionQuery asks how much of each token a position over
// [LowerTick, UpperTick] funded with AmountA of TokenA takes.
type PositionQuery struct {
	TokenA            string  `json:"token_a"`
	TokenB            string  `json:"token_b"`
	SlippageTolerance float64 `json:"slippage_tolerance"`
	FeeRate           int     `json:"fee_rate"`
	LowerTick         int     `json:"lower_tick"`
	UpperTick         int     `json:"upper_tick"`
	AmountA           string  `json:"amount_a"`
}

func (c *EstimationClient) EstimateSwapExactIn(ctx context.Context, q SwapQuery) (SwapEstimate, error) {
	var out SwapEstimate
	if err := c.rpc.Call(ctx, "estimate_swap_exact_in", q, &out); err != nil {
		return SwapEstimate{}, fmt.Errorf("estimate swap %s->%s: %w", q.TokenA, q.TokenB, err)
	}
	return out, nil
}

func (c *EstimationClient) EstimateLiquidityPosition(ctx context.Context, q PositionQuery) (PositionEstimate, error) {
	var out PositionEstimate
	if err := c.rpc.Call(ctx, "estimate_liquidity_position", q, &out); err != nil {
		return PositionEstimate{}, fmt.Errorf("estimate position %s/%s: %w", q.TokenA, q.TokenB, err)
	}
	return out, nil
}
