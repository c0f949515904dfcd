package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"veaxAgent/internal/amount"
	"veaxAgent/internal/model"
	"veaxAgent/internal/tickmath"
	"veaxAgent/internal/txbuilder"
	"veaxAgent/internal/veax"
)

const (
	// DefaultLeverage applies when the pool reports none for the fee level.
	DefaultLeverage = 1000.0

	// positionSlippage is the tolerance used for position estimates.
	positionSlippage = 0.005
)

// AddLiquidityRequest builds a plan that opens a position.
type AddLiquidityRequest struct {
	SymbolA string
	SymbolB string
	Wallet  string
	Amount  string
	FeeTier string
}

// RangeRequest previews the range an add-liquidity plan would use.
type RangeRequest struct {
	SymbolA string
	SymbolB string
	FeeTier string
}

// RangePreview is the pool context and planned range for a token pair.
type RangePreview struct {
	TokenA     model.TokenMeta   `json:"token_a"`
	TokenB     model.TokenMeta   `json:"token_b"`
	PoolExists bool              `json:"pool_exists"`
	FeeLevel   tickmath.FeeLevel `json:"fee_level"`
	Leverage   float64           `json:"leverage"`
	Price      float64           `json:"price"`
	Range      tickmath.Range    `json:"range"`
}

// PlanRange resolves the pair and returns the range without estimating.
func (s *Service) PlanRange(ctx context.Context, req RangeRequest) (RangePreview, error) {
	if err := requireParams("tokenSymbolA and tokenSymbolB are required", req.SymbolA, req.SymbolB); err != nil {
		return RangePreview{}, err
	}
	return s.positionContext(ctx, req.SymbolA, req.SymbolB, req.FeeTier)
}

// AddLiquidity plans DEX storage and token registration, a deposit of token
// A, and a deposit of token B that opens the position.
func (s *Service) AddLiquidity(ctx context.Context, req AddLiquidityRequest) (Plan, error) {
	if err := requireParams("tokenSymbolA, tokenSymbolB, walletAddress and amount are required",
		req.SymbolA, req.SymbolB, req.Wallet, req.Amount); err != nil {
		return Plan{}, err
	}
	amt, err := parseAmount(req.Amount)
	if err != nil {
		return Plan{}, err
	}

	pc, err := s.positionContext(ctx, req.SymbolA, req.SymbolB, req.FeeTier)
	if err != nil {
		return Plan{}, err
	}
	tokenA, tokenB := pc.TokenA, pc.TokenB

	est, err := s.estimator.EstimateLiquidityPosition(ctx, veax.PositionQuery{
		TokenA:            tokenA.Address,
		TokenB:            tokenB.Address,
		SlippageTolerance: positionSlippage,
		FeeRate:           pc.FeeLevel.Rate,
		LowerTick:         pc.Range.MinTick,
		UpperTick:         pc.Range.MaxTick,
		AmountA:           amt.String(),
	})
	if err != nil {
		return Plan{}, err
	}

	minA := amount.DecimalToBaseUnits(est.MinTokenA, tokenA.Decimals)
	maxA := amount.DecimalToBaseUnits(est.MaxTokenA, tokenA.Decimals)
	minB := amount.DecimalToBaseUnits(est.MinTokenB, tokenB.Decimals)
	maxB := amount.DecimalToBaseUnits(est.MaxTokenB, tokenB.Decimals)

	var (
		balanceA, balanceB       string
		registeredA, registeredB bool
		costs                    veax.StorageCosts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balanceA, err = s.chain.FTBalanceOf(gctx, tokenA.Address, req.Wallet)
		return err
	})
	g.Go(func() error {
		var err error
		balanceB, err = s.chain.FTBalanceOf(gctx, tokenB.Address, req.Wallet)
		return err
	})
	g.Go(func() error {
		var err error
		registeredA, err = s.chain.TokenRegistered(gctx, s.builder.DEX(), req.Wallet, tokenA.Address)
		return err
	})
	g.Go(func() error {
		var err error
		registeredB, err = s.chain.TokenRegistered(gctx, s.builder.DEX(), req.Wallet, tokenB.Address)
		return err
	})
	g.Go(func() error {
		var err error
		costs, err = s.manager.StorageCosts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Plan{}, fmt.Errorf("add liquidity checks: %w", err)
	}

	if err := checkBalance("Token A", tokenA, maxA, balanceA); err != nil {
		return Plan{}, err
	}
	if err := checkBalance("Token B", tokenB, maxB, balanceB); err != nil {
		return Plan{}, err
	}

	var register []string
	if !registeredA {
		register = append(register, tokenA.Address)
	}
	if !registeredB {
		register = append(register, tokenB.Address)
	}

	parts := []decimal.Decimal{costs.OpenPosition}
	for range register {
		parts = append(parts, costs.RegisterToken)
	}
	if !pc.PoolExists {
		parts = append(parts, costs.CreatePool)
	}
	storage := amount.DecimalToBaseUnits(amount.Sum(parts...), amount.NearDecimals)

	txs, err := s.builder.AddLiquidity(txbuilder.LiquidityParams{
		Account:        req.Wallet,
		TokenA:         tokenA.Address,
		TokenB:         tokenB.Address,
		FeeRate:        pc.FeeLevel.Rate,
		Ticks:          pc.Range.Ticks(),
		MinA:           minA,
		MaxA:           maxA,
		MinB:           minB,
		MaxB:           maxB,
		StorageDeposit: storage,
		Register:       register,
	})
	if err != nil {
		return Plan{}, err
	}

	s.logger.Debug("add liquidity planned",
		zap.String("wallet", req.Wallet),
		zap.String("token_a", tokenA.Address),
		zap.String("token_b", tokenB.Address),
		zap.Int("fee_rate", pc.FeeLevel.Rate),
		zap.Ints("ticks", []int{pc.Range.MinTick, pc.Range.MaxTick}),
		zap.String("storage_deposit", storage))
	return Plan{TransactionData: txs}, nil
}

// positionContext resolves the pair, picks the fee level, spot price and
// leverage, and plans the range.
func (s *Service) positionContext(ctx context.Context, symbolA, symbolB, feeTier string) (RangePreview, error) {
	var (
		level    tickmath.FeeLevel
		levelIdx = -1
	)
	if strings.TrimSpace(feeTier) != "" {
		var err error
		level, levelIdx, err = tickmath.ParseFeeTier(feeTier)
		if err != nil {
			return RangePreview{}, invalid("%s", err.Error())
		}
	}

	tokens, err := s.resolveTokens(ctx, symbolA, symbolB)
	if err != nil {
		return RangePreview{}, err
	}
	tokenA, tokenB := tokens[0], tokens[1]
	if tokenA.Address == tokenB.Address {
		return RangePreview{}, invalid("tokenSymbolA and tokenSymbolB must differ")
	}

	spot, err := s.pools.SpotPrice(ctx, tokenA.Address, tokenB.Address)
	if err != nil {
		return RangePreview{}, err
	}

	if levelIdx < 0 {
		levelIdx, err = s.busiestLevel(ctx, tokenA.Address, tokenB.Address, spot.PoolExist)
		if err != nil {
			return RangePreview{}, err
		}
		level, _ = tickmath.FeeLevelAt(levelIdx)
	}

	price, ok := levelPrice(spot, levelIdx)
	if !ok {
		price, err = s.usdPriceRatio(ctx, tokenA, tokenB)
		if err != nil {
			return RangePreview{}, err
		}
	}

	leverage := DefaultLeverage
	if spot.PoolExist {
		lev, err := s.manager.PoolLeverage(ctx, tokenA.Address, tokenB.Address)
		if err != nil {
			return RangePreview{}, err
		}
		if levelIdx < len(lev.Leverages) && lev.Leverages[levelIdx] > 0 {
			leverage = lev.Leverages[levelIdx]
		}
	}

	rng := tickmath.PlanEqualRange(tickmath.RangeInput{
		Price:     price,
		DecimalsA: tokenA.Decimals,
		DecimalsB: tokenB.Decimals,
		Leverage:  leverage,
	})

	return RangePreview{
		TokenA:     tokenA,
		TokenB:     tokenB,
		PoolExists: spot.PoolExist,
		FeeLevel:   level,
		Leverage:   leverage,
		Price:      price,
		Range:      rng,
	}, nil
}

// busiestLevel returns the index of the fee level holding the largest share
// of liquidity, or the default level when the pool reports none.
func (s *Service) busiestLevel(ctx context.Context, tokenA, tokenB string, poolExists bool) (int, error) {
	def, _ := tickmath.FeeIndexForRate(tickmath.DefaultFeeRate)
	if !poolExists {
		return def, nil
	}
	share, err := s.pools.LiquidityPerLevel(ctx, tokenA, tokenB)
	if err != nil {
		return 0, err
	}
	best := -1
	for i, p := range share.Percents {
		if i >= tickmath.FeeLevelCount() {
			break
		}
		if best < 0 || p > share.Percents[best] {
			best = i
		}
	}
	if best < 0 {
		return def, nil
	}
	return best, nil
}

func levelPrice(spot veax.SpotPrice, idx int) (float64, bool) {
	if !spot.PoolExist || idx < 0 || idx >= len(spot.Prices) {
		return 0, false
	}
	p := spot.Prices[idx]
	if !p.Valid || !p.Decimal.IsPositive() {
		return 0, false
	}
	return p.Decimal.InexactFloat64(), true
}

// usdPriceRatio prices A in B from their USD prices.
func (s *Service) usdPriceRatio(ctx context.Context, tokenA, tokenB model.TokenMeta) (float64, error) {
	prices, err := s.pools.TokenCurrentPrices(ctx, tokenA.Address, tokenB.Address)
	if err != nil {
		return 0, err
	}
	pa, okA := prices[tokenA.Address]
	pb, okB := prices[tokenB.Address]
	if !okA || !okB || !pb.IsPositive() || !pa.IsPositive() {
		return 0, notFound("Price data not found for %s or %s", tokenA.Symbol, tokenB.Symbol)
	}
	return pa.Div(pb).InexactFloat64(), nil
}
