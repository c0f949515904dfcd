package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"veaxAgent/internal/amount"
	"veaxAgent/internal/model"
	"veaxAgent/internal/tickmath"
	"veaxAgent/internal/txbuilder"
	"veaxAgent/internal/veax"
)

// hopBuffer is the share of each hop's expected output kept as the limit
// of a routed swap.
var hopBuffer = decimal.RequireFromString("0.98")

// SwapRequest builds a single-hop swap plan.
type SwapRequest struct {
	FromSymbol string
	ToSymbol   string
	Wallet     string
	Amount     string
	Slippage   string
}

// DoubleSwapRequest builds a two-hop swap routed through MidSymbol.
type DoubleSwapRequest struct {
	FromSymbol string
	MidSymbol  string
	ToSymbol   string
	Wallet     string
	Amount     string
	Slippage   string
}

// Swap plans a swap of Amount FromSymbol into ToSymbol. NEAR to wNEAR and
// back are planned as wrap and unwrap calls. NEAR as the source is wrapped
// before the swap.
func (s *Service) Swap(ctx context.Context, req SwapRequest) (Plan, error) {
	if err := requireParams("fromTokenSymbol, toTokenSymbol, walletAddress and amount are required",
		req.FromSymbol, req.ToSymbol, req.Wallet, req.Amount); err != nil {
		return Plan{}, err
	}
	amt, err := parseAmount(req.Amount)
	if err != nil {
		return Plan{}, err
	}
	slippage := tickmath.ParseSlippage(req.Slippage)

	tokens, err := s.resolveTokens(ctx, req.FromSymbol, req.ToSymbol)
	if err != nil {
		return Plan{}, err
	}
	from, to := tokens[0], tokens[1]
	fromNative, toNative := isNative(req.FromSymbol), isNative(req.ToSymbol)

	switch {
	case fromNative && s.isWrapped(to) && !toNative:
		return s.wrap(ctx, req.Wallet, amt)
	case toNative && s.isWrapped(from) && !fromNative:
		return s.unwrap(ctx, req.Wallet, from, amt)
	case from.Address == to.Address:
		return Plan{}, invalid("fromTokenSymbol and toTokenSymbol must differ")
	}

	estimate, err := s.estimator.EstimateSwapExactIn(ctx, veax.SwapQuery{
		TokenA:            from.Address,
		TokenB:            to.Address,
		AmountA:           amt.String(),
		SlippageTolerance: slippage,
	})
	if err != nil {
		return Plan{}, err
	}
	if !estimate.PoolExists {
		return Plan{}, notFound("Pool doesn't have liquidity!")
	}

	amountIn := amount.DecimalToBaseUnits(amt, from.Decimals)
	keep := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(slippage))
	limit := amount.DecimalToBaseUnits(estimate.AmountBExpected.Mul(keep), to.Decimals)

	prefix, err := s.fundSource(ctx, req.Wallet, from, fromNative, amountIn)
	if err != nil {
		return Plan{}, err
	}

	swap, err := s.builder.Swap(txbuilder.SwapParams{
		Account:     req.Wallet,
		TokenIn:     from.Address,
		TokenOut:    to.Address,
		AmountIn:    amountIn,
		AmountLimit: limit,
	})
	if err != nil {
		return Plan{}, err
	}

	s.logger.Debug("swap planned",
		zap.String("wallet", req.Wallet),
		zap.String("from", from.Address),
		zap.String("to", to.Address),
		zap.String("amount_in", amountIn),
		zap.String("amount_limit", limit))
	return Plan{TransactionData: append(prefix, swap...)}, nil
}

// DoubleSwap plans FromSymbol -> MidSymbol -> ToSymbol in one transfer. Each
// hop's limit keeps 98% of its expected output and the second hop spends the
// first hop's limit.
func (s *Service) DoubleSwap(ctx context.Context, req DoubleSwapRequest) (Plan, error) {
	if err := requireParams("fromTokenSymbol, midTokenSymbol, toTokenSymbol, walletAddress and amount are required",
		req.FromSymbol, req.MidSymbol, req.ToSymbol, req.Wallet, req.Amount); err != nil {
		return Plan{}, err
	}
	amt, err := parseAmount(req.Amount)
	if err != nil {
		return Plan{}, err
	}
	slippage := tickmath.ParseSlippage(req.Slippage)

	tokens, err := s.resolveTokens(ctx, req.FromSymbol, req.MidSymbol, req.ToSymbol)
	if err != nil {
		return Plan{}, err
	}
	from, mid, to := tokens[0], tokens[1], tokens[2]
	if from.Address == mid.Address || mid.Address == to.Address {
		return Plan{}, invalid("each hop must swap between different tokens")
	}

	first, err := s.estimator.EstimateSwapExactIn(ctx, veax.SwapQuery{
		TokenA: from.Address, TokenB: mid.Address, AmountA: amt.String(), SlippageTolerance: slippage,
	})
	if err != nil {
		return Plan{}, err
	}
	if !first.PoolExists {
		return Plan{}, notFound("Pool %s/%s doesn't have liquidity!", from.Symbol, mid.Symbol)
	}
	midAmount := first.AmountBExpected.Mul(hopBuffer).Truncate(int32(mid.Decimals))
	if !midAmount.IsPositive() {
		return Plan{}, notFound("Pool %s/%s doesn't have liquidity!", from.Symbol, mid.Symbol)
	}

	second, err := s.estimator.EstimateSwapExactIn(ctx, veax.SwapQuery{
		TokenA: mid.Address, TokenB: to.Address, AmountA: midAmount.String(), SlippageTolerance: slippage,
	})
	if err != nil {
		return Plan{}, err
	}
	if !second.PoolExists {
		return Plan{}, notFound("Pool %s/%s doesn't have liquidity!", mid.Symbol, to.Symbol)
	}

	amountIn := amount.DecimalToBaseUnits(amt, from.Decimals)
	midBase := amount.DecimalToBaseUnits(midAmount, mid.Decimals)
	finalLimit := amount.DecimalToBaseUnits(second.AmountBExpected.Mul(hopBuffer), to.Decimals)

	prefix, err := s.fundSource(ctx, req.Wallet, from, isNative(req.FromSymbol), amountIn)
	if err != nil {
		return Plan{}, err
	}

	txs, err := s.builder.DoubleSwap(req.Wallet,
		txbuilder.Hop{TokenIn: from.Address, TokenOut: mid.Address, AmountIn: amountIn, AmountLimit: midBase},
		txbuilder.Hop{TokenIn: mid.Address, TokenOut: to.Address, AmountIn: midBase, AmountLimit: finalLimit},
	)
	if err != nil {
		return Plan{}, err
	}
	return Plan{TransactionData: append(prefix, txs...)}, nil
}

// fundSource guards the source balance. For native NEAR it also returns the
// wrap group that turns NEAR into the wNEAR the swap spends.
func (s *Service) fundSource(ctx context.Context, wallet string, from model.TokenMeta, native bool, required string) ([]txbuilder.Transaction, error) {
	if !native {
		available, err := s.chain.FTBalanceOf(ctx, from.Address, wallet)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", from.Address, err)
		}
		if err := checkBalance("Token", from, required, available); err != nil {
			return nil, err
		}
		return nil, nil
	}

	available, err := s.chain.NativeBalance(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("native balance: %w", err)
	}
	if err := checkBalance("Token", nearMeta(), required, available); err != nil {
		return nil, err
	}
	needsStorage, err := s.needsWrapStorage(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return s.builder.WrapNear(required, needsStorage)
}

func (s *Service) wrap(ctx context.Context, wallet string, amt decimal.Decimal) (Plan, error) {
	yocto := amount.DecimalToBaseUnits(amt, amount.NearDecimals)
	available, err := s.chain.NativeBalance(ctx, wallet)
	if err != nil {
		return Plan{}, fmt.Errorf("native balance: %w", err)
	}
	if err := checkBalance("Token", nearMeta(), yocto, available); err != nil {
		return Plan{}, err
	}

	needsStorage, err := s.needsWrapStorage(ctx, wallet)
	if err != nil {
		return Plan{}, err
	}
	txs, err := s.builder.WrapNear(yocto, needsStorage)
	if err != nil {
		return Plan{}, err
	}
	return Plan{TransactionData: txs}, nil
}

func (s *Service) unwrap(ctx context.Context, wallet string, wrapped model.TokenMeta, amt decimal.Decimal) (Plan, error) {
	yocto := amount.DecimalToBaseUnits(amt, amount.NearDecimals)
	available, err := s.chain.FTBalanceOf(ctx, wrapped.Address, wallet)
	if err != nil {
		return Plan{}, fmt.Errorf("balance of %s: %w", wrapped.Address, err)
	}
	if err := checkBalance("Token", wrapped, yocto, available); err != nil {
		return Plan{}, err
	}
	return Plan{TransactionData: s.builder.UnwrapNear(yocto)}, nil
}

func (s *Service) needsWrapStorage(ctx context.Context, wallet string) (bool, error) {
	storage, err := s.chain.StorageBalanceOf(ctx, s.builder.Wrap(), wallet)
	if err != nil {
		return false, fmt.Errorf("wrap storage balance: %w", err)
	}
	return storage == nil, nil
}

func nearMeta() model.TokenMeta {
	return model.TokenMeta{Symbol: "NEAR", Name: "NEAR", Decimals: amount.NearDecimals}
}
