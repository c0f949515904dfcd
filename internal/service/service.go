package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"veaxAgent/internal/amount"
	"veaxAgent/internal/model"
	"veaxAgent/internal/near"
	"veaxAgent/internal/txbuilder"
	"veaxAgent/internal/veax"
)

const nativeSymbol = "near"

// Chain is the subset of NEAR view calls the pipelines use.
type Chain interface {
	FTMetadata(ctx context.Context, token string) (near.FTMetadata, error)
	FTBalanceOf(ctx context.Context, token, account string) (string, error)
	NativeBalance(ctx context.Context, account string) (string, error)
	StorageBalanceOf(ctx context.Context, contract, account string) (*near.StorageBalance, error)
	TokenRegistered(ctx context.Context, dex, account, token string) (bool, error)
}

// Tokens resolves symbols and addresses to token metadata.
type Tokens interface {
	Resolve(ctx context.Context, symbols ...string) ([]model.TokenMeta, error)
	Metadata(ctx context.Context, address string) (model.TokenMeta, error)
}

// Pools is the liquidity-pool service.
type Pools interface {
	TokensList(ctx context.Context, filter veax.ListFilter) (veax.TokenPage, error)
	TokenCurrentPrices(ctx context.Context, addresses ...string) (map[string]decimal.Decimal, error)
	TokenCurrentPricesRaw(ctx context.Context, addresses ...string) (json.RawMessage, error)
	TokenHistoricalPrices(ctx context.Context, addresses []string, timestamp int64) (json.RawMessage, error)
	LiquidityPairedTokens(ctx context.Context, address string) (json.RawMessage, error)
	Pools(ctx context.Context) ([]model.Pool, error)
	PoolsRaw(ctx context.Context) (json.RawMessage, error)
	LastPoolUpdates(ctx context.Context) (json.RawMessage, error)
	SpotPrice(ctx context.Context, tokenA, tokenB string) (veax.SpotPrice, error)
	SpotPriceRaw(ctx context.Context, tokenA, tokenB string) (json.RawMessage, error)
	PoolByTokenPair(ctx context.Context, tokenA, tokenB string) (json.RawMessage, error)
	LiquidityPerLevel(ctx context.Context, tokenA, tokenB string) (veax.LiquidityShare, error)
}

// Estimator is the estimation service.
type Estimator interface {
	EstimateSwapExactIn(ctx context.Context, q veax.SwapQuery) (veax.SwapEstimate, error)
	EstimateLiquidityPosition(ctx context.Context, q veax.PositionQuery) (veax.PositionEstimate, error)
}

// Manager is the pool-management service.
type Manager interface {
	PoolLeverage(ctx context.Context, tokenA, tokenB string) (veax.Leverage, error)
	StorageCosts(ctx context.Context) (veax.StorageCosts, error)
}

// Positions is the liquidity-position service.
type Positions interface {
	List(ctx context.Context, account string, page int) (model.PositionPage, error)
	Details(ctx context.Context, id string) (model.Position, error)
}

// Deps wires the service to its upstreams.
type Deps struct {
	Chain     Chain
	Tokens    Tokens
	Pools     Pools
	Estimator Estimator
	Manager   Manager
	Positions Positions
	Builder   *txbuilder.Builder

	// MetadataConcurrency bounds per-request metadata fan-out.
	MetadataConcurrency int
}

// Service runs the per-request pipelines. It holds no mutable state.
type Service struct {
	chain     Chain
	tokens    Tokens
	pools     Pools
	estimator Estimator
	manager   Manager
	positions Positions
	builder   *txbuilder.Builder
	fanout    int
	logger    *zap.Logger
}

// Plan is an ordered list of transactions for the wallet to sign.
type Plan struct {
	TransactionData []txbuilder.Transaction `json:"transactionData"`
}

func New(d Deps, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if d.MetadataConcurrency <= 0 {
		d.MetadataConcurrency = 8
	}
	return &Service{
		chain:     d.Chain,
		tokens:    d.Tokens,
		pools:     d.Pools,
		estimator: d.Estimator,
		manager:   d.Manager,
		positions: d.Positions,
		builder:   d.Builder,
		fanout:    d.MetadataConcurrency,
		logger:    logger.Named("service"),
	}
}

func isNative(symbol string) bool {
	return strings.EqualFold(strings.TrimSpace(symbol), nativeSymbol)
}

func (s *Service) isWrapped(t model.TokenMeta) bool {
	return t.Address == s.builder.Wrap()
}

// resolveTokens resolves symbols in order. NEAR maps to the wrap contract.
func (s *Service) resolveTokens(ctx context.Context, symbols ...string) ([]model.TokenMeta, error) {
	out := make([]model.TokenMeta, len(symbols))
	var lookup []string
	var slots []int
	for i, sym := range symbols {
		if isNative(sym) {
			meta, err := s.tokens.Metadata(ctx, s.builder.Wrap())
			if err != nil {
				return nil, err
			}
			out[i] = meta
			continue
		}
		lookup = append(lookup, sym)
		slots = append(slots, i)
	}
	if len(lookup) == 0 {
		return out, nil
	}

	found, err := s.tokens.Resolve(ctx, lookup...)
	if err != nil {
		return nil, mapResolveError(err)
	}
	for j, i := range slots {
		out[i] = found[j]
	}
	return out, nil
}

// parseAmount validates a human amount as a positive number.
func parseAmount(raw string) (decimal.Decimal, error) {
	value, err := amount.ParseHuman(raw)
	if err != nil || !value.IsPositive() {
		return decimal.Decimal{}, invalid("amount must be a positive number")
	}
	return value, nil
}

// checkBalance fails with InsufficientBalanceError when available < required.
func checkBalance(label string, token model.TokenMeta, required, available string) error {
	cmp, err := amount.Compare(available, required)
	if err != nil {
		return err
	}
	if cmp < 0 {
		return &InsufficientBalanceError{
			Label:     label,
			Symbol:    token.Symbol,
			Required:  required,
			Available: available,
			Decimals:  token.Decimals,
		}
	}
	return nil
}

func requireParams(msg string, values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Msg: msg}
		}
	}
	return nil
}
