package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"veaxAgent/internal/amount"
	"veaxAgent/internal/model"
	"veaxAgent/internal/pools"
	"veaxAgent/internal/veax"
)

const (
	tokensPageSize = 10

	unknownName   = "Unknown"
	unknownSymbol = "N/A"
)

// TokensRequest pages through listed tokens.
type TokensRequest struct {
	Page   string
	Search string
}

// TokenList is a page of tokens enriched with on-chain name and symbol.
type TokenList struct {
	Tokens []model.Record `json:"tokens"`
	Total  int            `json:"total"`
}

// Balance is a human-formatted wallet balance.
type Balance struct {
	Balance string `json:"balance"`
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Tokens lists one page of tokens, newest first. Tokens whose metadata
// cannot be loaded are listed as Unknown/N/A.
func (s *Service) Tokens(ctx context.Context, req TokensRequest) (TokenList, error) {
	page, err := s.pools.TokensList(ctx, veax.ListFilter{
		Page:   parsePage(req.Page),
		Limit:  tokensPageSize,
		Sort:   veax.SortNone,
		IsDesc: true,
		Search: req.Search,
	})
	if err != nil {
		return TokenList{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for _, rec := range page.Tokens {
		if rec == nil {
			continue
		}
		g.Go(func() error {
			name, symbol := unknownName, unknownSymbol
			addr, _ := rec.String("sc_address")
			if meta, err := s.chain.FTMetadata(gctx, addr); err == nil {
				if meta.Name != "" {
					name = meta.Name
				}
				if meta.Symbol != "" {
					symbol = meta.Symbol
				}
			} else {
				s.logger.Warn("token metadata fetch failed", zap.String("token", addr), zap.Error(err))
			}
			if err := rec.Set("name", name); err != nil {
				return err
			}
			return rec.Set("symbol", symbol)
		})
	}
	if err := g.Wait(); err != nil {
		return TokenList{}, err
	}

	tokens := page.Tokens
	if tokens == nil {
		tokens = []model.Record{}
	}
	return TokenList{Tokens: tokens, Total: page.Total}, nil
}

func (s *Service) TokenPrice(ctx context.Context, address string) (json.RawMessage, error) {
	if err := requireParams("tokenAddress is required", address); err != nil {
		return nil, err
	}
	return s.pools.TokenCurrentPricesRaw(ctx, address)
}

// HistoricalPrice returns token prices at timestamp (unix seconds, 0 when
// absent or malformed).
func (s *Service) HistoricalPrice(ctx context.Context, address, timestamp string) (json.RawMessage, error) {
	if err := requireParams("tokenAddress is required", address); err != nil {
		return nil, err
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		ts = 0
	}
	return s.pools.TokenHistoricalPrices(ctx, []string{address}, ts)
}

func (s *Service) LiquidityPaired(ctx context.Context, address string) (json.RawMessage, error) {
	if err := requireParams("tokenAddress is required", address); err != nil {
		return nil, err
	}
	return s.pools.LiquidityPairedTokens(ctx, address)
}

func (s *Service) Pools(ctx context.Context) (json.RawMessage, error) {
	return s.pools.PoolsRaw(ctx)
}

// RankedPools lists pools split into stable and risky groups.
func (s *Service) RankedPools(ctx context.Context) (pools.Ranked, error) {
	list, err := s.pools.Pools(ctx)
	if err != nil {
		return pools.Ranked{}, err
	}
	return pools.Categorize(list), nil
}

func (s *Service) LastPoolUpdate(ctx context.Context) (json.RawMessage, error) {
	return s.pools.LastPoolUpdates(ctx)
}

func (s *Service) SpotPrice(ctx context.Context, tokenA, tokenB string) (json.RawMessage, error) {
	if err := requireParams("tokenA and tokenB are required", tokenA, tokenB); err != nil {
		return nil, err
	}
	return s.pools.SpotPriceRaw(ctx, tokenA, tokenB)
}

func (s *Service) PoolByTokens(ctx context.Context, tokenA, tokenB string) (json.RawMessage, error) {
	if err := requireParams("tokenA and tokenB are required", tokenA, tokenB); err != nil {
		return nil, err
	}
	return s.pools.PoolByTokenPair(ctx, tokenA, tokenB)
}

// Balance returns the wallet's balance of symbol. NEAR reads the native
// account balance.
func (s *Service) Balance(ctx context.Context, symbol, wallet string) (Balance, error) {
	if err := requireParams("tokenSymbol and walletAddress are required", symbol, wallet); err != nil {
		return Balance{}, err
	}

	var (
		raw      string
		decimals int
		err      error
	)
	if isNative(symbol) {
		raw, err = s.chain.NativeBalance(ctx, wallet)
		decimals = amount.NearDecimals
	} else {
		var tokens []model.TokenMeta
		tokens, err = s.resolveTokens(ctx, symbol)
		if err != nil {
			return Balance{}, err
		}
		raw, err = s.chain.FTBalanceOf(ctx, tokens[0].Address, wallet)
		decimals = tokens[0].Decimals
	}
	if err != nil {
		return Balance{}, fmt.Errorf("balance of %s: %w", symbol, err)
	}

	human, err := amount.ToHuman(raw, decimals)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Balance: human}, nil
}
