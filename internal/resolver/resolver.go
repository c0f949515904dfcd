package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"veaxAgent/internal/cache"
	"veaxAgent/internal/model"
	"veaxAgent/internal/near"
	"veaxAgent/internal/veax"
)

// skippedAddresses are listed by the DEX but are not NEP-141 contracts.
var skippedAddresses = map[string]struct{}{
	"aurora": {},
}

// TokenLister lists tokens known to the DEX.
type TokenLister interface {
	TokensList(ctx context.Context, filter veax.ListFilter) (veax.TokenPage, error)
}

// MetadataFetcher loads on-chain token metadata.
type MetadataFetcher interface {
	FTMetadata(ctx context.Context, token string) (near.FTMetadata, error)
}

// UnknownSymbolError names every symbol that did not resolve.
type UnknownSymbolError struct {
	Symbols []string
}

func (e *UnknownSymbolError) Error() string {
	return "could not find tokens for symbols: " + strings.Join(e.Symbols, ", ")
}

// Config controls catalog construction.
type Config struct {
	ListLimit   int
	Concurrency int
}

// Resolver maps token symbols to DEX token metadata.
type Resolver struct {
	tokens TokenLister
	meta   MetadataFetcher
	cache  *cache.Cache
	cfg    Config
	logger *zap.Logger
}

// New builds a resolver. cache may be nil.
func New(tokens TokenLister, meta MetadataFetcher, c *cache.Cache, cfg Config, logger *zap.Logger) *Resolver {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		tokens: tokens,
		meta:   meta,
		cache:  c,
		cfg:    cfg,
		logger: logger.Named("resolver"),
	}
}

// Catalog returns every listed token whose metadata could be loaded, in
// listing order.
func (r *Resolver) Catalog(ctx context.Context) ([]model.TokenMeta, error) {
	if tokens, err := r.cache.GetTokens(ctx, r.cfg.ListLimit); err == nil {
		return tokens, nil
	} else if !errors.Is(err, cache.ErrDisabled) && !errors.Is(err, cache.ErrMiss) {
		r.logger.Warn("token cache read failed", zap.Error(err))
	}

	page, err := r.tokens.TokensList(ctx, veax.ListFilter{
		Page:  1,
		Limit: r.cfg.ListLimit,
		Sort:  veax.SortNone,
	})
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}

	addresses := make([]string, 0, len(page.Tokens))
	for _, rec := range page.Tokens {
		addr, _ := rec.String("sc_address")
		if addr == "" {
			r.logger.Debug("token without address skipped")
			continue
		}
		if _, skip := skippedAddresses[addr]; skip {
			continue
		}
		addresses = append(addresses, addr)
	}

	// each goroutine owns one slot of results
	results := make([]*model.TokenMeta, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, addr := range addresses {
		g.Go(func() error {
			meta, err := r.meta.FTMetadata(gctx, addr)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.logger.Warn("token metadata fetch failed", zap.String("token", addr), zap.Error(err))
				return nil
			}
			results[i] = &model.TokenMeta{
				Address:  addr,
				Symbol:   meta.Symbol,
				Name:     meta.Name,
				Decimals: meta.Decimals,
				Spec:     meta.Spec,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tokens := make([]model.TokenMeta, 0, len(results))
	for _, t := range results {
		if t != nil {
			tokens = append(tokens, *t)
		}
	}

	if err := r.cache.SetTokens(ctx, r.cfg.ListLimit, tokens); err != nil && !errors.Is(err, cache.ErrDisabled) {
		r.logger.Warn("token cache write failed", zap.Error(err))
	}
	return tokens, nil
}

// Resolve looks up each symbol case-insensitively. When the catalog lists
// a symbol more than once the first listing wins.
func (r *Resolver) Resolve(ctx context.Context, symbols ...string) ([]model.TokenMeta, error) {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return Lookup(catalog, symbols...)
}

// Lookup resolves symbols against an already loaded catalog.
func Lookup(catalog []model.TokenMeta, symbols ...string) ([]model.TokenMeta, error) {
	out := make([]model.TokenMeta, len(symbols))
	var missing []string
	for i, sym := range symbols {
		found := false
		for _, t := range catalog {
			if strings.EqualFold(t.Symbol, sym) {
				out[i] = t
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, sym)
		}
	}
	if len(missing) > 0 {
		return nil, &UnknownSymbolError{Symbols: missing}
	}
	return out, nil
}

// Metadata loads metadata for a single token address.
func (r *Resolver) Metadata(ctx context.Context, address string) (model.TokenMeta, error) {
	meta, err := r.meta.FTMetadata(ctx, address)
	if err != nil {
		return model.TokenMeta{}, err
	}
	return model.TokenMeta{
		Address:  address,
		Symbol:   meta.Symbol,
		Name:     meta.Name,
		Decimals: meta.Decimals,
		Spec:     meta.Spec,
	}, nil
}
