package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"veaxAgent/internal/model"
	"veaxAgent/internal/near"
	"veaxAgent/internal/resolver"
	"veaxAgent/internal/txbuilder"
	"veaxAgent/internal/veax"
)

var (
	tokWNEAR = model.TokenMeta{Address: "wrap.near", Symbol: "wNEAR", Name: "Wrapped NEAR", Decimals: 24}
	tokUSDT  = model.TokenMeta{Address: "usdt.tether-token.near", Symbol: "USDt", Name: "Tether USD", Decimals: 6}
	tokLOW   = model.TokenMeta{Address: "low.near", Symbol: "LOW", Name: "Low", Decimals: 0}
	tokAURO  = model.TokenMeta{Address: "auro.near", Symbol: "AURO", Name: "Auro", Decimals: 18}
)

type fakeChain struct {
	mu         sync.Mutex
	balances   map[string]string // token/account
	native     map[string]string
	storage    map[string]*near.StorageBalance // contract/account
	registered map[string]bool                 // account/token
	meta       map[string]near.FTMetadata
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		balances:   map[string]string{},
		native:     map[string]string{},
		storage:    map[string]*near.StorageBalance{},
		registered: map[string]bool{},
		meta:       map[string]near.FTMetadata{},
	}
}

func (f *fakeChain) FTMetadata(_ context.Context, token string) (near.FTMetadata, error) {
	m, ok := f.meta[token]
	if !ok {
		return near.FTMetadata{}, errors.New("no metadata")
	}
	return m, nil
}

func (f *fakeChain) FTBalanceOf(_ context.Context, token, account string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.balances[token+"/"+account]; ok {
		return b, nil
	}
	return "0", nil
}

func (f *fakeChain) NativeBalance(_ context.Context, account string) (string, error) {
	if b, ok := f.native[account]; ok {
		return b, nil
	}
	return "", near.ErrAccountNotFound
}

func (f *fakeChain) StorageBalanceOf(_ context.Context, contract, account string) (*near.StorageBalance, error) {
	return f.storage[contract+"/"+account], nil
}

func (f *fakeChain) TokenRegistered(_ context.Context, _, account, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered[account+"/"+token], nil
}

type fakeTokens struct {
	catalog []model.TokenMeta
}

func (f *fakeTokens) Resolve(_ context.Context, symbols ...string) ([]model.TokenMeta, error) {
	return resolver.Lookup(f.catalog, symbols...)
}

func (f *fakeTokens) Metadata(_ context.Context, address string) (model.TokenMeta, error) {
	for _, t := range f.catalog {
		if t.Address == address {
			return t, nil
		}
	}
	return model.TokenMeta{}, errors.New("unknown token")
}

type fakePools struct {
	spot      map[string]veax.SpotPrice
	percents  map[string][]float64
	usd       map[string]decimal.Decimal
	pools     []model.Pool
	tokenPage veax.TokenPage
	lastQuery veax.ListFilter
}

func pairKey(a, b string) string { return a + "|" + b }

func (f *fakePools) TokensList(_ context.Context, filter veax.ListFilter) (veax.TokenPage, error) {
	f.lastQuery = filter
	return f.tokenPage, nil
}

func (f *fakePools) TokenCurrentPrices(_ context.Context, addresses ...string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, a := range addresses {
		if p, ok := f.usd[a]; ok {
			out[a] = p
		}
	}
	return out, nil
}

func (f *fakePools) TokenCurrentPricesRaw(_ context.Context, addresses ...string) (json.RawMessage, error) {
	return json.RawMessage(`{"prices":{"` + strings.Join(addresses, ",") + `":"1"}}`), nil
}

func (f *fakePools) TokenHistoricalPrices(_ context.Context, addresses []string, ts int64) (json.RawMessage, error) {
	b, _ := json.Marshal(map[string]any{"addresses": addresses, "timestamp": ts})
	return b, nil
}

func (f *fakePools) LiquidityPairedTokens(_ context.Context, address string) (json.RawMessage, error) {
	return json.RawMessage(`{"tokens":["` + address + `"]}`), nil
}

func (f *fakePools) Pools(context.Context) ([]model.Pool, error) { return f.pools, nil }

func (f *fakePools) PoolsRaw(context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"pools":[]}`), nil
}

func (f *fakePools) LastPoolUpdates(context.Context) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakePools) SpotPrice(_ context.Context, a, b string) (veax.SpotPrice, error) {
	return f.spot[pairKey(a, b)], nil
}

func (f *fakePools) SpotPriceRaw(_ context.Context, a, b string) (json.RawMessage, error) {
	return json.Marshal(f.spot[pairKey(a, b)])
}

func (f *fakePools) PoolByTokenPair(_ context.Context, a, b string) (json.RawMessage, error) {
	return json.RawMessage(`{"pool":{"token_a":"` + a + `","token_b":"` + b + `"}}`), nil
}

func (f *fakePools) LiquidityPerLevel(_ context.Context, a, b string) (veax.LiquidityShare, error) {
	return veax.LiquidityShare{Percents: f.percents[pairKey(a, b)]}, nil
}

type fakeEstimator struct {
	swaps     map[string]veax.SwapEstimate
	position  veax.PositionEstimate
	lastPos   veax.PositionQuery
	swapCalls []veax.SwapQuery
}

func (f *fakeEstimator) EstimateSwapExactIn(_ context.Context, q veax.SwapQuery) (veax.SwapEstimate, error) {
	f.swapCalls = append(f.swapCalls, q)
	return f.swaps[pairKey(q.TokenA, q.TokenB)], nil
}

func (f *fakeEstimator) EstimateLiquidityPosition(_ context.Context, q veax.PositionQuery) (veax.PositionEstimate, error) {
	f.lastPos = q
	return f.position, nil
}

type fakeManager struct {
	leverage map[string][]float64
	costs    veax.StorageCosts
}

func (f *fakeManager) PoolLeverage(_ context.Context, a, b string) (veax.Leverage, error) {
	return veax.Leverage{Leverages: f.leverage[pairKey(a, b)]}, nil
}

func (f *fakeManager) StorageCosts(context.Context) (veax.StorageCosts, error) {
	return f.costs, nil
}

type fakePositions struct {
	page    model.PositionPage
	details map[string]model.Position
}

func (f *fakePositions) List(context.Context, string, int) (model.PositionPage, error) {
	return f.page, nil
}

func (f *fakePositions) Details(_ context.Context, id string) (model.Position, error) {
	return f.details[id], nil
}

type fixture struct {
	svc       *Service
	chain     *fakeChain
	pools     *fakePools
	estimator *fakeEstimator
	manager   *fakeManager
	positions *fakePositions
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture() *fixture {
	f := &fixture{
		chain: newFakeChain(),
		pools: &fakePools{
			spot:     map[string]veax.SpotPrice{},
			percents: map[string][]float64{},
			usd:      map[string]decimal.Decimal{},
		},
		estimator: &fakeEstimator{swaps: map[string]veax.SwapEstimate{}},
		manager: &fakeManager{
			leverage: map[string][]float64{},
			costs: veax.StorageCosts{
				OpenPosition:  dec("0.01"),
				RegisterToken: dec("0.005"),
				CreatePool:    dec("0.1"),
			},
		},
		positions: &fakePositions{details: map[string]model.Position{}},
	}
	f.svc = New(Deps{
		Chain:     f.chain,
		Tokens:    &fakeTokens{catalog: []model.TokenMeta{tokWNEAR, tokUSDT, tokLOW, tokAURO}},
		Pools:     f.pools,
		Estimator: f.estimator,
		Manager:   f.manager,
		Positions: f.positions,
		Builder:   txbuilder.New("veax.near", "wrap.near"),
	}, nil)
	return f
}
