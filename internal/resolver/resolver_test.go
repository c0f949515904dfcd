package resolver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"veaxAgent/internal/model"
	"veaxAgent/internal/near"
	"veaxAgent/internal/veax"
)

type fakeLister struct {
	addresses []string
	filter    veax.ListFilter
}

func (f *fakeLister) TokensList(_ context.Context, filter veax.ListFilter) (veax.TokenPage, error) {
	f.filter = filter
	page := veax.TokenPage{Total: len(f.addresses)}
	for _, a := range f.addresses {
		rec := model.Record{}
		if a != "" {
			_ = rec.Set("sc_address", a)
		}
		page.Tokens = append(page.Tokens, rec)
	}
	return page, nil
}

type fakeMeta struct {
	meta  map[string]near.FTMetadata
	calls atomic.Int32
}

func (f *fakeMeta) FTMetadata(_ context.Context, token string) (near.FTMetadata, error) {
	f.calls.Add(1)
	m, ok := f.meta[token]
	if !ok {
		return near.FTMetadata{}, errors.New("no metadata")
	}
	return m, nil
}

func newFixture(t *testing.T) (*Resolver, *fakeLister, *fakeMeta) {
	lister := &fakeLister{addresses: []string{
		"wrap.near", "", "aurora", "usdt.tether-token.near", "broken.near", "fake-usdt.near",
	}}
	meta := &fakeMeta{meta: map[string]near.FTMetadata{
		"wrap.near":              {Symbol: "wNEAR", Name: "Wrapped NEAR", Decimals: 24},
		"usdt.tether-token.near": {Symbol: "USDt", Name: "Tether USD", Decimals: 6},
		"fake-usdt.near":         {Symbol: "USDT", Name: "Imposter", Decimals: 18},
	}}
	return New(lister, meta, nil, Config{ListLimit: 100, Concurrency: 2}, zaptest.NewLogger(t)), lister, meta
}

func TestCatalogSkipsAndDropsFailures(t *testing.T) {
	r, lister, meta := newFixture(t)

	tokens, err := r.Catalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, lister.filter.Limit)
	assert.Equal(t, veax.SortNone, lister.filter.Sort)
	assert.Equal(t, int32(4), meta.calls.Load())

	require.Len(t, tokens, 3)
	assert.Equal(t, "wrap.near", tokens[0].Address)
	assert.Equal(t, "usdt.tether-token.near", tokens[1].Address)
	assert.Equal(t, "fake-usdt.near", tokens[2].Address)
}

func TestResolveCaseInsensitiveFirstMatch(t *testing.T) {
	r, _, _ := newFixture(t)

	tokens, err := r.Resolve(context.Background(), "WNEAR", "usdt")
	require.NoError(t, err)
	assert.Equal(t, "wrap.near", tokens[0].Address)
	assert.Equal(t, 24, tokens[0].Decimals)
	assert.Equal(t, "usdt.tether-token.near", tokens[1].Address)
}

func TestResolveNamesMissingSymbols(t *testing.T) {
	r, _, _ := newFixture(t)

	_, err := r.Resolve(context.Background(), "wnear", "DOGE", "PEPE")
	var unknown *UnknownSymbolError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []string{"DOGE", "PEPE"}, unknown.Symbols)
	assert.Contains(t, err.Error(), "DOGE")
}

func TestMetadata(t *testing.T) {
	r, _, _ := newFixture(t)

	meta, err := r.Metadata(context.Background(), "wrap.near")
	require.NoError(t, err)
	assert.Equal(t, "wNEAR", meta.Symbol)

	_, err = r.Metadata(context.Background(), "broken.near")
	assert.Error(t, err)
}
