package veax

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCaller struct {
	method  string
	params  string
	results map[string]string
}

func (r *recordingCaller) Call(_ context.Context, method string, params any, result any) error {
	r.method = method
	b, err := json.Marshal(params)
	if err != nil {
		return err
	}
	r.params = string(b)
	return json.Unmarshal([]byte(r.results[method]), result)
}

func TestTokensListDefaultsSort(t *testing.T) {
	caller := &recordingCaller{results: map[string]string{
		"tokens_list": `{"tokens":[{"sc_address":"wrap.near","volume":"12"}],"total":1}`,
	}}
	page, err := NewPoolClient(caller).TokensList(context.Background(), ListFilter{Page: 1, Limit: 100})
	require.NoError(t, err)

	assert.JSONEq(t, `{"filter":{"page":1,"limit":100,"sort":"NONE","is_desc":false,"search":""}}`, caller.params)
	require.Len(t, page.Tokens, 1)
	addr, ok := page.Tokens[0].String("sc_address")
	assert.True(t, ok)
	assert.Equal(t, "wrap.near", addr)
	assert.Equal(t, 1, page.Total)
}

func TestTokenCurrentPricesSkipsNull(t *testing.T) {
	caller := &recordingCaller{results: map[string]string{
		"token_current_prices": `{"prices":{"wrap.near":"3.5","usdt.tether-token.near":1,"dead.near":null}}`,
	}}
	prices, err := NewPoolClient(caller).TokenCurrentPrices(context.Background(), "wrap.near", "usdt.tether-token.near", "dead.near")
	require.NoError(t, err)

	assert.JSONEq(t, `{"token_addresses":["wrap.near","usdt.tether-token.near","dead.near"]}`, caller.params)
	assert.Len(t, prices, 2)
	assert.True(t, prices["wrap.near"].Equal(decimal.RequireFromString("3.5")))
}

func TestSpotPriceWithGaps(t *testing.T) {
	caller := &recordingCaller{results: map[string]string{
		"get_pool_spot_price": `{"pool_exist":true,"prices":[null,"3.5",3.49]}`,
	}}
	spot, err := NewPoolClient(caller).SpotPrice(context.Background(), "wrap.near", "usdt.tether-token.near")
	require.NoError(t, err)

	assert.Equal(t, "get_pool_spot_price", caller.method)
	assert.JSONEq(t, `{"token_a":"wrap.near","token_b":"usdt.tether-token.near"}`, caller.params)
	assert.True(t, spot.PoolExist)
	require.Len(t, spot.Prices, 3)
	assert.False(t, spot.Prices[0].Valid)
	assert.True(t, spot.Prices[1].Decimal.Equal(decimal.RequireFromString("3.5")))
}

func TestEstimateSwapExactIn(t *testing.T) {
	caller := &recordingCaller{results: map[string]string{
		"estimate_swap_exact_in": `{"pool_exists":true,"amount_b_expected":"34.91"}`,
	}}
	est, err := NewEstimationClient(caller).EstimateSwapExactIn(context.Background(), SwapQuery{
		TokenA:            "wrap.near",
		TokenB:            "usdt.tether-token.near",
		AmountA:           "10",
		SlippageTolerance: 0.005,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"token_a":"wrap.near","token_b":"usdt.tether-token.near","amount_a":"10","slippage_tolerance":0.005}`, caller.params)
	assert.True(t, est.PoolExists)
	assert.True(t, est.AmountBExpected.Equal(decimal.RequireFromString("34.91")))
}

func TestEstimateLiquidityPosition(t *testing.T) {
	caller := &recordingCaller{results: map[string]string{
		"estimate_liquidity_position": `{"min_token_a":"0.99","max_token_a":"1","min_token_b":3.4,"max_token_b":"3.5"}`,
	}}
	est, err := NewEstimationClient(caller).EstimateLiquidityPosition(context.Background(), PositionQuery{
		TokenA: "wrap.near", TokenB: "usdt.tether-token.near",
		SlippageTolerance: 0.005, FeeRate: 2, LowerTick: -401978, UpperTick: -401938, AmountA: "1",
	})
	require.NoError(t, err)

	assert.Contains(t, caller.params, `"lower_tick":-401978`)
	assert.True(t, est.MinTokenB.Equal(decimal.RequireFromString("3.4")))
	assert.True(t, est.MaxTokenA.Equal(decimal.NewFromInt(1)))
}

func TestPositionsListPaging(t *testing.T) {
	caller := &recordingCaller{results: map[string]string{
		"liquidity_positions_list": `{"positions":[{"id":"42","tokens":["a.near","b.near"]}],"total":1}`,
	}}
	page, err := NewPositionClient(caller).List(context.Background(), "alice.near", 0)
	require.NoError(t, err)

	assert.JSONEq(t, `{"account_id":"alice.near","filter":{"page":1,"limit":10,"sort":"NONE","is_desc":false,"search":""}}`, caller.params)
	require.Len(t, page.Positions, 1)
	id, _ := page.Positions[0].String("id")
	assert.Equal(t, "42", id)
}

func TestPoolLeverageAndStorageCosts(t *testing.T) {
	caller := &recordingCaller{results: map[string]string{
		"get_pool_leverage": `{"leverages":[null,1000,500]}`,
		"get_storage_costs": `{"open_position":"0.01","register_token":"0.005","create_pool":"0.1"}`,
	}}
	mgmt := NewManagementClient(caller)

	lev, err := mgmt.PoolLeverage(context.Background(), "a.near", "b.near")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1000, 500}, lev.Leverages)

	costs, err := mgmt.StorageCosts(context.Background())
	require.NoError(t, err)
	assert.True(t, costs.CreatePool.Equal(decimal.RequireFromString("0.1")))
}
