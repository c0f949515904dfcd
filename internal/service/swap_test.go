package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veaxAgent/internal/near"
	"veaxAgent/internal/veax"
)

func transferMsg(t *testing.T, plan Plan, i int) []any {
	t.Helper()
	raw, err := json.Marshal(plan.TransactionData[i].Actions[0].Params.Args)
	require.NoError(t, err)
	var args struct {
		Amount string `json:"amount"`
		Msg    string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(raw, &args))
	var msgs []any
	require.NoError(t, json.Unmarshal([]byte(args.Msg), &msgs))
	return msgs
}

func TestSwapPlan(t *testing.T) {
	f := newFixture()
	f.estimator.swaps[pairKey("wrap.near", "usdt.tether-token.near")] = veax.SwapEstimate{PoolExists: true, AmountBExpected: dec("3.5")}
	f.chain.balances["wrap.near/alice.near"] = "2000000000000000000000000"

	plan, err := f.svc.Swap(context.Background(), SwapRequest{
		FromSymbol: "wnear", ToSymbol: "USDT", Wallet: "alice.near", Amount: "1",
	})
	require.NoError(t, err)
	require.Len(t, plan.TransactionData, 2)

	assert.Equal(t, "veax.near", plan.TransactionData[0].ReceiverID)
	assert.Equal(t, "wrap.near", plan.TransactionData[1].ReceiverID)

	msgs := transferMsg(t, plan, 1)
	require.Len(t, msgs, 4)
	swap := msgs[1].(map[string]any)["SwapExactIn"].(map[string]any)
	assert.Equal(t, "1000000000000000000000000", swap["amount"])
	assert.Equal(t, "3482500", swap["amount_limit"])

	require.Len(t, f.estimator.swapCalls, 1)
	assert.Equal(t, 0.005, f.estimator.swapCalls[0].SlippageTolerance)
	assert.Equal(t, "1", f.estimator.swapCalls[0].AmountA)
}

func TestSwapSlippageChoices(t *testing.T) {
	f := newFixture()
	f.estimator.swaps[pairKey("wrap.near", "usdt.tether-token.near")] = veax.SwapEstimate{PoolExists: true, AmountBExpected: dec("100")}
	f.chain.balances["wrap.near/alice.near"] = "2000000000000000000000000"

	cases := map[string]string{
		"0.1": "99900000",
		"1":   "99000000",
		"2":   "98000000",
		"5":   "99500000",
	}
	for slippage, limit := range cases {
		plan, err := f.svc.Swap(context.Background(), SwapRequest{
			FromSymbol: "wNEAR", ToSymbol: "USDt", Wallet: "alice.near", Amount: "1", Slippage: slippage,
		})
		require.NoError(t, err)
		swap := transferMsg(t, plan, 1)[1].(map[string]any)["SwapExactIn"].(map[string]any)
		assert.Equal(t, limit, swap["amount_limit"], "slippage %s", slippage)
	}
}

func TestSwapInsufficientBalance(t *testing.T) {
	f := newFixture()
	f.estimator.swaps[pairKey("low.near", "usdt.tether-token.near")] = veax.SwapEstimate{PoolExists: true, AmountBExpected: dec("1")}
	f.chain.balances["low.near/alice.near"] = "100"

	plan, err := f.svc.Swap(context.Background(), SwapRequest{
		FromSymbol: "LOW", ToSymbol: "USDt", Wallet: "alice.near", Amount: "150",
	})
	require.Error(t, err)
	assert.Empty(t, plan.TransactionData)

	var insufficient *InsufficientBalanceError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "150", insufficient.Required)
	assert.Equal(t, "100", insufficient.Available)
	assert.True(t, IsClientError(err))
	assert.Equal(t, "Insufficient balance for Token (LOW). Required: 150, Available: 100, Decimal: 0", err.Error())
}

func TestSwapWithoutLiquidity(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Swap(context.Background(), SwapRequest{
		FromSymbol: "LOW", ToSymbol: "USDt", Wallet: "alice.near", Amount: "1",
	})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Pool doesn't have liquidity!", nf.Msg)
}

func TestSwapValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Swap(context.Background(), SwapRequest{FromSymbol: "LOW", ToSymbol: "USDt", Wallet: "alice.near"})
	var v *ValidationError
	require.True(t, errors.As(err, &v))

	for _, bad := range []string{"abc", "-1", "0"} {
		_, err = f.svc.Swap(context.Background(), SwapRequest{FromSymbol: "LOW", ToSymbol: "USDt", Wallet: "alice.near", Amount: bad})
		require.True(t, errors.As(err, &v), "amount %q", bad)
	}

	_, err = f.svc.Swap(context.Background(), SwapRequest{FromSymbol: "DOGE", ToSymbol: "PEPE", Wallet: "alice.near", Amount: "1"})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, nf.Msg, "DOGE")
	assert.Contains(t, nf.Msg, "PEPE")
	assert.Empty(t, f.estimator.swapCalls)
}

func TestSwapNearToWNearWraps(t *testing.T) {
	f := newFixture()
	f.chain.native["alice.near"] = "5000000000000000000000000"

	plan, err := f.svc.Swap(context.Background(), SwapRequest{
		FromSymbol: "NEAR", ToSymbol: "wNEAR", Wallet: "alice.near", Amount: "2.5",
	})
	require.NoError(t, err)
	require.Len(t, plan.TransactionData, 1)

	tx := plan.TransactionData[0]
	assert.Equal(t, "wrap.near", tx.ReceiverID)
	require.Len(t, tx.Actions, 2)
	assert.Equal(t, "storage_deposit", tx.Actions[0].Params.MethodName)
	assert.Equal(t, "near_deposit", tx.Actions[1].Params.MethodName)
	assert.Equal(t, "2500000000000000000000000", tx.Actions[1].Params.Deposit)
	assert.Empty(t, f.estimator.swapCalls)
}

func TestSwapNearToWNearWithStorage(t *testing.T) {
	f := newFixture()
	f.chain.native["alice.near"] = "5000000000000000000000000"
	f.chain.storage["wrap.near/alice.near"] = &near.StorageBalance{Total: "1250000000000000000000"}

	plan, err := f.svc.Swap(context.Background(), SwapRequest{
		FromSymbol: "near", ToSymbol: "WNEAR", Wallet: "alice.near", Amount: "1",
	})
	require.NoError(t, err)
	require.Len(t, plan.TransactionData[0].Actions, 1)
}

func TestSwapWNearToNearUnwraps(t *testing.T) {
	f := newFixture()
	f.chain.balances["wrap.near/alice.near"] = "1000000000000000000000000"

	plan, err := f.svc.Swap(context.Background(), SwapRequest{
		FromSymbol: "wNEAR", ToSymbol: "NEAR", Wallet: "alice.near", Amount: "0.5",
	})
	require.NoError(t, err)
	action := plan.TransactionData[0].Actions[0].Params
	assert.Equal(t, "near_withdraw", action.MethodName)
	assert.Equal(t, "1", action.Deposit)

	_, err = f.svc.Swap(context.Background(), SwapRequest{
		FromSymbol: "wNEAR", ToSymbol: "NEAR", Wallet: "alice.near", Amount: "2",
	})
	var insufficient *InsufficientBalanceError
	assert.True(t, errors.As(err, &insufficient))
}

func TestSwapFromNearPrependsWrap(t *testing.T) {
	f := newFixture()
	f.chain.native["alice.near"] = "5000000000000000000000000"
	f.estimator.swaps[pairKey("wrap.near", "usdt.tether-token.near")] = veax.SwapEstimate{PoolExists: true, AmountBExpected: dec("3.5")}

	plan, err := f.svc.Swap(context.Background(), SwapRequest{
		FromSymbol: "NEAR", ToSymbol: "USDt", Wallet: "alice.near", Amount: "1",
	})
	require.NoError(t, err)
	require.Len(t, plan.TransactionData, 3)
	assert.Equal(t, "wrap.near", plan.TransactionData[0].ReceiverID)
	assert.Equal(t, "near_deposit", plan.TransactionData[0].Actions[1].Params.MethodName)
	assert.Equal(t, "veax.near", plan.TransactionData[1].ReceiverID)
	assert.Equal(t, "wrap.near", plan.TransactionData[2].ReceiverID)
}

func TestDoubleSwap(t *testing.T) {
	f := newFixture()
	f.chain.balances["auro.near/alice.near"] = "10000000000000000000"
	f.estimator.swaps[pairKey("auro.near", "wrap.near")] = veax.SwapEstimate{PoolExists: true, AmountBExpected: dec("2")}
	f.estimator.swaps[pairKey("wrap.near", "usdt.tether-token.near")] = veax.SwapEstimate{PoolExists: true, AmountBExpected: dec("7")}

	plan, err := f.svc.DoubleSwap(context.Background(), DoubleSwapRequest{
		FromSymbol: "AURO", MidSymbol: "wNEAR", ToSymbol: "USDt", Wallet: "alice.near", Amount: "1",
	})
	require.NoError(t, err)
	require.Len(t, f.estimator.swapCalls, 2)
	assert.Equal(t, "1.96", f.estimator.swapCalls[1].AmountA)

	msgs := transferMsg(t, plan, 1)
	require.Len(t, msgs, 4)
	first := msgs[1].(map[string]any)["SwapExactIn"].(map[string]any)
	second := msgs[2].(map[string]any)["SwapExactIn"].(map[string]any)
	assert.Equal(t, "1000000000000000000", first["amount"])
	assert.Equal(t, "1960000000000000000000000", first["amount_limit"])
	assert.Equal(t, first["amount_limit"], second["amount"])
	assert.Equal(t, "6860000", second["amount_limit"])
	assert.Equal(t, map[string]any{"Withdraw": []any{"usdt.tether-token.near", "0", nil}}, msgs[3])
}
