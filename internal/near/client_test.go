package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"veaxAgent/internal/rpc"
)

// fakeCaller answers NEAR "query" calls from a table keyed by
// account/method (call_function) or account (view_account).
type fakeCaller struct {
	views    map[string]any
	accounts map[string]Account
	errs     map[string]string
	calls    int
	lastArgs map[string]any
}

func (f *fakeCaller) Call(_ context.Context, method string, params any, result any) error {
	f.calls++
	if method != "query" {
		return errors.New("unexpected method " + method)
	}

	switch p := params.(type) {
	case viewAccountParams:
		acc, ok := f.accounts[p.AccountID]
		if !ok {
			return &rpc.Error{Code: -32000, Message: "UNKNOWN_ACCOUNT"}
		}
		raw, _ := json.Marshal(acc)
		return json.Unmarshal(raw, result)
	case callFunctionParams:
		key := p.AccountID + "/" + p.MethodName
		decoded, err := base64.StdEncoding.DecodeString(p.ArgsBase64)
		if err != nil {
			return err
		}
		f.lastArgs = map[string]any{}
		_ = json.Unmarshal(decoded, &f.lastArgs)

		if msg, ok := f.errs[key]; ok {
			raw, _ := json.Marshal(map[string]any{"error": msg})
			return json.Unmarshal(raw, result)
		}
		payload, err := json.Marshal(f.views[key])
		if err != nil {
			return err
		}
		ints := make([]int, len(payload))
		for i, b := range payload {
			ints[i] = int(b)
		}
		raw, _ := json.Marshal(map[string]any{"result": ints})
		return json.Unmarshal(raw, result)
	}
	return errors.New("unexpected params")
}

func TestFTMetadataIsCached(t *testing.T) {
	caller := &fakeCaller{views: map[string]any{
		"wrap.near/ft_metadata": map[string]any{
			"spec": "ft-1.0.0", "name": "Wrapped NEAR fungible token", "symbol": "wNEAR", "decimals": 24, "icon": "data:...",
		},
	}}
	c := NewClient(caller, zaptest.NewLogger(t))

	meta, err := c.FTMetadata(context.Background(), "wrap.near")
	require.NoError(t, err)
	assert.Equal(t, "wNEAR", meta.Symbol)
	assert.Equal(t, 24, meta.Decimals)

	_, err = c.FTMetadata(context.Background(), "wrap.near")
	require.NoError(t, err)
	assert.Equal(t, 1, caller.calls)
}

func TestFTBalanceOf(t *testing.T) {
	caller := &fakeCaller{views: map[string]any{
		"usdt.tether-token.near/ft_balance_of": "150000000",
	}}
	c := NewClient(caller, nil)

	balance, err := c.FTBalanceOf(context.Background(), "usdt.tether-token.near", "alice.near")
	require.NoError(t, err)
	assert.Equal(t, "150000000", balance)
	assert.Equal(t, "alice.near", caller.lastArgs["account_id"])
}

func TestStorageBalanceOfNull(t *testing.T) {
	caller := &fakeCaller{views: map[string]any{
		"wrap.near/storage_balance_of": nil,
	}}
	c := NewClient(caller, nil)

	balance, err := c.StorageBalanceOf(context.Background(), "wrap.near", "bob.near")
	require.NoError(t, err)
	assert.Nil(t, balance)
}

func TestTokenRegistered(t *testing.T) {
	caller := &fakeCaller{views: map[string]any{
		"veax.near/is_token_registered": true,
	}}
	c := NewClient(caller, nil)

	ok, err := c.TokenRegistered(context.Background(), "veax.near", "alice.near", "wrap.near")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "wrap.near", caller.lastArgs["token_id"])
}

func TestCallFunctionViewError(t *testing.T) {
	caller := &fakeCaller{errs: map[string]string{
		"missing.near/ft_metadata": "wasm execution failed",
	}}
	c := NewClient(caller, nil)

	_, err := c.FTMetadata(context.Background(), "missing.near")
	var viewErr *ViewError
	require.True(t, errors.As(err, &viewErr))
	assert.Equal(t, "ft_metadata", viewErr.Method)
}

func TestNativeBalance(t *testing.T) {
	caller := &fakeCaller{accounts: map[string]Account{
		"alice.near": {Amount: "1500000000000000000000000"},
	}}
	c := NewClient(caller, nil)

	balance, err := c.NativeBalance(context.Background(), "alice.near")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000000000", balance)

	_, err = c.NativeBalance(context.Background(), "ghost.near")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestResultBytesRejectsOutOfRange(t *testing.T) {
	_, err := resultBytes([]int{1, 256})
	assert.Error(t, err)
}
