package near

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"veaxAgent/internal/rpc"
)

// FTMetadata is the NEP-148 fungible token metadata subset used here.
type FTMetadata struct {
	Spec     string `json:"spec"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// StorageBalance is the NEP-145 storage record of an account.
type StorageBalance struct {
	Total     string `json:"total"`
	Available string `json:"available"`
}

// Account is the subset of view_account used for native balances.
type Account struct {
	Amount      string `json:"amount"`
	Locked      string `json:"locked"`
	StorageUsed uint64 `json:"storage_usage"`
}

// FTMetadata returns token metadata, using an in-memory cache since NEP-148
// metadata does not change for a deployed token.
func (c *Client) FTMetadata(ctx context.Context, token string) (FTMetadata, error) {
	c.mu.RLock()
	meta, ok := c.metaCache[token]
	c.mu.RUnlock()
	if ok {
		return meta, nil
	}

	if err := c.CallFunction(ctx, token, "ft_metadata", nil, &meta); err != nil {
		return FTMetadata{}, err
	}

	c.mu.Lock()
	c.metaCache[token] = meta
	c.mu.Unlock()
	return meta, nil
}

// FTBalanceOf returns the raw balance of account in token base units.
func (c *Client) FTBalanceOf(ctx context.Context, token, account string) (string, error) {
	var balance string
	err := c.CallFunction(ctx, token, "ft_balance_of", map[string]string{"account_id": account}, &balance)
	if err != nil {
		return "", err
	}
	if balance == "" {
		balance = "0"
	}
	return balance, nil
}

// StorageBalanceOf returns nil when account has no storage on contract.
func (c *Client) StorageBalanceOf(ctx context.Context, contract, account string) (*StorageBalance, error) {
	var balance *StorageBalance
	err := c.CallFunction(ctx, contract, "storage_balance_of", map[string]string{"account_id": account}, &balance)
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// TokenRegistered reports whether account already registered token with the
// DEX contract.
func (c *Client) TokenRegistered(ctx context.Context, dex, account, token string) (bool, error) {
	var registered bool
	err := c.CallFunction(ctx, dex, "is_token_registered", map[string]string{
		"account_id": account,
		"token_id":   token,
	}, &registered)
	if err != nil {
		return false, err
	}
	return registered, nil
}

// ViewAccount returns the native account state.
func (c *Client) ViewAccount(ctx context.Context, account string) (Account, error) {
	var out Account
	err := c.rpc.Call(ctx, "query", viewAccountParams{
		RequestType: "view_account",
		Finality:    FinalityFinal,
		AccountID:   account,
	}, &out)
	if err != nil {
		var rpcErr *rpc.Error
		if errors.As(err, &rpcErr) {
			c.logger.Debug("view_account failed", zap.String("account", account), zap.Error(err))
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return out, nil
}

// NativeBalance returns the yoctoNEAR balance of account.
func (c *Client) NativeBalance(ctx context.Context, account string) (string, error) {
	acc, err := c.ViewAccount(ctx, account)
	if err != nil {
		return "", err
	}
	if acc.Amount == "" {
		return "0", nil
	}
	return acc.Amount, nil
}
