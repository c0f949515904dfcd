package veax

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"veaxAgent/internal/model"
)

// Sort orders accepted by list filters.
const (
	SortNone = "NONE"
)

// ListFilter is the pagination/search filter shared by list methods.
type ListFilter struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Sort   string `json:"sort"`
	IsDesc bool   `json:"is_desc"`
	Search string `json:"search"`
}

// TokenPage is one page of the DEX token list.
type TokenPage struct {
	Tokens []model.Record `json:"tokens"`
	Total  int            `json:"total"`
}

// SpotPrice holds one spot price per fee level; entries are null for levels
// without liquidity.
type SpotPrice struct {
	PoolExist bool                  `json:"pool_exist"`
	Prices    []decimal.NullDecimal `json:"prices"`
}

// LiquidityShare is the share of pool liquidity held at each fee level.
type LiquidityShare struct {
	Percents []float64 `json:"percents"`
}

// Leverage is the pool leverage at each fee level.
type Leverage struct {
	Leverages []float64 `json:"leverages"`
}

// StorageCosts are the per-purpose DEX storage costs in NEAR.
type StorageCosts struct {
	OpenPosition  decimal.Decimal `json:"open_position"`
	RegisterToken decimal.Decimal `json:"register_token"`
	CreatePool    decimal.Decimal `json:"create_pool"`
}

// SwapEstimate is the estimator's answer for an exact-in swap.
type SwapEstimate struct {
	PoolExists      bool            `json:"pool_exists"`
	AmountBExpected decimal.Decimal `json:"amount_b_expected"`
}

// PositionEstimate bounds the token amounts a new position will take, in
// human units.
type PositionEstimate struct {
	MinTokenA decimal.Decimal `json:"min_token_a"`
	MaxTokenA decimal.Decimal `json:"max_token_a"`
	MinTokenB decimal.Decimal `json:"min_token_b"`
	MaxTokenB decimal.Decimal `json:"max_token_b"`
}

type currentPrices struct {
	Prices map[string]decimal.NullDecimal `json:"prices"`
}

type poolList struct {
	Pools []model.Pool `json:"pools"`
}

type tokenPair struct {
	TokenA string `json:"token_a"`
	TokenB string `json:"token_b"`
}

// raw is used for pass-through responses.
type raw = json.RawMessage
