package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Pool is a liquidity pool as listed by the pool service. Unknown fields are
// preserved in Fields; TotalLiquidity and Stability are derived.
type Pool struct {
	SpotPrice      decimal.Decimal
	Liquidities    []decimal.Decimal
	TotalLiquidity float64
	Stability      float64
	Fields         Record
}

// UnmarshalJSON keeps the raw object and extracts the ranking inputs.
func (p *Pool) UnmarshalJSON(data []byte) error {
	var fields Record
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode pool: %w", err)
	}
	p.Fields = fields
	p.SpotPrice, _ = fields.Decimal("spot_price")
	p.Liquidities, _ = fields.Decimals("liquidities")
	return nil
}

// MarshalJSON writes the upstream fields plus the derived ranking values.
func (p Pool) MarshalJSON() ([]byte, error) {
	out := make(Record, len(p.Fields)+2)
	for k, v := range p.Fields {
		out[k] = v
	}
	if err := out.Set("totalLiquidity", p.TotalLiquidity); err != nil {
		return nil, err
	}
	if err := out.Set("stability", p.Stability); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}
