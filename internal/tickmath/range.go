package tickmath

import "math"

const (
	FullRangeMin = "0"
	FullRangeMax = "∞"

	// equalAmountRatio treats both sides of a new position as equal in value.
	equalAmountRatio = 1.0
)

// RangeInput describes the position to plan around the spot price.
type RangeInput struct {
	Price     float64 `json:"price"`
	DecimalsA int     `json:"decimals_a"`
	DecimalsB int     `json:"decimals_b"`
	Leverage  float64 `json:"leverage"`
}

// Range is a planned tick range. Prices are strings so the full-range
// sentinels survive serialization unchanged.
type Range struct {
	MinTick   int    `json:"min_tick"`
	MaxTick   int    `json:"max_tick"`
	PriceTick int    `json:"price_tick"`
	MinPrice  string `json:"min_price"`
	MaxPrice  string `json:"max_price"`
	MinFormat string `json:"min_format"`
	MaxFormat string `json:"max_format"`
	FullRange bool   `json:"full_range"`
}

// Ticks returns the range as the [lower, upper] pair used by OpenPosition.
func (r Range) Ticks() [2]int {
	return [2]int{r.MinTick, r.MaxTick}
}

// FullRange returns the sentinel range covering the whole tick grid.
func FullRange(priceTick int) Range {
	return Range{
		MinTick:   MinTick,
		MaxTick:   MaxTick,
		PriceTick: priceTick,
		MinPrice:  FullRangeMin,
		MaxPrice:  FullRangeMax,
		MinFormat: FullRangeMin,
		MaxFormat: FullRangeMax,
		FullRange: true,
	}
}

// PlanEqualRange derives a concentrated range around the spot price for a
// position opened with equal-value amounts at the given leverage. Leverage of
// 1 or less, and any bound that leaves the tick grid, degrade to the full range.
func PlanEqualRange(in RangeInput) Range {
	price := FormatOnePrice(in.Price, false)
	nativePrice := UserToNative(price, in.DecimalsA, in.DecimalsB)
	priceTick := clampTick(math.Round(tickIndex(nativePrice)))

	if in.Leverage <= 1 || math.IsNaN(in.Leverage) {
		return FullRange(priceTick)
	}

	maxPrice := RatioToMaxPrice(nativePrice, equalAmountRatio, in.Leverage)
	minBase := maxPrice
	if minBase == 0 || math.IsNaN(minBase) {
		minBase = 1
	}
	minPrice := RatioToMinPrice(minBase, in.Leverage)

	maxTick := math.Round(tickIndex(maxPrice))
	minTick := math.Round(tickIndex(minPrice))
	if !inGrid(maxTick) || !inGrid(minTick) {
		return FullRange(priceTick)
	}

	return Range{
		MinTick:   int(minTick),
		MaxTick:   int(maxTick),
		PriceTick: priceTick,
		MinPrice:  FormatPrice(minPrice),
		MaxPrice:  FormatPrice(maxPrice),
		MinFormat: FormatPrice(NativeToUser(minPrice, in.DecimalsA, in.DecimalsB)),
		MaxFormat: FormatPrice(NativeToUser(maxPrice, in.DecimalsA, in.DecimalsB)),
	}
}

func inGrid(tick float64) bool {
	return !math.IsNaN(tick) && tick >= MinTick && tick <= MaxTick
}

func clampTick(tick float64) int {
	switch {
	case math.IsNaN(tick):
		return 0
	case tick < MinTick:
		return MinTick
	case tick > MaxTick:
		return MaxTick
	}
	return int(tick)
}
