package pools

import (
	"math"
	"sort"

	"veaxAgent/internal/model"
)

// StabilityThreshold is the largest |spot_price - 1| a pool may have to be
// ranked as stable.
const StabilityThreshold = 0.05

// Ranked holds pools split by stability, each sorted by total liquidity
// descending.
type Ranked struct {
	Best  []model.Pool `json:"bestPools"`
	Risky []model.Pool `json:"riskyPools"`
}

// Categorize derives total liquidity and stability for each pool and splits
// them into stable and risky groups.
func Categorize(pools []model.Pool) Ranked {
	out := Ranked{
		Best:  make([]model.Pool, 0),
		Risky: make([]model.Pool, 0),
	}
	for _, p := range pools {
		total := 0.0
		for _, l := range p.Liquidities {
			total += l.InexactFloat64()
		}
		p.TotalLiquidity = total
		p.Stability = math.Abs(p.SpotPrice.InexactFloat64() - 1)

		if p.Stability <= StabilityThreshold {
			out.Best = append(out.Best, p)
		} else {
			out.Risky = append(out.Risky, p)
		}
	}

	byLiquidity := func(list []model.Pool) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].TotalLiquidity > list[j].TotalLiquidity
		})
	}
	byLiquidity(out.Best)
	byLiquidity(out.Risky)
	return out
}
