package tickmath

// DefaultSlippage is 0.5%.
const DefaultSlippage = 0.005

var slippageTolerances = map[string]float64{
	"0.1": 0.001,
	"1":   0.01,
	"2":   0.02,
}

// ParseSlippage maps the accepted slippage percentages to tolerances.
// Anything unrecognized falls back to DefaultSlippage.
func ParseSlippage(raw string) float64 {
	if tolerance, ok := slippageTolerances[raw]; ok {
		return tolerance
	}
	return DefaultSlippage
}
