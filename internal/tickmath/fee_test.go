package tickmath

import "testing"

func TestFeeTableBijection(t *testing.T) {
	levels := FeeLevels()
	if len(levels) != 8 {
		t.Fatalf("expected 8 fee levels, got %d", len(levels))
	}

	for i, level := range levels {
		rate, ok := FeeRateForPercent(level.Percent)
		if !ok || rate != level.Rate {
			t.Fatalf("level %d: percent %v maps to %d", i, level.Percent, rate)
		}
		percent, ok := PercentForFeeRate(level.Rate)
		if !ok || percent != level.Percent {
			t.Fatalf("level %d: rate %d maps to %v", i, level.Rate, percent)
		}
		if idx, ok := FeeIndexForRate(level.Rate); !ok || idx != i {
			t.Fatalf("level %d: index lookup returned %d", i, idx)
		}
	}

	if rate, _ := FeeRateForPercent(0.01); rate != 1 {
		t.Fatalf("0.01%% should map to rate 1, got %d", rate)
	}
	if percent, _ := PercentForFeeRate(128); percent != 1.28 {
		t.Fatalf("rate 128 should map to 1.28%%, got %v", percent)
	}
}

func TestFeeLevelsCopy(t *testing.T) {
	levels := FeeLevels()
	levels[0].Rate = 999
	if level, _ := FeeLevelAt(0); level.Rate != 1 {
		t.Fatalf("fee table mutated through copy")
	}
}

func TestParseFeeTier(t *testing.T) {
	level, idx, err := ParseFeeTier("0.04%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level.Rate != 4 || idx != 2 {
		t.Fatalf("unexpected level %+v at %d", level, idx)
	}

	if _, _, err := ParseFeeTier("0.05"); err == nil {
		t.Fatalf("expected error for unsupported tier")
	}
	if _, _, err := ParseFeeTier("abc"); err == nil {
		t.Fatalf("expected error for malformed tier")
	}
}

func TestParseSlippage(t *testing.T) {
	cases := map[string]float64{
		"0.1": 0.001,
		"1":   0.01,
		"2":   0.02,
		"0.5": 0.005,
		"":    0.005,
		"5":   0.005,
	}
	for in, want := range cases {
		if got := ParseSlippage(in); got != want {
			t.Fatalf("ParseSlippage(%q) = %v, want %v", in, got, want)
		}
	}
}
