package policy

import (
	"context"
	"errors"
	"testing"
)

func TestStaticProviderKnownCountry(t *testing.T) {
	provider := NewStaticProvider()
	metrics, err := provider.MetricsFor(context.Background(), "DE", 20)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	if metrics.PolicyStability != 90 {
		t.Errorf("stability = %v, want 90", metrics.PolicyStability)
	}
	if metrics.TaxIncentivesPercent != 15 {
		t.Errorf("tax incentives = %v, want 15", metrics.TaxIncentivesPercent)
	}
	if len(metrics.AvailableGrants) != 2 {
		t.Errorf("grants = %v, want 2 programs", metrics.AvailableGrants)
	}
	// 20 years: 4 disruption cycles, 20 risk points each.
	if metrics.RiskScore != 80 {
		t.Errorf("risk score = %v, want 80", metrics.RiskScore)
	}
	if metrics.RiskLevel != RiskVeryHigh {
		t.Errorf("risk level = %v, want Very High", metrics.RiskLevel)
	}
	if metrics.OverallScore != 55 {
		t.Errorf("overall score = %v, want (90+20)/2", metrics.OverallScore)
	}
}

func TestStaticProviderEUFallbackStability(t *testing.T) {
	provider := NewStaticProvider()
	metrics, err := provider.MetricsFor(context.Background(), "ES", 10)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if metrics.PolicyStability != defaultStability {
		t.Fatalf("stability = %v, want default %v", metrics.PolicyStability, float64(defaultStability))
	}
	if len(metrics.AvailableGrants) != 0 {
		t.Fatalf("grants = %v, want none", metrics.AvailableGrants)
	}
}

func TestStaticProviderRejectsNonEU(t *testing.T) {
	provider := NewStaticProvider()
	if _, err := provider.MetricsFor(context.Background(), "US", 20); !errors.Is(err, ErrCountryNotCovered) {
		t.Fatalf("err = %v, want ErrCountryNotCovered", err)
	}
	if _, err := provider.MetricsFor(context.Background(), "DE", 0); !errors.Is(err, ErrInvalidLifetime) {
		t.Fatalf("err = %v, want ErrInvalidLifetime", err)
	}
}

func TestRiskLevelBands(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0, RiskLow},
		{25, RiskLow},
		{26, RiskMedium},
		{50, RiskMedium},
		{51, RiskHigh},
		{75, RiskHigh},
		{76, RiskVeryHigh},
		{100, RiskVeryHigh},
	}
	for _, tc := range cases {
		if got := RiskLevelForScore(tc.score); got != tc.want {
			t.Errorf("score %.0f: level = %v, want %v", tc.score, got, tc.want)
		}
	}
	if RiskLow.Elevated() || RiskMedium.Elevated() {
		t.Error("low/medium should not be elevated")
	}
	if !RiskHigh.Elevated() || !RiskVeryHigh.Elevated() {
		t.Error("high/very high should be elevated")
	}
}

func TestRiskScoreClamped(t *testing.T) {
	if got := RiskScoreForLifetime(100); got != 100 {
		t.Fatalf("risk score = %v, want clamp at 100", got)
	}
	if got := RiskScoreForLifetime(4); got != 0 {
		t.Fatalf("risk score = %v, want 0 below one cycle", got)
	}
}
