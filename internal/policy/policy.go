// Package policy supplies per-country EU policy metrics to the analysis
// pipeline. The scoring and financial engines treat these as externally
// provided facts; providers here are the in-process stand-ins for the
// policy-analysis collaborator.
package policy

import (
	"context"
	"errors"
)

var (
	// ErrCountryNotCovered is returned for countries outside the EU scope.
	ErrCountryNotCovered = errors.New("policy: country not covered")
	// ErrProfileNotFound is returned when no stored profile exists.
	ErrProfileNotFound = errors.New("policy: profile not found")
	// ErrInvalidLifetime is returned for a non-positive project lifetime.
	ErrInvalidLifetime = errors.New("policy: invalid project lifetime")
)

// RiskLevel classifies policy uncertainty over a project lifetime.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// Elevated reports whether the level should raise a risk flag.
func (r RiskLevel) Elevated() bool {
	return r == RiskHigh || r == RiskVeryHigh
}

// RiskLevelForScore bands a 0-100 policy risk score.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score <= 25:
		return RiskLow
	case score <= 50:
		return RiskMedium
	case score <= 75:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// Metrics is the policy assessment for one (country, project) pair.
type Metrics struct {
	Country              string    `json:"country"`
	OverallScore         float64   `json:"overall_policy_score"`
	RiskScore            float64   `json:"policy_risk_score"`
	RiskLevel            RiskLevel `json:"risk_level"`
	PolicyStability      float64   `json:"policy_stability"`
	TaxIncentivesPercent float64   `json:"tax_incentives_percent"`
	AvailableGrants      []string  `json:"available_grants,omitempty"`
}

// Provider resolves policy metrics for a site's country and project lifetime.
type Provider interface {
	MetricsFor(ctx context.Context, country string, projectLifetimeYears int) (Metrics, error)
}
