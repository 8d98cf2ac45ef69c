package policy

import "context"

// euCountries is the ISO-3166 alpha-2 set the EU policy scope covers.
var euCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {}, "DE": {},
	"DK": {}, "EE": {}, "FI": {}, "FR": {}, "GR": {}, "HU": {}, "IE": {},
	"IT": {}, "LV": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {}, "PL": {},
	"PT": {}, "RO": {}, "SK": {}, "SI": {}, "ES": {}, "SE": {},
}

type incentiveProfile struct {
	grants      []string
	taxBenefits float64
	stability   float64
}

// regionalIncentives holds the per-country incentive programs and policy
// stability baselines for the markets the screening covers; other EU
// countries fall back to defaultStability.
var regionalIncentives = map[string]incentiveProfile{
	"DE": {grants: []string{"KfW Energy Efficiency", "BMWK Innovation"}, taxBenefits: 15, stability: 90},
	"NL": {grants: []string{"SDE++", "Topsector Energy"}, taxBenefits: 20, stability: 85},
	"BE": {grants: []string{"Wallonia Green Deal", "Flanders Innovation"}, taxBenefits: 18, stability: 80},
	"FR": {grants: []string{"ADEME", "France Relance"}, taxBenefits: 12, stability: 75},
	"IT": {grants: []string{"Piano Nazionale", "Transizione 4.0"}, taxBenefits: 10, stability: 70},
}

const defaultStability = 70

// Policy risk weights per recurring disruption source. A disruption cycle is
// assumed every five project years.
const (
	riskWeightEUElections       = 5
	riskWeightNationalElections = 3
	riskWeightRegulatoryChanges = 8
	riskWeightMarketVolatility  = 4
	riskCycleYears              = 5
)

// StaticProvider serves policy metrics from the built-in regional tables.
type StaticProvider struct{}

// NewStaticProvider constructs the provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// MetricsFor computes metrics for an EU country from the incentive tables.
func (p *StaticProvider) MetricsFor(ctx context.Context, country string, projectLifetimeYears int) (Metrics, error) {
	_ = ctx
	if projectLifetimeYears <= 0 {
		return Metrics{}, ErrInvalidLifetime
	}
	if _, ok := euCountries[country]; !ok {
		return Metrics{}, ErrCountryNotCovered
	}

	profile, ok := regionalIncentives[country]
	if !ok {
		profile = incentiveProfile{stability: defaultStability}
	}

	riskScore := RiskScoreForLifetime(projectLifetimeYears)
	metrics := Metrics{
		Country:              country,
		RiskScore:            riskScore,
		RiskLevel:            RiskLevelForScore(riskScore),
		PolicyStability:      profile.stability,
		TaxIncentivesPercent: profile.taxBenefits,
		AvailableGrants:      profile.grants,
		OverallScore:         (profile.stability + (100 - riskScore)) / 2,
	}
	return metrics, nil
}

// RiskScoreForLifetime accumulates the recurring disruption weights over the
// project lifetime and clamps the result to 0-100.
func RiskScoreForLifetime(projectLifetimeYears int) float64 {
	cycles := projectLifetimeYears / riskCycleYears
	perCycle := riskWeightEUElections + riskWeightNationalElections +
		riskWeightRegulatoryChanges + riskWeightMarketVolatility
	score := float64(cycles * perCycle)
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
