package screening

import (
	"fmt"
	"sort"
)

// Engine screens and ranks candidate sites with a weighted multi-factor
// score. It owns its site collection; evaluation is a pure transform of that
// collection into ScoredSite values, so callers never observe partially
// scored records.
type Engine struct {
	weights Weights
	sites   []Site
	ids     map[string]struct{}

	// scored caches the last evaluation; invalidated when sites change.
	scored []ScoredSite
}

// NewEngine constructs an Engine with a validated weight vector.
func NewEngine(weights Weights) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: weights, ids: make(map[string]struct{})}, nil
}

// Weights returns the configured weight vector.
func (e *Engine) Weights() Weights { return e.weights }

// AddSite validates and registers a candidate site. Invalid records are
// rejected, never silently dropped.
func (e *Engine) AddSite(site Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	if _, exists := e.ids[site.SiteID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSite, site.SiteID)
	}
	e.ids[site.SiteID] = struct{}{}
	e.sites = append(e.sites, site)
	e.scored = nil
	return nil
}

// AddSites registers a batch of sites, stopping at the first invalid record.
func (e *Engine) AddSites(sites []Site) error {
	for _, site := range sites {
		if err := e.AddSite(site); err != nil {
			return err
		}
	}
	return nil
}

// Len reports the number of registered sites.
func (e *Engine) Len() int { return len(e.sites) }

// Score computes the five sub-scores and the weighted total for one site,
// without ranking. Exposed for single-site inspection; rankings require
// EvaluateAll over the full collection.
func (e *Engine) Score(site Site) Scores {
	scores := Scores{
		CO2Availability: CO2Score(site),
		Energy:          EnergyScore(site),
		Policy:          PolicyScore(site),
		Infrastructure:  InfrastructureScore(site),
		Financial:       FinancialScore(site),
	}
	scores.Total = e.weights.Total(scores)
	return scores
}

// EvaluateAll scores every registered site, sorts descending by total score
// and assigns 1-based rankings. The sort is stable: ties keep insertion
// order. The input collection is not mutated.
func (e *Engine) EvaluateAll() ([]ScoredSite, error) {
	if len(e.sites) == 0 {
		return nil, ErrNoSites
	}

	scored := make([]ScoredSite, len(e.sites))
	for i, site := range e.sites {
		scored[i] = ScoredSite{Site: site, Scores: e.Score(site)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Scores.Total > scored[j].Scores.Total
	})
	for i := range scored {
		scored[i].Ranking = i + 1
	}

	e.scored = scored
	return cloneScored(scored), nil
}

// TopN returns the first n evaluated sites, evaluating first if needed.
func (e *Engine) TopN(n int) ([]ScoredSite, error) {
	if n <= 0 {
		return nil, nil
	}
	if e.scored == nil {
		if _, err := e.EvaluateAll(); err != nil {
			return nil, err
		}
	}
	if n > len(e.scored) {
		n = len(e.scored)
	}
	return cloneScored(e.scored[:n]), nil
}

// Filter narrows the evaluated site set. Zero-valued criteria are ignored.
// The result keeps evaluation order and rankings; no re-ranking happens.
type Filter struct {
	MinCO2VolumeTPY  float64  `json:"min_co2_volume_tpy"`
	MaxPowerPriceEUR float64  `json:"max_power_price_eur_mwh"`
	Countries        []string `json:"countries"`
	MinTotalScore    float64  `json:"min_total_score"`
}

// FilterSites applies the filter to the evaluated collection.
func (e *Engine) FilterSites(f Filter) ([]ScoredSite, error) {
	if e.scored == nil {
		if _, err := e.EvaluateAll(); err != nil {
			return nil, err
		}
	}

	allowed := make(map[string]struct{}, len(f.Countries))
	for _, country := range f.Countries {
		allowed[country] = struct{}{}
	}

	var out []ScoredSite
	for _, site := range e.scored {
		if f.MinCO2VolumeTPY > 0 && site.CO2VolumeTPY < f.MinCO2VolumeTPY {
			continue
		}
		if f.MaxPowerPriceEUR > 0 && site.PowerPriceEURMWh > f.MaxPowerPriceEUR {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[site.Country]; !ok {
				continue
			}
		}
		if f.MinTotalScore > 0 && site.Scores.Total < f.MinTotalScore {
			continue
		}
		out = append(out, site)
	}
	return out, nil
}

func cloneScored(scored []ScoredSite) []ScoredSite {
	out := make([]ScoredSite, len(scored))
	copy(out, scored)
	return out
}
