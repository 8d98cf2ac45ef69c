package application

import (
	"fmt"
	"math"

	analysis "carbonsite-engine/internal/analysis/domain"
	finance "carbonsite-engine/internal/finance/domain"
	"carbonsite-engine/internal/policy"
	screening "carbonsite-engine/internal/screening/domain"
)

// Score thresholds below which a dimension is flagged as a risk.
const (
	longPaybackYears   = 5
	lowIRRPercent      = 15.0
	weakDimensionScore = 70.0
)

func identifyRisks(site screening.ScoredSite, metrics finance.Metrics, pol policy.Metrics) []string {
	var risks []string
	if metrics.PaybackPeriodYears > longPaybackYears {
		risks = append(risks, "Long payback period may affect financing")
	}
	if math.IsNaN(metrics.IRRPercent) || metrics.IRRPercent < lowIRRPercent {
		risks = append(risks, "Low IRR may not meet investor requirements")
	}
	if pol.RiskLevel.Elevated() {
		risks = append(risks, "High policy uncertainty in target region")
	}
	if site.Scores.Infrastructure < weakDimensionScore {
		risks = append(risks, "Infrastructure limitations may increase costs")
	}
	if site.Scores.Energy < weakDimensionScore {
		risks = append(risks, "Energy costs and availability concerns")
	}
	return risks
}

func mitigationStrategies(site screening.ScoredSite, metrics finance.Metrics, pol policy.Metrics) []string {
	var strategies []string
	if metrics.PaybackPeriodYears > longPaybackYears {
		strategies = append(strategies,
			"Consider phased deployment to reduce initial CAPEX",
			"Explore government grants and incentives")
	}
	if pol.RiskLevel.Elevated() {
		strategies = append(strategies,
			"Engage with local policymakers early",
			"Develop flexible project design")
	}
	if site.Scores.Infrastructure < weakDimensionScore {
		strategies = append(strategies,
			"Partner with local infrastructure providers",
			"Consider modular system design")
	}
	return strategies
}

func overallRecommendations(sites []analysis.SiteResult, projectType string, targetCapacityTPY float64) []string {
	var recs []string
	if len(sites) > 0 {
		top := sites[0]
		recs = append(recs, fmt.Sprintf(
			"Primary recommendation: Deploy at %s (%s) with score %.1f/100",
			top.Site.Name, top.Site.Country, top.Site.Scores.Total))
	}
	if targetCapacityTPY <= 100 {
		recs = append(recs, "Consider starting with smaller pilot to validate technology and market")
	} else if targetCapacityTPY >= 500 {
		recs = append(recs, "Large capacity may require additional financing and risk mitigation")
	}
	recs = append(recs,
		"Leverage EU Green Deal and regional incentives for project financing",
		"Position project for CBAM competitive advantage in applicable sectors",
		"Explore EU Innovation Fund and regional grant opportunities",
		"Implement comprehensive policy monitoring and stakeholder engagement")
	return recs
}
